package ledger

import (
	"strings"

	"github.com/govalues/decimal"
)

// ClientID identifies a client account.
type ClientID uint16

// TxID identifies a transaction within the input log.
type TxID uint32

// Amount is a fixed-point decimal value.
type Amount = decimal.Decimal

// Record is the history entry left behind by a successful deposit or withdrawal.
// The amount never changes; Disputed tracks the dispute lifecycle.
type Record struct {
	Amount   Amount
	Disputed bool
}

// Account holds a client's balances, lock status and disputable history.
type Account struct {
	ID        ClientID
	Available Amount
	Held      Amount
	// Locked is set by a chargeback; a locked account rejects every operation.
	Locked  bool
	History map[TxID]*Record
}

// NewAccount returns an unlocked account with zero balances and no history.
func NewAccount(id ClientID) *Account {
	return &Account{
		ID:        id,
		Available: decimal.Zero,
		Held:      decimal.Zero,
		History:   make(map[TxID]*Record),
	}
}

// Total returns available + held. Execute rejects any operation that would
// make the sum unrepresentable, so the fallback to available alone only
// triggers for accounts built outside Execute.
func (a *Account) Total() Amount {
	t, err := a.Available.Add(a.Held)
	if err != nil {
		return a.Available
	}
	return t
}

// Clone returns a deep copy, history included.
func (a *Account) Clone() Account {
	out := *a
	out.History = make(map[TxID]*Record, len(a.History))
	for id, r := range a.History {
		rec := *r
		out.History[id] = &rec
	}
	return out
}

// Balance returns the report row for the account.
func (a *Account) Balance() Balance {
	return Balance{
		Client:    a.ID,
		Available: a.Available,
		Held:      a.Held,
		Total:     a.Total(),
		Locked:    a.Locked,
	}
}

// Balance is a read-only snapshot of one account.
type Balance struct {
	Client    ClientID
	Available Amount
	Held      Amount
	Total     Amount
	Locked    bool
}

// FormatAmount renders an amount with trailing zeros removed but at least one
// fractional digit, e.g. 6 -> "6.0", 35.76110 -> "35.7611".
func FormatAmount(a Amount) string {
	s := a.Trim(0).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
