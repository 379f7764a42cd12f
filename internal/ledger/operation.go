package ledger

import (
	"fmt"
	"strings"

	"github.com/govalues/decimal"
	"github.com/tinoosan/txengine/internal/errs"
)

// Kind enumerates the closed set of operations the ledger understands.
type Kind uint8

const (
	KindDeposit Kind = iota + 1
	KindWithdrawal
	KindDispute
	KindResolve
	KindChargeback
)

var kindNames = map[Kind]string{
	KindDeposit:    "deposit",
	KindWithdrawal: "withdrawal",
	KindDispute:    "dispute",
	KindResolve:    "resolve",
	KindChargeback: "chargeback",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// CarriesAmount reports whether operations of this kind move their own funds.
// Only deposits and withdrawals do; the others reference a recorded transaction.
func (k Kind) CarriesAmount() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// ParseKind maps an input type literal to a Kind. Matching ignores case and
// surrounding whitespace.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown operation type %q: %w", s, errs.ErrInvalid)
}

// Operation is one input record. Kind selects which of the other fields are
// meaningful; Amount is zero for reference-only kinds.
type Operation struct {
	Kind   Kind
	Client ClientID
	Tx     TxID
	Amount Amount
}

func Deposit(client ClientID, tx TxID, amount Amount) Operation {
	return Operation{Kind: KindDeposit, Client: client, Tx: tx, Amount: amount}
}

func Withdrawal(client ClientID, tx TxID, amount Amount) Operation {
	return Operation{Kind: KindWithdrawal, Client: client, Tx: tx, Amount: amount}
}

func Dispute(client ClientID, tx TxID) Operation {
	return Operation{Kind: KindDispute, Client: client, Tx: tx, Amount: decimal.Zero}
}

func Resolve(client ClientID, tx TxID) Operation {
	return Operation{Kind: KindResolve, Client: client, Tx: tx, Amount: decimal.Zero}
}

func Chargeback(client ClientID, tx TxID) Operation {
	return Operation{Kind: KindChargeback, Client: client, Tx: tx, Amount: decimal.Zero}
}

// Value returns the operation's own amount. The second result is false for
// dispute, resolve and chargeback, which carry no amount.
func (o Operation) Value() (Amount, bool) {
	if !o.Kind.CarriesAmount() {
		return decimal.Zero, false
	}
	return o.Amount, true
}

func (o Operation) String() string {
	if v, ok := o.Value(); ok {
		return fmt.Sprintf("%s client=%d tx=%d amount=%s", o.Kind, o.Client, o.Tx, v)
	}
	return fmt.Sprintf("%s client=%d tx=%d", o.Kind, o.Client, o.Tx)
}

// OperationError ties a rejection to the operation that caused it.
// Err is always one of the errs sentinels.
type OperationError struct {
	Op  Operation
	Err error
}

func (e *OperationError) Error() string { return e.Op.String() + ": " + e.Err.Error() }

func (e *OperationError) Unwrap() error { return e.Err }
