package ledger

import (
	"github.com/tinoosan/txengine/internal/errs"
)

// Execute applies op to acc. On error acc is left untouched and the returned
// error is an *OperationError wrapping one of the errs sentinels.
//
// Deposits and withdrawals are recorded in the account history; disputes,
// resolves and chargebacks act on a recorded transaction by id.
func Execute(op Operation, acc *Account) error {
	if acc.Locked {
		return reject(op, errs.ErrAccountLocked)
	}
	var err error
	switch op.Kind {
	case KindDeposit:
		err = deposit(op, acc)
	case KindWithdrawal:
		err = withdraw(op, acc)
	case KindDispute:
		err = dispute(op, acc)
	case KindResolve:
		err = resolve(op, acc)
	case KindChargeback:
		err = chargeback(op, acc)
	default:
		err = errs.ErrInvalid
	}
	if err != nil {
		return reject(op, err)
	}
	return nil
}

func reject(op Operation, err error) error { return &OperationError{Op: op, Err: err} }

func deposit(op Operation, acc *Account) error {
	if op.Amount.IsNeg() {
		return errs.ErrInvalid
	}
	avail, err := op.Amount.Add(acc.Available)
	if err != nil {
		return errs.ErrAmountOverflow
	}
	if err := checkTotal(avail, acc.Held); err != nil {
		return err
	}
	acc.Available = avail
	acc.History[op.Tx] = &Record{Amount: op.Amount}
	return nil
}

func withdraw(op Operation, acc *Account) error {
	if op.Amount.IsNeg() {
		return errs.ErrInvalid
	}
	if acc.Available.Cmp(op.Amount) < 0 {
		return errs.ErrInsufficientFunds
	}
	avail, err := acc.Available.Sub(op.Amount)
	if err != nil {
		return errs.ErrAmountOverflow
	}
	if err := checkTotal(avail, acc.Held); err != nil {
		return err
	}
	acc.Available = avail
	acc.History[op.Tx] = &Record{Amount: op.Amount}
	return nil
}

// dispute freezes the recorded amount: available -> held.
// Available may go negative when the disputed funds were already withdrawn.
func dispute(op Operation, acc *Account) error {
	rec, ok := acc.History[op.Tx]
	if !ok {
		return errs.ErrUnknownTransaction
	}
	if rec.Disputed {
		return errs.ErrAlreadyDisputed
	}
	avail, held, err := move(acc.Available, acc.Held, rec.Amount)
	if err != nil {
		return err
	}
	acc.Available, acc.Held = avail, held
	rec.Disputed = true
	return nil
}

// resolve releases a disputed amount: held -> available.
func resolve(op Operation, acc *Account) error {
	rec, ok := acc.History[op.Tx]
	if !ok {
		return errs.ErrUnknownTransaction
	}
	if !rec.Disputed {
		return errs.ErrNotDisputed
	}
	held, avail, err := move(acc.Held, acc.Available, rec.Amount)
	if err != nil {
		return err
	}
	acc.Available, acc.Held = avail, held
	rec.Disputed = false
	return nil
}

// chargeback removes the disputed amount from held and locks the account.
func chargeback(op Operation, acc *Account) error {
	rec, ok := acc.History[op.Tx]
	if !ok {
		return errs.ErrUnknownTransaction
	}
	if !rec.Disputed {
		return errs.ErrNotDisputed
	}
	held, err := acc.Held.Sub(rec.Amount)
	if err != nil {
		return errs.ErrAmountOverflow
	}
	if err := checkTotal(acc.Available, held); err != nil {
		return err
	}
	acc.Held = held
	rec.Disputed = false
	acc.Locked = true
	return nil
}

// move shifts amt from one balance to the other. Both results are computed
// before either is assigned so an overflow leaves the caller unchanged.
func move(from, to, amt Amount) (Amount, Amount, error) {
	f, err := from.Sub(amt)
	if err != nil {
		return from, to, errs.ErrAmountOverflow
	}
	t, err := to.Add(amt)
	if err != nil {
		return from, to, errs.ErrAmountOverflow
	}
	if err := checkTotal(f, t); err != nil {
		return from, to, err
	}
	return f, t, nil
}

// checkTotal keeps available + held representable so Account.Total never fails.
func checkTotal(available, held Amount) error {
	if _, err := available.Add(held); err != nil {
		return errs.ErrAmountOverflow
	}
	return nil
}
