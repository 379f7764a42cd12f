// Package csvio reads operation logs and writes balance reports as CSV.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/govalues/decimal"

	"github.com/tinoosan/txengine/internal/errs"
	"github.com/tinoosan/txengine/internal/ledger"
)

// Input column names.
const (
	ColType   = "type"
	ColClient = "client"
	ColTx     = "tx"
	ColAmount = "amount"
)

// DecodeError reports a row that could not be turned into an operation.
// It wraps errs.ErrMalformedRecord.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{errs.ErrMalformedRecord, e.Err} }

// Decoder turns CSV rows into ledger operations, one at a time.
type Decoder struct {
	r    *csv.Reader
	cols map[string]int
	// err is sticky once the header has failed.
	err error
}

// NewDecoder wraps r. The header row is read lazily on the first call to Next.
func NewDecoder(r io.Reader) *Decoder {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &Decoder{r: cr}
}

// Next returns the next operation, io.EOF at the end of input, or a
// *DecodeError for a row that is not an operation. Decoding may continue
// after a *DecodeError; any other error is fatal. A bad header is not a row:
// it wraps errs.ErrInvalid and every later call returns it again.
func (d *Decoder) Next() (ledger.Operation, error) {
	if d.err != nil {
		return ledger.Operation{}, d.err
	}
	if d.cols == nil {
		if err := d.readHeader(); err != nil {
			if err != io.EOF {
				d.err = err
			}
			return ledger.Operation{}, err
		}
	}
	for {
		rec, err := d.r.Read()
		if err == io.EOF {
			return ledger.Operation{}, io.EOF
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return ledger.Operation{}, &DecodeError{Line: perr.Line, Err: perr.Err}
			}
			return ledger.Operation{}, err
		}
		if len(rec) == 0 || blankRecord(rec) {
			continue
		}
		op, err := d.decode(rec)
		if err != nil {
			line, _ := d.r.FieldPos(0)
			return ledger.Operation{}, &DecodeError{Line: line, Err: err}
		}
		return op, nil
	}
}

func (d *Decoder) readHeader() error {
	rec, err := d.r.Read()
	if err == io.EOF {
		return io.EOF
	}
	if err != nil {
		return fmt.Errorf("header: %w: %w", errs.ErrInvalid, err)
	}
	cols := make(map[string]int, len(rec))
	for i, name := range rec {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{ColType, ColClient, ColTx} {
		if _, ok := cols[required]; !ok {
			return fmt.Errorf("header is missing column %q: %w", required, errs.ErrInvalid)
		}
	}
	d.cols = cols
	return nil
}

func (d *Decoder) field(rec []string, name string) string {
	i, ok := d.cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (d *Decoder) decode(rec []string) (ledger.Operation, error) {
	kind, err := ledger.ParseKind(d.field(rec, ColType))
	if err != nil {
		return ledger.Operation{}, err
	}
	client, err := strconv.ParseUint(d.field(rec, ColClient), 10, 16)
	if err != nil {
		return ledger.Operation{}, fmt.Errorf("client: %w", err)
	}
	tx, err := strconv.ParseUint(d.field(rec, ColTx), 10, 32)
	if err != nil {
		return ledger.Operation{}, fmt.Errorf("tx: %w", err)
	}

	op := ledger.Operation{Kind: kind, Client: ledger.ClientID(client), Tx: ledger.TxID(tx), Amount: decimal.Zero}
	raw := d.field(rec, ColAmount)
	if !kind.CarriesAmount() {
		// reference-only kinds ignore whatever sits in the amount column
		return op, nil
	}
	if raw == "" {
		return ledger.Operation{}, fmt.Errorf("%s requires an amount", kind)
	}
	a, err := decimal.Parse(raw)
	if err != nil {
		return ledger.Operation{}, fmt.Errorf("amount: %w", err)
	}
	if a.IsNeg() {
		return ledger.Operation{}, fmt.Errorf("amount %s is negative: %w", raw, errs.ErrInvalid)
	}
	op.Amount = a
	return op, nil
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
