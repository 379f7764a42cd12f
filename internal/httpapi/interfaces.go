package httpapi

import (
	"context"

	"github.com/tinoosan/txengine/internal/ledger"
)

// Reader abstracts the read side of the ledger store.
type Reader interface {
	// Snapshot returns one balance per client, ordered by client id when sorted is true.
	Snapshot(sorted bool) []ledger.Balance
	// Account returns a copy of one client's account or errs.ErrNotFound.
	Account(id ledger.ClientID) (ledger.Account, error)
}

// ReadyChecker is optionally implemented by readers to indicate readiness.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}
