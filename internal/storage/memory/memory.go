// Package memory holds the ledger store: every client account for a run, kept
// in memory and mutated in place as operations are applied.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tinoosan/txengine/internal/errs"
	"github.com/tinoosan/txengine/internal/ledger"
)

// Store owns the accounts of a run. Operations are applied by a single
// writer; the RWMutex lets the HTTP surface read snapshots concurrently.
type Store struct {
	mu       sync.RWMutex
	accounts map[ledger.ClientID]*ledger.Account
}

// New constructs an empty store.
func New() *Store {
	return &Store{accounts: make(map[ledger.ClientID]*ledger.Account)}
}

// Reset drops every account.
func (s *Store) Reset() {
	s.mu.Lock()
	s.accounts = map[ledger.ClientID]*ledger.Account{}
	s.mu.Unlock()
}

// Apply runs op against the account it targets, creating the account on first
// reference. The account stays registered even when op is rejected.
func (s *Store) Apply(op ledger.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[op.Client]
	if !ok {
		acc = ledger.NewAccount(op.Client)
		s.accounts[op.Client] = acc
	}
	return ledger.Execute(op, acc)
}

// Snapshot returns one balance row per account. Rows are ordered by client id
// when sorted is true; otherwise the order is unspecified.
func (s *Store) Snapshot(sorted bool) []ledger.Balance {
	s.mu.RLock()
	out := make([]ledger.Balance, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, acc.Balance())
	}
	s.mu.RUnlock()
	if sorted {
		sort.Slice(out, func(i, j int) bool { return out[i].Client < out[j].Client })
	}
	return out
}

// Account returns a deep copy of a single account.
func (s *Store) Account(id ledger.ClientID) (ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return ledger.Account{}, errs.ErrNotFound
	}
	return acc.Clone(), nil
}

// Len returns the number of registered accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// Ready always succeeds; the store has no external dependency.
func (s *Store) Ready(_ context.Context) error { return nil }
