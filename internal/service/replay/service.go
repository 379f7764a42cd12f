// Package replay drains an operation source into the ledger store, logging
// and counting rejections without stopping.
package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/txengine/internal/errs"
	"github.com/tinoosan/txengine/internal/ledger"
)

// Policy decides what happens to a row that is not an operation.
type Policy string

const (
	// PolicyFail aborts the replay on the first malformed row.
	PolicyFail Policy = "fail"
	// PolicySkip logs the malformed row and moves on.
	PolicySkip Policy = "skip"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyFail, PolicySkip:
		return Policy(s), nil
	case "":
		return PolicyFail, nil
	}
	return "", fmt.Errorf("on-malformed must be fail or skip, got %q: %w", s, errs.ErrInvalid)
}

// Source yields operations in input order. Next returns io.EOF when drained;
// an error wrapping errs.ErrMalformedRecord marks a skippable row.
type Source interface {
	Next() (ledger.Operation, error)
}

// Store applies a single operation to the account it targets.
type Store interface {
	Apply(op ledger.Operation) error
	Len() int
}

// Summary describes a finished replay.
type Summary struct {
	RunID     uuid.UUID
	Applied   int
	Rejected  int
	Malformed int
	// Rejections counts rejected operations per error sentinel.
	Rejections map[string]int
	Duration   time.Duration
}

// Service replays sources into a store.
type Service struct {
	store   Store
	policy  Policy
	log     *slog.Logger
	metrics *Metrics
}

// Option configures a Service.
type Option func(*Service)

func WithPolicy(p Policy) Option { return func(s *Service) { s.policy = p } }

func WithMetrics(m *Metrics) Option { return func(s *Service) { s.metrics = m } }

func New(store Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{store: store, policy: PolicyFail, log: logger}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

// Run applies every operation from src in order. Operation rejections are
// logged and counted; only a malformed row under PolicyFail or a read error
// ends the run early. The summary is valid even when an error is returned.
func (s *Service) Run(ctx context.Context, src Source) (sum Summary, err error) {
	sum = Summary{RunID: uuid.New(), Rejections: map[string]int{}}
	log := s.log.With("run_id", sum.RunID.String())
	start := time.Now()
	defer func() {
		sum.Duration = time.Since(start)
		s.metrics.accounts.Set(float64(s.store.Len()))
	}()

	log.InfoContext(ctx, "replay started", "on_malformed", string(s.policy))
	for {
		op, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !errors.Is(err, errs.ErrMalformedRecord) {
				log.ErrorContext(ctx, "read failed", "err", err)
				return sum, fmt.Errorf("read operations: %w", err)
			}
			sum.Malformed++
			s.metrics.malformed.Inc()
			if s.policy == PolicyFail {
				log.ErrorContext(ctx, "malformed record", "err", err)
				return sum, fmt.Errorf("decode: %w", err)
			}
			log.WarnContext(ctx, "skipping malformed record", "err", err)
			continue
		}

		if err = s.store.Apply(op); err != nil {
			sum.Rejected++
			sum.Rejections[rejectionCode(err)]++
			s.metrics.operations.WithLabelValues(op.Kind.String(), OutcomeRejected).Inc()
			log.WarnContext(ctx, "operation rejected",
				"kind", op.Kind.String(),
				"client", op.Client,
				"tx", op.Tx,
				"err", err,
			)
			continue
		}
		sum.Applied++
		s.metrics.operations.WithLabelValues(op.Kind.String(), OutcomeApplied).Inc()
		log.DebugContext(ctx, "operation applied", "kind", op.Kind.String(), "client", op.Client, "tx", op.Tx)
	}
	log.InfoContext(ctx, "replay complete",
		"applied", sum.Applied,
		"rejected", sum.Rejected,
		"malformed", sum.Malformed,
		"accounts", s.store.Len(),
	)
	return sum, nil
}

func rejectionCode(err error) string {
	var opErr *ledger.OperationError
	if errors.As(err, &opErr) {
		return opErr.Err.Error()
	}
	return err.Error()
}
