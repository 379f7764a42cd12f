// Package postgres exports replay snapshots to Postgres through a pgx pool.
//
// It is write-only from the engine's point of view: a run never seeds its
// store from here. The schema lives under db/migrations.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tinoosan/txengine/internal/errs"
	"github.com/tinoosan/txengine/internal/ledger"
)

// Store holds a pgx connection pool. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Run describes the replay a snapshot belongs to.
type Run struct {
	ID        uuid.UUID
	Source    string
	Applied   int
	Rejected  int
	Malformed int
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// ExportSnapshot writes the run and every balance row in one transaction.
// Exporting the same run id twice fails on the primary key.
func (s *Store) ExportSnapshot(ctx context.Context, run Run, rows []ledger.Balance) error {
	if run.ID == uuid.Nil {
		return fmt.Errorf("run id is required: %w", errs.ErrInvalid)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		insert into replay_runs (id, source, applied, rejected, malformed)
		values ($1, $2, $3, $4, $5)
	`, run.ID, run.Source, run.Applied, run.Rejected, run.Malformed); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, b := range rows {
		batch.Queue(`
			insert into client_balances (run_id, client, available, held, total, locked)
			values ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6)
		`, run.ID, int32(b.Client), b.Available.String(), b.Held.String(), b.Total.String(), b.Locked)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert balances: %w", err)
	}
	return tx.Commit(ctx)
}

// RunBalances returns the exported rows of a run ordered by client.
func (s *Store) RunBalances(ctx context.Context, runID uuid.UUID) ([]ledger.Balance, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `select exists(select 1 from replay_runs where id = $1)`, runID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.ErrNotFound
	}

	rows, err := s.pool.Query(ctx, `
		select client, available::text, held::text, total::text, locked
		from client_balances
		where run_id = $1
		order by client
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Balance, 0)
	for rows.Next() {
		var (
			client                 int32
			available, held, total string
			b                      ledger.Balance
		)
		if err := rows.Scan(&client, &available, &held, &total, &b.Locked); err != nil {
			return nil, err
		}
		b.Client = ledger.ClientID(client)
		if b.Available, err = decimal.Parse(available); err != nil {
			return nil, err
		}
		if b.Held, err = decimal.Parse(held); err != nil {
			return nil, err
		}
		if b.Total, err = decimal.Parse(total); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its balances.
func (s *Store) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `delete from replay_runs where id = $1`, runID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// IsDuplicateRun reports whether err came from exporting an existing run id.
func IsDuplicateRun(err error) bool {
	var pgErr interface{ SQLState() string }
	return errors.As(err, &pgErr) && pgErr.SQLState() == "23505"
}
