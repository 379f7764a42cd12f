package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/txengine/internal/errs"
	"github.com/tinoosan/txengine/internal/ledger"
)

func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres store tests")
	}
	return dsn
}

func mustOpen(t *testing.T, dsn string) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := Open(ctx, dsn)
	require.NoError(t, err, "open")
	t.Cleanup(s.Close)
	return s
}

func applyInitSQL(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Resolve init SQL path relative to this test file so CWD doesn't matter
	_, thisFile, _, _ := runtime.Caller(0)
	repoRoot := filepath.Clean(filepath.Join(filepath.Dir(thisFile), "../../../"))
	b, err := os.ReadFile(filepath.Join(repoRoot, "db", "migrations", "0001_init.sql"))
	require.NoError(t, err, "read init sql")
	_, err = s.pool.Exec(ctx, string(b))
	require.NoError(t, err, "apply init sql")
}

func TestStore_ExportSnapshot(t *testing.T) {
	s := mustOpen(t, getTestDSN(t))
	applyInitSQL(t, s)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, s.Ready(ctx))

	run := Run{ID: uuid.New(), Source: "store_test", Applied: 3, Rejected: 1}
	t.Cleanup(func() { _ = s.DeleteRun(context.Background(), run.ID) })
	rows := []ledger.Balance{
		{Client: 2, Available: decimal.MustParse("0.0"), Held: decimal.MustParse("10.0"), Total: decimal.MustParse("10.0")},
		{Client: 1, Available: decimal.MustParse("35.7611"), Held: decimal.Zero, Total: decimal.MustParse("35.7611"), Locked: true},
	}
	require.NoError(t, s.ExportSnapshot(ctx, run, rows))

	got, err := s.RunBalances(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ledger.ClientID(1), got[0].Client)
	assert.Equal(t, "35.7611", ledger.FormatAmount(got[0].Total))
	assert.True(t, got[0].Locked)
	assert.Equal(t, "10.0", ledger.FormatAmount(got[1].Held))

	err = s.ExportSnapshot(ctx, run, rows)
	require.Error(t, err)
	assert.True(t, IsDuplicateRun(err))
}

func TestStore_UnknownRun(t *testing.T) {
	s := mustOpen(t, getTestDSN(t))
	applyInitSQL(t, s)
	ctx := context.Background()

	_, err := s.RunBalances(ctx, uuid.New())
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.ErrorIs(t, s.DeleteRun(ctx, uuid.New()), errs.ErrNotFound)
	require.ErrorIs(t, s.ExportSnapshot(ctx, Run{}, nil), errs.ErrInvalid)
}
