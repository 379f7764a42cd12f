// Package cli provides the txengine command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/tinoosan/txengine/internal/config"
	"github.com/tinoosan/txengine/internal/csvio"
	"github.com/tinoosan/txengine/internal/httpapi"
	"github.com/tinoosan/txengine/internal/service/replay"
	"github.com/tinoosan/txengine/internal/storage/memory"
	"github.com/tinoosan/txengine/internal/storage/postgres"
)

type flags struct {
	cfgFile     string
	envFile     string
	sorted      bool
	onMalformed string
	serveAddr   string
	export      bool
	debug       bool
}

// NewRootCmd builds the txengine command.
func NewRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "txengine [flags] <FILE>",
		Short: "Replay a CSV log of client operations and report final balances",
		Long: `txengine applies deposits, withdrawals, disputes, resolves and
chargebacks from a CSV file to per-client accounts, in file order, and
prints every client's final balances as CSV on stdout.

Rejected operations (insufficient funds, locked account, unknown or
wrongly-disputed transaction) are logged to stderr and skipped.

Example:
  txengine transactions.csv > accounts.csv
  txengine --sorted --on-malformed skip transactions.csv
  txengine --serve :8080 transactions.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args[0])
		},
	}
	pf := cmd.Flags()
	pf.StringVar(&f.cfgFile, "config", "", "YAML config file")
	pf.StringVar(&f.envFile, "env-file", "", "env file (default is .env when present)")
	pf.BoolVar(&f.sorted, "sorted", false, "sort report rows by client id")
	pf.StringVar(&f.onMalformed, "on-malformed", "", "malformed row policy: fail or skip (default fail)")
	pf.StringVar(&f.serveAddr, "serve", "", "after the replay, serve the snapshot over HTTP on this address")
	pf.BoolVar(&f.export, "export", false, "export the snapshot to Postgres (requires DATABASE_URL)")
	pf.BoolVar(&f.debug, "debug", false, "enable debug logging")
	return cmd
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func run(cmd *cobra.Command, f *flags, path string) error {
	cfg, err := config.Load(f.cfgFile, f.envFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, f, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := buildLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	policy, err := replay.ParsePolicy(cfg.Replay.OnMalformed)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store := memory.New()
	svc := replay.New(store, logger, replay.WithPolicy(policy), replay.WithMetrics(replay.NewMetrics(reg)))
	sum, err := svc.Run(ctx, csvio.NewDecoder(file))
	if err != nil {
		return err
	}

	if err := csvio.WriteReport(cmd.OutOrStdout(), store.Snapshot(cfg.Replay.Sorted)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if f.export {
		if cfg.DatabaseURL == "" {
			return errors.New("--export requires DATABASE_URL")
		}
		exported := postgres.Run{ID: sum.RunID, Source: filepath.Base(path), Applied: sum.Applied, Rejected: sum.Rejected, Malformed: sum.Malformed}
		if err := export(ctx, cfg.DatabaseURL, exported, store); err != nil {
			return fmt.Errorf("export snapshot: %w", err)
		}
		logger.Info("snapshot exported", "run_id", sum.RunID.String(), "accounts", store.Len())
	}

	if cfg.Serve.Addr != "" {
		return serve(ctx, logger, cfg.Serve.Addr, httpapi.New(store, logger, httpapi.WithRegistry(reg)).Handler())
	}
	return nil
}

// applyFlags lets explicitly set flags win over file and env settings.
func applyFlags(cmd *cobra.Command, f *flags, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("sorted") {
		cfg.Replay.Sorted = f.sorted
	}
	if fs.Changed("on-malformed") {
		cfg.Replay.OnMalformed = f.onMalformed
	}
	if fs.Changed("serve") {
		cfg.Serve.Addr = f.serveAddr
	}
	if f.debug {
		cfg.Log.Level = "debug"
	}
}

func export(ctx context.Context, dsn string, run postgres.Run, store *memory.Store) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	pg, err := postgres.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer pg.Close()
	return pg.ExportSnapshot(ctx, run, store.Snapshot(true))
}

func serve(ctx context.Context, logger *slog.Logger, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("snapshot server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
		return nil
	case err := <-errCh:
		logger.Error("server error", "err", err)
		return err
	}
}
