// Command bookingd wires the booking core's store, services, and
// background jobs together and runs the two periodic sweeps until the
// process receives SIGINT/SIGTERM (spec §6: "Exit codes / CLI are out of
// scope"; this entrypoint exists only to host the core, not an HTTP
// transport — that stays an external collaborator per spec §1).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/clock"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/conflict"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/config"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/contractsvc"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/jobs"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/logging"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/notify"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/rentrequestsvc"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logFormat string

	cmd := &cobra.Command{
		Use:   "bookingd",
		Short: "Runs the booking core's background jobs against a Postgres store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), logFormat)
		},
	}
	cmd.Flags().StringVar(&logFormat, "log-format", "console", "log encoder: console or json")
	return cmd
}

func run(ctx context.Context, logFormat string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("bookingd: load config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, logging.Format(logFormat))
	if err != nil {
		return fmt.Errorf("bookingd: build logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DatabaseURL, cfg.DatabasePoolMaxConns, log)
	if err != nil {
		return fmt.Errorf("bookingd: open store: %w", err)
	}
	defer st.Close()

	clk := clock.System{}
	detector := conflict.New(st, log)
	notifier := notify.NewLoggingNotifier(log)

	contracts := contractsvc.New(st, detector, clk, log)
	rentRequests := rentrequestsvc.New(st, detector, clk, notifier, log)

	log.Info("bookingd starting",
		zap.Duration("autoAdvanceInterval", cfg.AutoAdvanceInterval),
		zap.Duration("autoExpireInterval", cfg.AutoExpireInterval),
		zap.Int("jobBatchSize", cfg.JobBatchSize),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runPeriodic(ctx, cfg.AutoAdvanceInterval, func(ctx context.Context) {
			n, err := jobs.AutoAdvance(ctx, st, contracts, clk, log, cfg.JobBatchSize)
			if err != nil {
				log.Warn("auto-advance pass failed", zap.Error(err))
				return
			}
			log.Debug("auto-advance pass complete", zap.Int("advanced", n))
		})
	})
	g.Go(func() error {
		return runPeriodic(ctx, cfg.AutoExpireInterval, func(ctx context.Context) {
			n, err := jobs.AutoExpire(ctx, rentRequests, cfg.JobBatchSize)
			if err != nil {
				log.Warn("auto-expire pass failed", zap.Error(err))
				return
			}
			log.Debug("auto-expire pass complete", zap.Int("expired", n))
		})
	})

	err = g.Wait()
	log.Info("bookingd stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// runPeriodic invokes fn every interval until ctx is cancelled, running fn
// once immediately on entry.
func runPeriodic(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn(ctx)
		}
	}
}
