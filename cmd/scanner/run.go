package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"arbScope/internal/config"
)

func runScanner(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	maxCycles, _ := cmd.Flags().GetInt("max-cycles")

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := buildEngine(ctx, cfg, maxCycles, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Close(); err != nil {
			logger.Warn("close engine", zap.Error(err))
		}
	}()

	logger.Info("scanner start",
		zap.String("rpc", cfg.RPCURL),
		zap.Duration("cadence", cfg.Cadence),
		zap.Duration("cycle_deadline", cfg.CycleDeadline),
		zap.Int("workers", cfg.Workers),
		zap.Int("tokens", len(e.reg.Tokens())),
		zap.Int("pairs", len(e.reg.Pairs())),
		zap.Int("jobs_per_cycle", e.reg.JobCount()),
	)

	err = e.scheduler.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("scanner stopped")
		return nil
	}
	return err
}

func runScanOnce(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := buildEngine(ctx, cfg, 1, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Close(); err != nil {
			logger.Warn("close engine", zap.Error(err))
		}
	}()

	cycle, err := e.scheduler.RunCycle(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(cycle)
}
