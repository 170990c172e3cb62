package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "scanner",
		Short:        "Flash-loan arbitrage opportunity scanner",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path (default ./config.yaml)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Scan on a fixed cadence until interrupted",
		RunE:  runScanner,
	}
	addEngineFlags(runCmd)
	runCmd.Flags().Int("max-cycles", 0, "stop after this many cycles, 0 means run until interrupted")
	root.AddCommand(runCmd)

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a single scan cycle and print it as JSON",
		RunE:  runScanOnce,
	}
	addEngineFlags(scanCmd)
	root.AddCommand(scanCmd)

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and verify tokens on chain",
		RunE:  runCheck,
	}
	checkCmd.Flags().String("rpc", "", "JSON-RPC endpoint URL")
	checkCmd.Flags().Int("max-retries", 5, "maximum retry attempts for token verification")
	checkCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	checkCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(checkCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "JSON-RPC endpoint URL")
	cmd.Flags().Duration("cadence", 15*time.Second, "interval between cycle starts")
	cmd.Flags().Duration("cycle-deadline", 10*time.Second, "collection deadline per cycle, must be shorter than cadence")
	cmd.Flags().Duration("call-timeout", 3*time.Second, "timeout of a single venue call")
	cmd.Flags().Int("workers", 8, "concurrent venue calls")
	cmd.Flags().Bool("pin-block", true, "quote every call of a cycle at the same block")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts for startup checks")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("checkpoint", "", "file that keeps the cycle sequence across restarts")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().String("jsonl-out", "", "append sealed cycles to this JSONL file")
	cmd.Flags().Bool("jsonl-opportunities-only", false, "only write cycles with opportunities to JSONL")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN for the opportunity store")
	cmd.Flags().Bool("pg-migrate", false, "create Postgres tables on startup")
	cmd.Flags().String("redis-addr", "", "Redis host:port or redis:// URL for cycle publishing")
	cmd.Flags().String("redis-stream", "", "Redis stream receiving one entry per opportunity")
	cmd.Flags().String("telegram-chat-id", "", "Telegram chat receiving opportunity alerts")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
