package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sloan/internal/config"
	"sloan/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	workers    int
	blockSize  uint64

	// Loaded configuration, flags applied
	cfg = config.DefaultConfig()

	// Logger
	logger = zap.NewNop()
	runID  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sloan",
	Short: "Maximal multiplicative persistence across numeral bases",
	Long: `sloan computes, for each integer, the highest multiplicative persistence it
reaches under the digit-product (Sloan) map in any base, and the first base
that reaches it.

Modes:
  range       bulk results for [START, END), appended to a CSV file
  sequence    record-persistence terms (OEIS A330152) on stdout
  trajectory  the step-by-step digit products of one number in one base
  config      write the effective configuration as YAML`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "Config file (YAML); missing file means defaults")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Parallel workers (0 = one per CPU, 1 = sequential)")
	rootCmd.PersistentFlags().Uint64Var(&blockSize, "block-size", 0, "Integers per block (overrides scan.block_size or scan.record_block_size)")

	rootCmd.AddCommand(rangeCmd)
	rootCmd.AddCommand(sequenceCmd)
	rootCmd.AddCommand(trajectoryCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config, applies flag overrides and initializes logging.
func setup(cmd *cobra.Command) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		loaded.Scan.Workers = workers
	}
	if flags.Changed("block-size") {
		if cmd == sequenceCmd {
			loaded.Scan.RecordBlockSize = blockSize
		} else {
			loaded.Scan.BlockSize = blockSize
		}
	}
	if flags.Changed("progress") {
		loaded.Display.Progress = showProgress
	}
	if verbose {
		loaded.Logging.Level = "debug"
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := logging.Initialize(loaded.Logging.Options()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	cfg = loaded
	runID = uuid.NewString()[:8]
	logger = logging.Zap().With(zap.String("run_id", runID))
	logger.Debug("Configuration loaded",
		zap.String("path", configPath),
		zap.Int("workers", cfg.Scan.Workers),
		zap.Uint64("block_size", cfg.Scan.BlockSize),
		zap.Uint64("record_block_size", cfg.Scan.RecordBlockSize))
	return nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// parseUint parses a non-negative decimal argument.
func parseUint(name, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer that fits in 64 bits", name, s)
	}
	return v, nil
}
