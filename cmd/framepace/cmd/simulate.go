package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/framepace/internal/config"
	"github.com/jmylchreest/framepace/internal/player"
)

var (
	simulateDuration time.Duration
	simulateFrames   uint64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a headless playback session and print its statistics",
	Long: `Run a single playback session against a synthetic frame source,
without the HTTP server, and print the final buffer and sync statistics
as JSON. Useful for tuning capacity, frame rate, and sync threshold.`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().DurationVar(&simulateDuration, "duration", 10*time.Second, "how long to run the simulation")
	simulateCmd.Flags().Uint64Var(&simulateFrames, "frames", 0, "stop after this many source frames (0 = unbounded)")
	registerServeFlags(simulateCmd.Flags())
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyServeFlags(cmd, cfg)

	source := newSource(cfg)
	if simulateFrames > 0 {
		source = source.WithFrameLimit(simulateFrames)
	}

	session := player.NewSession(newSessionConfig(cfg), source, slog.Default())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, simulateDuration)
	defer cancel()

	if err := session.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("running session: %w", err)
	}

	out, err := json.MarshalIndent(session.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
