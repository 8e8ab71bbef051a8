package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/framepace/internal/buffer"
	"github.com/jmylchreest/framepace/internal/config"
	internalhttp "github.com/jmylchreest/framepace/internal/http"
	"github.com/jmylchreest/framepace/internal/http/handlers"
	"github.com/jmylchreest/framepace/internal/observability"
	"github.com/jmylchreest/framepace/internal/player"
	"github.com/jmylchreest/framepace/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run playback sessions with a telemetry API",
	Long: `Start playback sessions and the framepace HTTP server.

The server provides:
- REST API for session buffer and sync telemetry
- Health check endpoint
- OpenAPI documentation at /docs`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	registerServeFlags(serveCmd.Flags())
	serveCmd.Flags().Int("sessions", 1, "Number of playback sessions to run")
}

// registerServeFlags declares the serve overrides. Flags are not bound to
// viper; explicitly-set flags override config/env in runServe, preserving
// the priority: CLI flag > env var > config > default.
func registerServeFlags(flags *pflag.FlagSet) {
	flags.String("host", "", "Host to bind to")
	flags.Int("port", 0, "Port to listen on")
	flags.Int("capacity", 0, "Frame buffer capacity")
	flags.Float64("frame-rate", 0, "Video frame rate")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyServeFlags(cmd, cfg)

	sessionCount, _ := cmd.Flags().GetInt("sessions")
	if sessionCount < 1 {
		sessionCount = 1
	}

	logger := slog.Default()
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := player.NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < sessionCount; i++ {
		session := player.NewSession(newSessionConfig(cfg), newSource(cfg), logger)
		registry.Add(session)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer registry.Remove(session.ID())
			if err := session.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("session ended",
					slog.String("session_id", session.ID()),
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	server := internalhttp.NewServer(internalhttp.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger, version.Version)

	handlers.NewHealthHandler(version.Version).Register(server.API())
	handlers.NewSessionHandler(registry).Register(server.API())

	done := observability.TimedOperation(ctx, logger, "serve")
	err = server.ListenAndServe(ctx)
	stop()
	wg.Wait()
	done()

	return err
}

// applyServeFlags overlays explicitly-set CLI flags onto the loaded config.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("capacity") {
		cfg.Buffer.Capacity, _ = flags.GetInt("capacity")
	}
	if flags.Changed("frame-rate") {
		cfg.Buffer.FrameRate, _ = flags.GetFloat64("frame-rate")
	}
}

// newSessionConfig maps application config onto a player session config.
func newSessionConfig(cfg *config.Config) player.Config {
	return player.Config{
		Ring:            newRingConfig(cfg),
		SyncThresholdMs: cfg.Buffer.SyncThresholdMs,
		TickInterval:    cfg.Playback.TickInterval,
		StartFrame:      cfg.Playback.StartFrame,
	}
}

func newRingConfig(cfg *config.Config) buffer.RingConfig {
	return buffer.RingConfig{
		Capacity:  cfg.Buffer.Capacity,
		FrameRate: cfg.Buffer.FrameRate,
	}
}

func newSource(cfg *config.Config) *player.SyntheticSource {
	return player.NewSyntheticSource(
		cfg.Playback.SourceWidth,
		cfg.Playback.SourceHeight,
		cfg.Buffer.FrameRate,
	)
}
