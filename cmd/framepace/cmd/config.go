package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/framepace/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  `Commands for managing framepace configuration.`,
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the effective configuration",
	Long: `Dump the effective configuration values in YAML format.

This shows all configuration options after applying the config file and
environment variables. Redirect the output to a file to create a
configuration template:

  framepace config dump > config.yaml

Environment variables use the FRAMEPACE_ prefix and underscores for
nesting. Example: buffer.capacity -> FRAMEPACE_BUFFER_CAPACITY`,
	RunE: runConfigDump,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configDumpCmd)
}

func runConfigDump(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Durations are rendered as strings so the dump round-trips through
	// viper's duration parsing.
	out := map[string]any{
		"server": map[string]any{
			"host":             cfg.Server.Host,
			"port":             cfg.Server.Port,
			"read_timeout":     cfg.Server.ReadTimeout.String(),
			"write_timeout":    cfg.Server.WriteTimeout.String(),
			"shutdown_timeout": cfg.Server.ShutdownTimeout.String(),
		},
		"logging": map[string]any{
			"level":       cfg.Logging.Level,
			"format":      cfg.Logging.Format,
			"add_source":  cfg.Logging.AddSource,
			"time_format": cfg.Logging.TimeFormat,
		},
		"buffer": map[string]any{
			"capacity":          cfg.Buffer.Capacity,
			"frame_rate":        cfg.Buffer.FrameRate,
			"sync_threshold_ms": cfg.Buffer.SyncThresholdMs,
		},
		"playback": map[string]any{
			"start_frame":   cfg.Playback.StartFrame,
			"tick_interval": cfg.Playback.TickInterval.String(),
			"source_width":  cfg.Playback.SourceWidth,
			"source_height": cfg.Playback.SourceHeight,
		},
	}

	b, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(b))
	return nil
}
