// Package cmd implements the CLI commands for framepace.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/framepace/internal/config"
	"github.com/jmylchreest/framepace/internal/observability"
	"github.com/jmylchreest/framepace/internal/version"
)

// cfgFile holds the config file path from the CLI flag.
var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "framepace",
	Short:   "Playback-timing buffer for decoded video",
	Version: version.Short(),
	Long: `framepace decouples video decoding from presentation: decoded frame
metadata is held in a bounded, time-ordered ring while an audio/video sync
clock decides whether each frame should be shown, held, or dropped.

The serve command runs playback sessions with a telemetry API; simulate
runs a single headless session and prints its final statistics.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initLogging(cmd)
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., /etc/framepace, $HOME/.framepace)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")
}

// initLogging configures the default slog logger from config, letting
// explicitly-set CLI flags override file and environment values.
func initLogging(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logCfg := cfg.Logging
	if cmd.Flags().Changed("log-level") {
		logCfg.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-format") {
		logCfg.Format, _ = cmd.Flags().GetString("log-format")
	}

	observability.SetDefault(observability.NewLogger(logCfg))
	return nil
}
