// Package cli implements the batchrun command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewRootCmd creates the batchrun root command.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "batchrun",
		Short:         "Run a file of commands with bounded concurrency",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.AddCommand(NewRunCmd())

	return cmd
}

// newLogger builds a console logger writing to stderr at the level named by the --log-level flag.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	levelName, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}
