package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/testbridge/testbridge/pkg/config"
	"github.com/testbridge/testbridge/pkg/logger"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupContext initializes logging (flags win over the config file) and
// attaches both logger and config to the command context.
func setupContext(cmd *cobra.Command, cfg *config.Config) (context.Context, error) {
	level, jsonOut, source, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return nil, err
	}
	if !cmd.Flags().Changed("log-level") {
		level = cfg.Logging.Level
	}
	if !cmd.Flags().Changed("log-json") {
		jsonOut = cfg.Logging.JSON
	}
	if !cmd.Flags().Changed("log-source") {
		source = cfg.Logging.Source
	}
	logger.SetupLogger(level, jsonOut, source)

	ctx := logger.ContextWithLogger(cmd.Context(), logger.GetDefault())
	return config.ContextWithConfig(ctx, cfg), nil
}
