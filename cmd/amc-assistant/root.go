package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"amc-news-assistant/internal/app"
	"amc-news-assistant/internal/config"
	"amc-news-assistant/internal/observability"
)

var (
	cfgFile  string
	logLevel string

	rootCmd = &cobra.Command{
		Use:           "amc-assistant",
		Short:         "Question answering over Amhara Media Corporation news",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/config.yaml", "config file (empty for defaults and environment only)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override observability.log_level")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(scrapeCommand())
	rootCmd.AddCommand(askCommand())
}

// loadServices reads the configuration and wires the pipeline.
func loadServices(ctx context.Context) (*app.Services, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Observability.LogLevel = logLevel
	}

	logger := observability.NewLogger(cfg.Observability.LogPath, cfg.Observability.LogLevel)
	services, err := app.Bootstrap(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return services, nil
}

func closeServices(s *app.Services) {
	if err := s.Close(); err != nil {
		s.Logger.Warn("Failed to release resources", "error", err)
	}
	_ = s.Logger.Sync()
}
