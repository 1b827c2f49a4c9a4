package main

import (
	"github.com/spf13/cobra"

	"amc-news-assistant/internal/api"
	"amc-news-assistant/internal/app"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and refresh articles on schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := loadServices(cmd.Context())
			if err != nil {
				return err
			}
			defer closeServices(services)

			ctx, cancel := app.GracefulShutdown(cmd.Context(), services.Logger)
			defer cancel()

			cfg := services.Config
			if err := services.Refresher.Start(ctx); err != nil {
				return err
			}

			server := api.NewServer(services.Orchestrator, services.Logger, api.Options{
				Addr:            cfg.Server.Addr,
				Version:         cfg.Server.Version,
				ShutdownTimeout: cfg.GetShutdownTimeout(),
				Store:           services.Store,
				ScraperReady:    services.Scraper != nil,
				Metrics:         services.Metrics,
			})
			return server.Run(ctx)
		},
	}
}
