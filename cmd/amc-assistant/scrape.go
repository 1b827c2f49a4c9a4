package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"amc-news-assistant/internal/config"
	"amc-news-assistant/internal/normalize"
)

func scrapeCommand() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape the site once, ignoring the cache, and print what was found",
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := loadServices(cmd.Context())
			if err != nil {
				return err
			}
			defer closeServices(services)

			articles, err := services.Scraper.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("scrape failed: %w", err)
			}

			if save && services.Store != nil {
				if err := services.Store.SaveArticles(cmd.Context(), articles); err != nil {
					return fmt.Errorf("failed to save articles: %w", err)
				}
			}

			preview := normalize.NewNormalizer(config.NormalizeConfig{MaxPreviewChars: 60})

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"#", "Title", "Date", "Category", "Lang", "URL"})
			for i, a := range articles {
				t.AppendRow(table.Row{i + 1, preview.TruncatePreview(a.Title), a.Date, a.Category, a.Language, a.URL})
			}
			t.AppendFooter(table.Row{"", fmt.Sprintf("%d article(s)", len(articles))})
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "also upsert the result into the article store")
	return cmd
}
