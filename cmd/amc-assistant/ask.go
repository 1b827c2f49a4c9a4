package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"amc-news-assistant/internal/app"
)

func askCommand() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one question and print the response as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := loadServices(cmd.Context())
			if err != nil {
				return err
			}
			defer closeServices(services)

			resp, err := services.Orchestrator.Ask(cmd.Context(), app.Request{
				Message:  strings.Join(args, " "),
				Language: language,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVar(&language, "language", "am", "answer language for institutional questions (am or en)")
	return cmd
}
