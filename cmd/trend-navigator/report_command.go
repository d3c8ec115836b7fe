package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TKay76/the-trend-navigator/internal/models"
	"github.com/TKay76/the-trend-navigator/shared/config"
	"github.com/TKay76/the-trend-navigator/shared/storage"
)

func newReportCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	var (
		category string
		limit    int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show stored classifications from previous runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := storage.Open(cfg.Storage.DataDir)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			videos, err := store.ListByCategory(ctx, models.Category(category), limit)
			if err != nil {
				return err
			}
			if len(videos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored classifications found")
				return nil
			}

			if asJSON {
				return writeJSON(ctx, "", cmd, videos)
			}

			for i, v := range videos {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. [%s] %s - %s (%d views, confidence %.2f)\n",
					i+1, v.Category, v.Title, v.ChannelTitle, v.ViewCount, v.Confidence)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only show this category")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a listing")

	return cmd
}
