package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TKay76/the-trend-navigator/agents/collector"
	"github.com/TKay76/the-trend-navigator/agents/collector/youtube"
	"github.com/TKay76/the-trend-navigator/shared/config"
)

func newCollectCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	var (
		categories []string
		maxResults int
		region     string
		days       int
		output     string
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect top shorts for the configured categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(categories) > 0 {
				cfg.Queries.Categories = categories
			}
			if maxResults > 0 {
				cfg.Queries.MaxResultsPerQuery = maxResults
			}
			if region != "" {
				cfg.YouTube.RegionCode = region
			}
			if days > 0 {
				cfg.Queries.Days = days
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client, err := youtube.NewClient(&cfg.YouTube)
			if err != nil {
				return fmt.Errorf("failed to create YouTube client: %w", err)
			}

			agent := collector.New(client, cfg.Queries)
			videos, err := agent.CollectByCategories(ctx, cfg.Queries.Categories)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", agent.Stats().GetSummary())
			return writeJSON(ctx, output, cmd, videos)
		},
	}

	cmd.Flags().StringSliceVar(&categories, "categories", nil, "Search categories (defaults to configured categories)")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Maximum results per query")
	cmd.Flags().StringVar(&region, "region", "", "Region code for search")
	cmd.Flags().IntVar(&days, "days", 0, "Only consider videos published in the last N days")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write collected videos as JSON to this file (default stdout)")

	return cmd
}

func writeJSON(ctx context.Context, path string, cmd *cobra.Command, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}
