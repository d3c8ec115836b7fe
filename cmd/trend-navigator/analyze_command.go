package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TKay76/the-trend-navigator/agents/analyzer"
	"github.com/TKay76/the-trend-navigator/internal/models"
	"github.com/TKay76/the-trend-navigator/shared/ai"
	"github.com/TKay76/the-trend-navigator/shared/config"
	"github.com/TKay76/the-trend-navigator/shared/storage"
)

func newAnalyzeCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	var (
		input     string
		output    string
		batchSize int
		category  string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classify collected videos and render a trend report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if batchSize > 0 {
				cfg.AI.BatchSize = batchSize
			}

			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}
			var videos []*models.VideoRecord
			if err := json.Unmarshal(data, &videos); err != nil {
				return fmt.Errorf("failed to parse input file %s: %w", input, err)
			}
			if len(videos) == 0 {
				return fmt.Errorf("input file %s contains no videos", input)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			classifier, err := ai.NewGeminiClassifier(cfg)
			if err != nil {
				return fmt.Errorf("failed to create classifier: %w", err)
			}

			agent := analyzer.New(classifier, &cfg.AI)
			classified, err := agent.ClassifyVideos(ctx, videos)
			if err != nil {
				return err
			}
			stats := agent.Stats()
			fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", stats.GetSummary())

			if len(classified) == 0 {
				return fmt.Errorf("no videos classified")
			}

			store, err := storage.Open(cfg.Storage.DataDir)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.SaveClassifications(ctx, classified); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to persist classifications: %v\n", err)
			}
			if err := store.SaveRun(ctx, stats); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to persist run statistics: %v\n", err)
			}

			report := agent.GenerateTrendReport(classified, models.Category(category))
			markdown := analyzer.RenderMarkdown(report, stats)

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), markdown)
				return nil
			}
			if err := os.WriteFile(output, []byte(markdown), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON file of collected videos (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the markdown report to this file (default stdout)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Videos per classification request")
	cmd.Flags().StringVar(&category, "category", "", "Report on this category instead of the dominant one")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
