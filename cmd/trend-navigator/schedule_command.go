package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TKay76/the-trend-navigator/agents/pipeline"
	"github.com/TKay76/the-trend-navigator/shared/config"
	"github.com/TKay76/the-trend-navigator/shared/scheduler"
)

func newScheduleCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on a cron schedule with a health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if schedule != "" {
				cfg.Schedule = schedule
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			agent := pipeline.NewAgent(cfg)
			return scheduler.New(cfg, agent).Start(ctx)
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule with seconds field (default from config)")

	return cmd
}
