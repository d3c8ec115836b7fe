package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TKay76/the-trend-navigator/agents/pipeline"
	"github.com/TKay76/the-trend-navigator/shared/config"
	"github.com/TKay76/the-trend-navigator/shared/scheduler"
)

func newRunCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline once: collect, classify, report, deliver",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			agent := pipeline.NewAgent(cfg)
			if err := agent.Initialize(); err != nil {
				return err
			}
			defer agent.Close()

			return scheduler.New(cfg, agent).RunOnce(ctx)
		},
	}
}
