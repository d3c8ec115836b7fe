package main

import (
	"github.com/spf13/cobra"

	"github.com/TKay76/the-trend-navigator/shared/config"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "trend-navigator",
		Short:         "Collect and classify trending YouTube Shorts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	loadConfig := func() (*config.Config, error) {
		return config.LoadFrom(configFlag)
	}

	rootCmd.AddCommand(newCollectCommand(loadConfig))
	rootCmd.AddCommand(newAnalyzeCommand(loadConfig))
	rootCmd.AddCommand(newRunCommand(loadConfig))
	rootCmd.AddCommand(newScheduleCommand(loadConfig))
	rootCmd.AddCommand(newReportCommand(loadConfig))

	return rootCmd
}
