package main

import (
	"github.com/spf13/cobra"

	"github.com/hwetherall/innovera-ama/internal/config"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "ama",
		Short:         "All-hands Q&A and customer knowledge service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newServeCommand(&configFlag))
	rootCmd.AddCommand(newConfigCommand(&configFlag))
	rootCmd.AddCommand(newSessionsCommand(&configFlag))

	return rootCmd
}

func loadConfig(configFlag *string) (*config.Config, string, error) {
	path := ""
	if configFlag != nil {
		path = *configFlag
	}
	cfg, resolved, _, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, resolved, nil
}
