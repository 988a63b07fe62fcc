package main

import (
	"fmt"

	"pqrssi-portal/config"

	"github.com/spf13/cobra"
)

// newRootCommand builds the operator CLI.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pqrssictl",
		Short:         "Operator tasks for the PQRSSI portal",
		SilenceUsage: true,
	}

	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newCreateAdminCommand())
	cmd.AddCommand(newPromoteCommand())
	cmd.AddCommand(newMigratePasswordsCommand())
	return cmd
}

// connect loads the configuration and opens config.DB.
func connect() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.InitDB(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
