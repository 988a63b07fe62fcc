package main

import (
	"errors"
	"fmt"

	"pqrssi-portal/config"
	"pqrssi-portal/services"
	"pqrssi-portal/utils"

	"github.com/spf13/cobra"
)

type adminOptions struct {
	name     string
	email    string
	password string
}

func newCreateAdminCommand() *cobra.Command {
	opts := &adminOptions{}

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := connect(); err != nil {
				return err
			}
			defer config.CloseDB()

			user, err := services.NewAuthService(config.DB).CreateAdmin(cmd.Context(), opts.name, opts.email, opts.password)
			if errors.Is(err, services.ErrPasswordPolicy) {
				return errors.New(utils.PasswordPolicyMessage)
			}
			if err != nil {
				return err
			}
			cmd.Printf("Administrator %s created with id %d\n", user.Email, user.UserID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.email, "email", "", "login email")
	cmd.Flags().StringVar(&opts.password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newPromoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <email>",
		Short: "Grant administrator rights to an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := connect(); err != nil {
				return err
			}
			defer config.CloseDB()

			if err := services.NewAuthService(config.DB).Promote(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, services.ErrUserNotFound) {
					return fmt.Errorf("no user with email %s", args[0])
				}
				return err
			}
			cmd.Printf("%s is now an administrator\n", args[0])
			return nil
		},
	}
}

func newMigratePasswordsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-passwords",
		Short: "Hash any plaintext passwords left in the user table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := connect(); err != nil {
				return err
			}
			defer config.CloseDB()

			result, err := services.NewAuthService(config.DB).MigratePlaintextPasswords(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("Password migration completed: %d hashed, %d already hashed, %d failed\n",
				result.Hashed, result.Skipped, result.Failed)
			if result.Failed > 0 {
				return fmt.Errorf("%d passwords could not be migrated", result.Failed)
			}
			return nil
		},
	}
}
