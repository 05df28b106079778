package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the sercha-basicauth CLI.
func NewRootCmd() *cobra.Command {
	cfg := loadConfig()

	cmd := &cobra.Command{
		Use:   "sercha-basicauth",
		Short: "Basic-auth sign-in, registration and password reset",
		Long: `sercha-basicauth drives the basic-auth flows of an identity backend:
sign-in, registration, password reset and sign-out. Session tokens are kept
in Redis or PostgreSQL under a profile key.`,
		SilenceUsage: true,
	}

	cfg.bindFlags(cmd)

	// Add subcommands
	cmd.AddCommand(newLoginCmd(cfg))
	cmd.AddCommand(newRegisterCmd(cfg))
	cmd.AddCommand(newForgotPasswordCmd(cfg))
	cmd.AddCommand(newResetPasswordCmd(cfg))
	cmd.AddCommand(newLogoutCmd(cfg))
	cmd.AddCommand(newStatusCmd(cfg))
	cmd.AddCommand(newServeCmd(cfg))

	return cmd
}
