package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-basicauth/internal/adapters/driven/console"
	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-basicauth/internal/core/services"
)

// flowFunc runs one flow against the controller
type flowFunc func(ctx context.Context, flows driving.AuthFlowService, d *deps) *domain.FlowResult

// runFlowCmd wires console sinks, runs fn and turns a failed flow into an error
func runFlowCmd(cmd *cobra.Command, cfg *appConfig, fn flowFunc) error {
	ctx := cmd.Context()

	d, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	out := cmd.OutOrStdout()
	callbacks := services.LoginCallbacks{
		OnSuccess: func(identity domain.Identity) {
			fmt.Fprintf(out, "signed in as %s\n", identity.Profile.Email)
		},
		OnFailure: func() {},
	}

	flows, err := d.newFlows(
		console.NewNotifier(out, cfg.verbose),
		console.NewNavigator(out),
		console.NewIndicator(cmd.ErrOrStderr()),
		callbacks,
	)
	if err != nil {
		return err
	}

	result := fn(ctx, flows, d)
	if result.Failed() {
		return fmt.Errorf("%s failed: %s", result.Flow, result.Reason())
	}
	return nil
}

// loginConfig holds configuration for the login command.
type loginConfig struct {
	email    string
	password string
}

func newLoginCmd(app *appConfig) *cobra.Command {
	cfg := &loginConfig{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Long: `Sign in with email and password. The email must already be registered.
On success the access and refresh tokens are written to the token store.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFlowCmd(cmd, app, func(ctx context.Context, flows driving.AuthFlowService, _ *deps) *domain.FlowResult {
				return flows.HandleLogin(ctx, cfg.email, passwordOrEnv(cfg.password))
			})
		},
	}

	cmd.Flags().StringVar(&cfg.email, "email", "", "account email")
	cmd.Flags().StringVar(&cfg.password, "password", "", "account password (default $SERCHA_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// registerConfig holds configuration for the register command.
type registerConfig struct {
	firstName string
	lastName  string
	email     string
	password  string
}

func newRegisterCmd(app *appConfig) *cobra.Command {
	cfg := &registerConfig{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a basic-auth account",
		Long: `Create a basic-auth account. Fails when the email is already registered.
The identity backend sends a confirmation email after the account is created.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFlowCmd(cmd, app, func(ctx context.Context, flows driving.AuthFlowService, _ *deps) *domain.FlowResult {
				return flows.HandleRegister(ctx, domain.RegistrationRequest{
					FirstName: cfg.firstName,
					LastName:  cfg.lastName,
					Email:     cfg.email,
					Password:  passwordOrEnv(cfg.password),
				})
			})
		},
	}

	cmd.Flags().StringVar(&cfg.firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&cfg.lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&cfg.email, "email", "", "account email")
	cmd.Flags().StringVar(&cfg.password, "password", "", "account password (default $SERCHA_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newForgotPasswordCmd(app *appConfig) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset link",
		Long: `Ask the identity backend to email a password reset link to the account.

With --backend memory the issued token is printed, but accounts and tokens
exist only for this invocation. Use "serve" to complete a reset against the
memory backend.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFlowCmd(cmd, app, func(ctx context.Context, flows driving.AuthFlowService, d *deps) *domain.FlowResult {
				result := flows.HandleForgotPassword(ctx, email)
				if d.memory != nil {
					if token, ok := d.memory.ResetToken(email); ok {
						fmt.Fprintf(cmd.OutOrStdout(), "reset token: %s\n", token)
					}
				}
				return result
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// resetPasswordConfig holds configuration for the reset-password command.
type resetPasswordConfig struct {
	email           string
	token           string
	password        string
	confirmPassword string
}

func newResetPasswordCmd(app *appConfig) *cobra.Command {
	cfg := &resetPasswordConfig{}

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password using a reset token",
		Long: `Set a new password using the token from a password reset link.

The memory backend does not keep tokens between CLI invocations, so there
this command only succeeds through "serve".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password := passwordOrEnv(cfg.password)
			confirm := cfg.confirmPassword
			if confirm == "" {
				confirm = password
			}
			return runFlowCmd(cmd, app, func(ctx context.Context, flows driving.AuthFlowService, _ *deps) *domain.FlowResult {
				return flows.HandleResetPassword(ctx, domain.PasswordResetRequest{
					Username:        cfg.email,
					Token:           cfg.token,
					Password:        password,
					ConfirmPassword: confirm,
				})
			})
		},
	}

	cmd.Flags().StringVar(&cfg.email, "email", "", "account email")
	cmd.Flags().StringVar(&cfg.token, "token", "", "token from the reset link")
	cmd.Flags().StringVar(&cfg.password, "password", "", "new password (default $SERCHA_PASSWORD)")
	cmd.Flags().StringVar(&cfg.confirmPassword, "confirm-password", "", "new password again (defaults to --password)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newLogoutCmd(app *appConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored access token",
		Long: `Sign out and clear the stored access token. The refresh token is kept
unless --clear-refresh is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFlowCmd(cmd, app, func(ctx context.Context, flows driving.AuthFlowService, _ *deps) *domain.FlowResult {
				return flows.HandleLogout(ctx)
			})
		},
	}
}

// passwordOrEnv falls back to $SERCHA_PASSWORD when the flag is empty
func passwordOrEnv(flag string) string {
	if flag != "" {
		return flag
	}
	return getEnv("SERCHA_PASSWORD", "")
}
