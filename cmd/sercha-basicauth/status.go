package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
)

// SessionStatus is the printable view of the stored session
type SessionStatus struct {
	Profile         string `json:"profile"`
	SignedIn        bool   `json:"signed_in"`
	Email           string `json:"email,omitempty"`
	Subject         string `json:"subject,omitempty"`
	IsBot           bool   `json:"is_bot,omitempty"`
	ExpiresAt       string `json:"expires_at,omitempty"`
	Expired         bool   `json:"expired,omitempty"`
	HasRefreshToken bool   `json:"has_refresh_token"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
}

func newStatusCmd(app *appConfig) *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		Long: `Show the session held by the token store for the current profile,
including the unverified claims of the access token and whether it has expired.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, app, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

// runStatus executes the status command.
func runStatus(cmd *cobra.Command, app *appConfig, cfg *statusConfig) error {
	d, err := buildDeps(cmd.Context(), app)
	if err != nil {
		return err
	}
	defer d.Close()

	status := SessionStatus{Profile: app.profile}
	info, err := d.sessions().Current(cmd.Context())
	switch {
	case errors.Is(err, domain.ErrNoSession):
	case err != nil:
		return fmt.Errorf("failed to read session: %w", err)
	default:
		status.SignedIn = true
		status.Email = info.Claims.Email
		status.Subject = info.Claims.Subject
		status.IsBot = info.Claims.IsBot
		status.Expired = info.Expired()
		status.HasRefreshToken = info.HasRefreshToken
		if info.Claims.ExpiresAt > 0 {
			status.ExpiresAt = time.Unix(info.Claims.ExpiresAt, 0).UTC().Format(time.RFC3339)
		}
	}

	if cfg.jsonOutput {
		output, err := formatStatusJSON(status)
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), formatStatusTable(status))
	return nil
}

// formatStatusJSON formats the status as indented JSON.
func formatStatusJSON(status SessionStatus) (string, error) {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatStatusTable formats the status as a two-column table.
func formatStatusTable(status SessionStatus) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "PROFILE\t%s\n", status.Profile)
	if !status.SignedIn {
		fmt.Fprintf(w, "SESSION\tnot signed in\n")
		_ = w.Flush()
		return sb.String()
	}

	state := "active"
	if status.Expired {
		state = "expired"
	}
	fmt.Fprintf(w, "SESSION\t%s\n", state)
	fmt.Fprintf(w, "EMAIL\t%s\n", status.Email)
	fmt.Fprintf(w, "SUBJECT\t%s\n", status.Subject)
	if status.ExpiresAt != "" {
		fmt.Fprintf(w, "EXPIRES\t%s\n", status.ExpiresAt)
	}
	fmt.Fprintf(w, "REFRESH TOKEN\t%t\n", status.HasRefreshToken)
	if status.IsBot {
		fmt.Fprintf(w, "BOT\ttrue\n")
	}

	_ = w.Flush()
	return sb.String()
}
