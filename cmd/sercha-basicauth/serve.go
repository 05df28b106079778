package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-basicauth/internal/adapters/driven/metrics"
	httpadapter "github.com/custodia-labs/sercha-basicauth/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-basicauth/internal/core/services"
)

// serveConfig holds configuration for the serve command.
type serveConfig struct {
	host    string
	port    int
	origins []string
}

func newServeCmd(app *appConfig) *cobra.Command {
	defaults := httpadapter.DefaultConfig()
	cfg := &serveConfig{
		host:    getEnv("HOST", defaults.Host),
		port:    getEnvInt("PORT", defaults.Port),
		origins: defaults.AllowedOrigins,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the auth flows over HTTP",
		Long: `Serve the auth flows as a local JSON API for a browser front end.
Each request runs one flow and returns its outcomes and notifications.
With --backend memory the accounts and reset tokens live for the life of
the server, so a forgot-password / reset-password round trip works here.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, app, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.host, "host", cfg.host, "listen address")
	cmd.Flags().IntVar(&cfg.port, "port", cfg.port, "listen port")
	cmd.Flags().StringSliceVar(&cfg.origins, "allowed-origin", cfg.origins, "CORS allowed origins")

	return cmd
}

// runServe executes the serve command.
func runServe(cmd *cobra.Command, app *appConfig, cfg *serveConfig) error {
	server, d, err := newServeServer(cmd.Context(), app, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	log.Printf("sercha-basicauth %s serving (backend=%s, store=%s, profile=%s)", version, app.backend, app.store, app.profile)
	return server.Start()
}

// newServeServer wires the dependencies and the HTTP server without listening.
// The caller closes the returned deps.
func newServeServer(ctx context.Context, app *appConfig, cfg *serveConfig) (*httpadapter.Server, *deps, error) {
	d, err := buildDeps(ctx, app)
	if err != nil {
		return nil, nil, err
	}

	registry := metrics.NewRegistry()
	d.observer = metrics.NewObserver(registry)

	build := func(c *httpadapter.Collector) (driving.AuthFlowService, error) {
		return d.newFlows(c, c, c, services.LoginCallbacks{
			OnSuccess: c.OnLoginSuccess,
			OnFailure: c.OnLoginFailure,
		})
	}

	server, err := httpadapter.NewServer(httpadapter.Config{
		Host:           cfg.host,
		Port:           cfg.port,
		Version:        version,
		AllowedOrigins: cfg.origins,
		Metrics:        metrics.Handler(registry),
		Logger:         d.logger,
	}, build, d.sessions(), d.pinger)
	if err != nil {
		d.Close()
		return nil, nil, err
	}
	return server, d, nil
}
