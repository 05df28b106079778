package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/custodia-labs/sercha-basicauth/internal/adapters/driven/auth"
	"github.com/custodia-labs/sercha-basicauth/internal/adapters/driven/identity"
	"github.com/custodia-labs/sercha-basicauth/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/sercha-basicauth/internal/adapters/driven/redis"
	httpadapter "github.com/custodia-labs/sercha-basicauth/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-basicauth/internal/core/domain"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-basicauth/internal/core/services"
)

// deps holds the wired adapters shared by the subcommands
type deps struct {
	cfg      *appConfig
	logger   *slog.Logger
	tokens   *auth.Adapter
	backend  driven.IdentityBackend
	memory   *identity.MemoryBackend
	store    driven.SessionStore
	pinger   httpadapter.Pinger
	observer driven.FlowObserver // set by serve
	closers  []func() error
}

// buildDeps connects the token store and selects the identity backend
func buildDeps(ctx context.Context, cfg *appConfig) (*deps, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	d := &deps{
		cfg:    cfg,
		logger: cfg.newLogger(),
		tokens: auth.NewAdapter(cfg.jwtSecret),
	}

	if err := d.connectStore(ctx); err != nil {
		d.Close()
		return nil, err
	}
	if err := d.selectBackend(ctx); err != nil {
		d.Close()
		return nil, err
	}

	return d, nil
}

func (d *deps) connectStore(ctx context.Context) error {
	switch d.cfg.store {
	case storePostgres:
		db, err := postgres.Connect(ctx, postgres.DefaultConfig(d.cfg.databaseURL))
		if err != nil {
			return fmt.Errorf("connect token store: %w", err)
		}
		d.closers = append(d.closers, db.Close)

		var sealer *postgres.TokenSealer
		if d.cfg.encryptionKey != "" {
			sealer, err = postgres.NewTokenSealerFromHex(d.cfg.encryptionKey)
			if err != nil {
				return fmt.Errorf("token encryption key: %w", err)
			}
		} else {
			d.logger.Warn("TOKEN_ENCRYPTION_KEY not set, session tokens are stored unencrypted")
		}

		d.store = postgres.NewTokenStore(db, d.cfg.profile, sealer)
		d.pinger = db

	default:
		client, err := redisadapter.Connect(ctx, d.cfg.redisURL)
		if err != nil {
			return fmt.Errorf("connect token store: %w", err)
		}
		d.closers = append(d.closers, client.Close)

		store := redisadapter.NewTokenStore(client, d.cfg.profile)
		d.store = store
		d.pinger = store
	}

	d.logger.Debug("token store connected", "store", d.cfg.store, "profile", d.cfg.profile)
	return nil
}

func (d *deps) selectBackend(ctx context.Context) error {
	if d.cfg.backend != backendMemory {
		d.backend = identity.NewClient(identity.Config{
			BaseURL: d.cfg.identityURL,
			Timeout: d.cfg.identityTimeout,
		})
		return nil
	}

	seeds, err := d.cfg.seedAccounts()
	if err != nil {
		return err
	}

	d.memory = identity.NewMemoryBackend(identity.MemoryConfig{
		Tokens: d.tokens,
		Logger: d.logger,
	})
	for _, seed := range seeds {
		status, err := d.memory.Register(ctx, domain.RegistrationRequest{
			Email:    seed.Email,
			Password: seed.Password,
		})
		if err != nil {
			return fmt.Errorf("seed user %s: %w", seed.Email, err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("seed user %s: unexpected status %d", seed.Email, status)
		}
	}
	d.backend = d.memory
	return nil
}

// newFlows builds an auth flow controller over the given presentation sinks
func (d *deps) newFlows(notifier driven.NotificationSink, navigator driven.NavigationSink, loading driven.LoadingIndicator, callbacks services.LoginCallbacks) (driving.AuthFlowService, error) {
	return services.NewAuthFlowService(services.AuthFlowConfig{
		Backend:      d.backend,
		Sessions:     d.store,
		Notifier:     notifier,
		Navigator:    navigator,
		Loading:      loading,
		Callbacks:    callbacks,
		LogoutPolicy: d.cfg.logoutPolicy(),
		Observer:     d.observer,
		Logger:       d.logger,
	})
}

// sessions builds the session inspection service
func (d *deps) sessions() driving.SessionService {
	return services.NewSessionService(d.store, d.tokens)
}

// Close releases store connections
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Printf("Warning: close failed: %v", err)
		}
	}
	d.closers = nil
}
