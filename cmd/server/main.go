package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harrylevesque/schoolportal/internal/api"
	"github.com/harrylevesque/schoolportal/internal/auth"
	"github.com/harrylevesque/schoolportal/internal/certs"
	"github.com/harrylevesque/schoolportal/internal/config"
	"github.com/harrylevesque/schoolportal/internal/files"
	"github.com/harrylevesque/schoolportal/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closer, err := utils.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	store, err := files.NewJSONStore(utils.ResolvePath(cfg.DataDir))
	if err != nil {
		return err
	}
	if cfg.Seed {
		if err := files.SeedDefaults(store, auth.HashPassword, cfg.Env, logger); err != nil {
			return fmt.Errorf("seeding data: %w", err)
		}
	}

	tokens, err := tokenIssuer(cfg, store.Dir())
	if err != nil {
		return err
	}

	staticDir := cfg.StaticDir
	if staticDir != "" {
		staticDir = utils.ResolvePath(staticDir)
	}
	handler := api.NewRouter(api.Deps{
		Store:              store,
		Tokens:             tokens,
		AssetsDir:          utils.ResolvePath(cfg.AssetsDir),
		StaticDir:          staticDir,
		Env:                cfg.Env,
		Logger:             logger,
		EnforceAdminToken:  cfg.EnforceAdminToken,
		LoginRatePerSecond: cfg.LoginRatePerSecond,
		LoginBurst:         cfg.LoginBurst,
		TrustProxy:         cfg.TrustProxy,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Env, "data_dir", store.Dir(), "tls", cfg.TLSEnabled())
		if cfg.TLSEnabled() {
			if err := certs.NewCertManager(cfg.TLSCertFile, cfg.TLSKeyFile).CheckPair(logger); err != nil {
				errCh <- err
				return
			}
			errCh <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// tokenIssuer uses PORTAL_JWT_SECRET when set, otherwise a key derived from
// the generated signing.key in the data directory.
func tokenIssuer(cfg *config.Config, dataDir string) (*auth.TokenIssuer, error) {
	if cfg.JWTSecret != "" {
		return auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), nil
	}
	master, err := files.LoadOrCreateSigningKey(dataDir)
	if err != nil {
		return nil, err
	}
	key, err := auth.DeriveSigningKey(master, cfg.Env)
	if err != nil {
		return nil, err
	}
	return auth.NewTokenIssuerFromKey(key, cfg.TokenTTL), nil
}
