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

	"void-backend/internal/api"
	"void-backend/internal/auth"
	"void-backend/internal/completion"
	"void-backend/internal/config"
	"void-backend/internal/handlers"
	"void-backend/internal/oauth"
	"void-backend/internal/services"
	"void-backend/internal/store"
	"void-backend/internal/store/postgres"
	"void-backend/internal/store/sqlite"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("starting VOID backend")

	// 2. Open the store (runs migrations)
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := openStore(dbCtx, cfg)
	dbCancel()
	if err != nil {
		logger.Error("unable to open store", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	defer st.Close()
	logger.Info("store ready", "driver", cfg.DatabaseDriver)

	// 3. Initialize Dependencies (Services, Handlers)
	sessions, err := auth.NewSessionIssuer(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		logger.Error("failed to create session issuer", "error", err)
		os.Exit(1)
	}
	hasher := auth.NewHasher(cfg.BcryptCost)

	provider := oauth.NewGoogleProvider(oauth.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL(),
		AuthURL:      cfg.OAuthAuthURL,
		TokenURL:     cfg.OAuthTokenURL,
		UserInfoURL:  cfg.OAuthUserInfoURL,
	}, &http.Client{Timeout: cfg.OAuthTimeout})

	authService := services.NewAuthService(st, hasher, sessions)
	oauthService := services.NewOAuthService(st, sessions, provider, cfg.OAuthTimeout)
	ledgerService := services.NewLedgerService(st)

	routerDeps := api.RouterDependencies{
		AuthHandler:    handlers.NewAuthHandler(authService),
		OAuthHandler:   handlers.NewOAuthHandler(oauthService, cfg.AppURL),
		MessageHandler: handlers.NewMessageHandlers(ledgerService),
		Sessions:       sessions,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout: cfg.CompletionTimeout + 25*time.Second,
		Logger:         logger,
	}

	if cfg.CompletionAPIKey != "" {
		completer, err := completion.NewClient(completion.Config{
			APIKey:     cfg.CompletionAPIKey,
			BaseURL:    cfg.CompletionBaseURL,
			Model:      cfg.CompletionModel,
			HTTPClient: &http.Client{Timeout: cfg.CompletionTimeout},
			MaxRetries: 2,
		})
		if err != nil {
			logger.Error("failed to create completion client", "error", err)
			os.Exit(1)
		}
		routerDeps.ChatHandler = handlers.NewChatHandlers(services.NewChatService(st, completer))
	} else {
		logger.Warn("COMPLETION_API_KEY is not set, /api/chat is disabled")
	}

	// 4. Setup Router
	router := api.NewRouter(routerDeps)

	// 5. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// Write timeout covers a full completion round-trip.
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("could not listen", "port", cfg.HTTPPort, "error", err)
			os.Exit(1)
		}
	}()

	<-stopChan
	logger.Info("shutdown signal received, initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server graceful shutdown failed", "error", err)
	}
	logger.Info("server shutdown complete")
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevelValue()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.DatabaseURL)
	case config.DriverSQLite:
		return sqlite.New(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}
