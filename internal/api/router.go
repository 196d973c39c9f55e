package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"void-backend/internal/handlers"
)

const defaultRequestTimeout = 85 * time.Second

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and the session verifier.
type RouterDependencies struct {
	AuthHandler    *handlers.AuthHandler
	OAuthHandler   *handlers.OAuthHandler
	MessageHandler *handlers.MessageHandlers
	ChatHandler    *handlers.ChatHandlers // nil when no completion provider is configured

	Sessions       TokenVerifier
	AllowedOrigins []string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	if deps.AuthHandler == nil || deps.MessageHandler == nil || deps.Sessions == nil {
		panic("auth handler, message handler and session verifier are required in router setup")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger, "/health"))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	// --- CORS Configuration ---
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// --- Public Routes (No Session Required) ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if deps.OAuthHandler != nil {
		r.Get("/auth/callback", deps.OAuthHandler.HandleCallback)
	} else {
		logger.Warn("OAuthHandler dependency is nil, skipping federated login routes")
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", deps.AuthHandler.HandleSignup)
			r.Post("/login", deps.AuthHandler.HandleLogin)
			r.Post("/forgot-password", deps.AuthHandler.HandleForgotPassword)
			r.Post("/verify-answer", deps.AuthHandler.HandleVerifyAnswer)
			r.Post("/reset-password", deps.AuthHandler.HandleResetPassword)
			if deps.OAuthHandler != nil {
				r.Get("/google/url", deps.OAuthHandler.HandleAuthURL)
			}
		})

		// --- Authenticated Routes (Session Required) ---
		r.Group(func(r chi.Router) {
			r.Use(SessionAuthMiddleware(deps.Sessions))

			r.Get("/messages", deps.MessageHandler.HandleListMessages)
			r.Post("/messages", deps.MessageHandler.HandleAppendMessage)

			if deps.ChatHandler != nil {
				r.Post("/chat", deps.ChatHandler.HandleChat)
			} else {
				logger.Warn("ChatHandler dependency is nil, skipping /api/chat route")
			}
		})
	})

	return r
}
