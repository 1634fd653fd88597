package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BetterNetworks-web/interview-preview/repository"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"gorm.io/gorm"
)

// interviewRateLimit bounds model-backed requests per client IP; the
// Gemini calls are the expensive path.
const (
	interviewRateLimit  = 20
	interviewRateWindow = time.Minute
)

// Server holds all server dependencies
type Server struct {
	config             *Config
	gormDB             *repository.GORMRepository
	rawDB              *gorm.DB
	geminiService      *GeminiService
	stripeService      *StripeService
	resendService      *ResendService
	authService        *AuthService
	authEndpoints      *AuthEndpoints
	interviewEndpoints *InterviewEndpoints
	scorecardEndpoints *ScorecardEndpoints
	billingEndpoints   *BillingEndpoints
	contactEndpoints   *ContactEndpoints
}

// NewServer creates a new server instance
func NewServer(config *Config) *Server {
	return &Server{config: config}
}

// SetDatabase sets the database connection
func (s *Server) SetDatabase(db *repository.GORMRepository, rawDB *gorm.DB) {
	s.gormDB = db
	s.rawDB = rawDB
}

// InitializeServices initializes all server services
func (s *Server) InitializeServices() error {
	if s.config.AI.GeminiAPIKey != "" {
		s.geminiService = NewGeminiService(s.config.AI.GeminiAPIKey)
		s.interviewEndpoints = NewInterviewEndpoints(s.geminiService)
		slog.Info("Gemini service initialized")
	} else {
		slog.Warn("Gemini API key not configured, interview routes disabled")
	}

	if s.config.JWT.Secret != "" && s.gormDB != nil {
		s.authService = NewAuthService(s.gormDB, s.config.JWT.Secret)
		s.authEndpoints = NewAuthEndpoints(s.authService)
		s.scorecardEndpoints = NewScorecardEndpoints(s.gormDB)
		slog.Info("Authentication service initialized")
	}

	if s.config.Stripe.SecretKey != "" && s.gormDB != nil {
		s.stripeService = NewStripeService(
			s.config.Stripe.SecretKey,
			s.config.Stripe.WebhookSecret,
			s.config.Server.AppBaseURL,
		)
		s.billingEndpoints = NewBillingEndpoints(s.stripeService, s.gormDB)
		slog.Info("Stripe service initialized")
	} else {
		slog.Warn("Stripe not configured, billing routes disabled")
	}

	if s.config.Email.ResendAPIKey != "" {
		s.resendService = NewResendService(s.config.Email.ResendAPIKey)
		s.contactEndpoints = NewContactEndpoints(
			s.resendService,
			s.config.Email.ContactFrom,
			s.config.Email.ContactTo,
		)
		slog.Info("Resend service initialized")
	} else {
		slog.Warn("Resend not configured, contact route disabled")
	}

	return nil
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   SplitOrigins(s.config.CORS.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoint
	r.Get("/health", s.healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		if s.authEndpoints != nil {
			s.authEndpoints.RegisterRoutes(r)
		}
		if s.contactEndpoints != nil {
			s.contactEndpoints.RegisterRoutes(r)
		}
		if s.billingEndpoints != nil {
			// Stripe authenticates the webhook with a signature header
			s.billingEndpoints.RegisterWebhookRoutes(r)
		}

		// The interview wizard runs before signup; only saving requires
		// a session. Rate-limited instead of auth-gated.
		if s.interviewEndpoints != nil {
			r.Group(func(r chi.Router) {
				r.Use(httprate.LimitByIP(interviewRateLimit, interviewRateWindow))
				s.interviewEndpoints.RegisterRoutes(r)
			})
		}

		// Session-protected routes
		if s.authService != nil {
			r.Group(func(r chi.Router) {
				r.Use(s.authService.Middleware)

				if s.scorecardEndpoints != nil {
					s.scorecardEndpoints.RegisterRoutes(r)
				}
				if s.billingEndpoints != nil {
					s.billingEndpoints.RegisterRoutes(r)
				}
			})
		}
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRoutes(),
	}

	// Graceful shutdown
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// SplitOrigins parses the comma-separated allowed-origins setting.
func SplitOrigins(originsStr string) []string {
	if originsStr == "" {
		return nil
	}

	parts := strings.Split(originsStr, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "not configured"

	if s.rawDB != nil {
		dbStatus = "up"
		if sqlDB, err := s.rawDB.DB(); err != nil || sqlDB.Ping() != nil {
			dbStatus = "down"
			status = "degraded"
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":   status,
		"database": dbStatus,
	})
}

// respondJSON writes v as the JSON response body.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// respondError writes a JSON error body of the form {"error": message}.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
