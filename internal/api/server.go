// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wallet-pulse/internal/logging"
	"github.com/wallet-pulse/internal/marketdata"
	"github.com/wallet-pulse/internal/service"
	"github.com/wallet-pulse/internal/types"
)

// Service interfaces for dependency injection and testing

// WalletServiceInterface defines wallet data operations
type WalletServiceInterface interface {
	GetPortfolio(ctx context.Context, address string, period types.ChartPeriod) (*types.Portfolio, error)
	GetTransactions(ctx context.Context, address string, pageSize int, cursor string) (*marketdata.TransactionPage, error)
	GetChart(ctx context.Context, address string, period types.ChartPeriod) (*marketdata.ChartResult, error)
}

// StatsServiceInterface defines stats aggregation operations
type StatsServiceInterface interface {
	GetWalletStats(ctx context.Context, address string) (*types.WalletStats, error)
}

// SocialServiceInterface defines follow graph operations
type SocialServiceInterface interface {
	Follow(ctx context.Context, followerAddress, followingAddress string) error
	Unfollow(ctx context.Context, followerAddress, followingAddress string) error
	GetFollowStatus(ctx context.Context, followerAddress, followingAddress string) (*service.FollowStatus, error)
	ListFollowing(ctx context.Context, walletAddress string) ([]string, error)
}

// ActivityServiceInterface defines activity feed operations
type ActivityServiceInterface interface {
	GetFeed(ctx context.Context, walletAddress string, limit int) ([]*types.Activity, error)
	RecordDetected(ctx context.Context, walletAddress string, payload json.RawMessage) error
}

// SignalServiceInterface defines trading signal operations
type SignalServiceInterface interface {
	GetSignals(ctx context.Context, walletAddresses []string) ([]*types.TradingSignal, error)
}

// TrendingServiceInterface defines trending list operations
type TrendingServiceInterface interface {
	GetTrending(ctx context.Context, period types.ChartPeriod, limit int) ([]*service.TrendingEntry, error)
}

// Server represents the HTTP API server.
type Server struct {
	router          *mux.Router
	httpServer      *http.Server
	walletService   WalletServiceInterface
	statsService    StatsServiceInterface
	socialService   SocialServiceInterface
	activityService ActivityServiceInterface
	signalService   SignalServiceInterface
	trendingService TrendingServiceInterface
	config          *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	RequestsPerSecond int
	Burst             int
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	walletService WalletServiceInterface,
	statsService StatsServiceInterface,
	socialService SocialServiceInterface,
	activityService ActivityServiceInterface,
	signalService SignalServiceInterface,
	trendingService TrendingServiceInterface,
) *Server {
	s := &Server{
		router:          mux.NewRouter(),
		walletService:   walletService,
		statsService:    statsService,
		socialService:   socialService,
		activityService: activityService,
		signalService:   signalService,
		trendingService: trendingService,
		config:          config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RequestsPerSecond, s.config.Burst)

	// Middleware order matters: logging first, rate limiting after CORS
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))
	s.router.Use(CompressionMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Wallet data endpoints
	api.HandleFunc("/portfolio/{address}", s.handleGetPortfolio).Methods("GET")
	api.HandleFunc("/transactions/{address}", s.handleGetTransactions).Methods("GET")
	api.HandleFunc("/chart/{address}", s.handleGetChart).Methods("GET")
	api.HandleFunc("/stats/{address}", s.handleGetStats).Methods("GET")

	// Social endpoints
	api.HandleFunc("/follow", s.handleFollow).Methods("POST")
	api.HandleFunc("/follow", s.handleUnfollow).Methods("DELETE")
	api.HandleFunc("/follow", s.handleFollowStatus).Methods("GET")
	api.HandleFunc("/activity", s.handleActivity).Methods("GET")
	api.HandleFunc("/trending", s.handleTrending).Methods("GET")
	api.HandleFunc("/trading-signals", s.handleTradingSignals).Methods("POST")

	// Provider webhook endpoint
	s.router.HandleFunc("/webhooks/provider", s.handleProviderWebhook).Methods("POST")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "wallet-pulse",
	})
}

// Handler returns the root handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.GetGlobalLogger().WithField("addr", s.httpServer.Addr).Info("Starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.GetGlobalLogger().Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
