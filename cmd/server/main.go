package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HammerMeetNail/talksy/internal/config"
	"github.com/HammerMeetNail/talksy/internal/database"
	"github.com/HammerMeetNail/talksy/internal/events"
	"github.com/HammerMeetNail/talksy/internal/handlers"
	"github.com/HammerMeetNail/talksy/internal/logging"
	"github.com/HammerMeetNail/talksy/internal/middleware"
	"github.com/HammerMeetNail/talksy/internal/services"
	"github.com/HammerMeetNail/talksy/internal/streamchat"
	"github.com/HammerMeetNail/talksy/migrations"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := logging.ParseLevel(cfg.Server.LogLevel)
	logger.SetLevel(level)
	logging.SetDefaultLevel(level)

	logger.Info("Starting Talksy server...", map[string]interface{}{"env": cfg.Server.Environment})

	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	logger.Info("Running database migrations...")
	migrator, err := database.NewMigrator(cfg.Database.DSN(), migrations.FS)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()
	logger.Info("Migrations completed")

	logger.Info("Connecting to Redis", map[string]interface{}{
		"addr": cfg.Redis.Addr(),
	})
	redisDB, err := database.NewRedisDB(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()
	logger.Info("Connected to Redis")

	healthChecks := []handlers.HealthCheck{
		{Name: "database", Checker: db},
		{Name: "redis", Checker: redisDB},
	}

	// Events are optional; the graph works without a broker.
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			logger.Warn("NATS unavailable, friend request events disabled", map[string]interface{}{
				"url":   cfg.NATS.URL,
				"error": err.Error(),
			})
		} else {
			defer func() { _ = natsPublisher.Close() }()
			publisher = natsPublisher
			healthChecks = append(healthChecks, handlers.HealthCheck{Name: "nats", Checker: natsPublisher, Optional: true})
			logger.Info("Connected to NATS", map[string]interface{}{"prefix": cfg.NATS.SubjectPrefix})
		}
	}

	chat := streamchat.NewClient(cfg.Stream.APIKey, cfg.Stream.APISecret, cfg.Stream.BaseURL)
	if !chat.Enabled() {
		logger.Warn("Stream credentials not set, chat tokens disabled")
	}

	dbAdapter := services.NewPoolAdapter(db.Pool)
	redisAdapter := services.NewRedisAdapter(redisDB.Client)

	userService := services.NewUserService(dbAdapter)
	authService := services.NewAuthService(dbAdapter, redisAdapter)
	recommendationService := services.NewRecommendationService(dbAdapter)
	requestService := services.NewFriendRequestService(dbAdapter)
	graphService := services.NewSocialGraphService(dbAdapter, userService, requestService, publisher, logger)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	clientIP, err := middleware.NewClientIP(cfg.Server.TrustedProxies)
	if err != nil {
		return fmt.Errorf("parsing trusted proxies: %w", err)
	}

	mux := http.NewServeMux()
	registerRoutes(mux, routes{
		health:        handlers.NewHealthHandler(healthChecks...),
		auth:          handlers.NewAuthHandler(userService, authService, chat, cfg.Server.Secure),
		users:         handlers.NewUserHandler(recommendationService, graphService),
		chat:          handlers.NewChatHandler(chat),
		authMW:        authMiddleware,
		authLimiter:   middleware.NewAuthRateLimiter(redisDB.Client, clientIP),
		friendLimiter: middleware.NewFriendRequestRateLimiter(redisDB.Client, clientIP),
	})

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = mux
	handler = authMiddleware.Authenticate(handler)
	handler = middleware.NewSecurityHeaders(cfg.Server.Secure).Apply(handler)
	handler = middleware.NewCORS(cfg.Server.AllowedOrigins)(handler)
	handler = middleware.NewRequestLogger(logger, clientIP).Apply(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{
		"addr": addr,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}

type routes struct {
	health        *handlers.HealthHandler
	auth          *handlers.AuthHandler
	users         *handlers.UserHandler
	chat          *handlers.ChatHandler
	authMW        *middleware.AuthMiddleware
	authLimiter   *middleware.RateLimiter
	friendLimiter *middleware.RateLimiter
}

func registerRoutes(mux *http.ServeMux, r routes) {
	requireAuth := r.authMW.RequireAuth

	// Health endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", r.health.Health)
	mux.HandleFunc("GET /ready", r.health.Ready)
	mux.HandleFunc("GET /live", r.health.Live)

	// Auth endpoints
	mux.Handle("POST /api/auth/signup", r.authLimiter.Middleware(http.HandlerFunc(r.auth.Signup)))
	mux.Handle("POST /api/auth/login", r.authLimiter.Middleware(http.HandlerFunc(r.auth.Login)))
	mux.HandleFunc("POST /api/auth/logout", r.auth.Logout)
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(r.auth.Me)))
	mux.Handle("POST /api/auth/onboarding", requireAuth(http.HandlerFunc(r.auth.Onboard)))

	// User and friend endpoints
	mux.Handle("GET /api/users", requireAuth(http.HandlerFunc(r.users.Recommended)))
	mux.Handle("GET /api/users/friends", requireAuth(http.HandlerFunc(r.users.Friends)))
	mux.Handle("POST /api/users/friend-requests", requireAuth(r.friendLimiter.Middleware(http.HandlerFunc(r.users.SendFriendRequest))))
	mux.Handle("GET /api/users/friend-requests", requireAuth(http.HandlerFunc(r.users.IncomingFriendRequests)))
	mux.Handle("GET /api/users/outgoing-friend-requests", requireAuth(http.HandlerFunc(r.users.OutgoingFriendRequests)))
	mux.Handle("PUT /api/users/friend-requests/{id}/accept", requireAuth(r.friendLimiter.Middleware(http.HandlerFunc(r.users.AcceptFriendRequest))))

	// Chat provider token
	mux.Handle("GET /api/chat/token", requireAuth(http.HandlerFunc(r.chat.Token)))
}
