package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/cache"
	"storefront/internal/cartapi"
	"storefront/internal/config"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/network"
	"storefront/internal/offlinecart"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/storage"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	db      *sql.DB
	redis   *redis.Client
	monitor *network.Monitor
	queue   *offlinecart.Queue

	stopBackground context.CancelFunc
	unwatch        func()
}

// NewQueueStore selects the offline queue backend named by cfg.Driver
func NewQueueStore(cfg config.OfflineQueueConfig, db *sql.DB, redisClient *redis.Client) (offlinecart.Store, error) {
	switch cfg.Driver {
	case "redis":
		return storage.NewRedisStore(redisClient, cfg.KeyPrefix), nil
	case "postgres":
		return storage.NewPostgresStore(db), nil
	case "memory":
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown offline queue driver %q", cfg.Driver)
	}
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client) (*Server, error) {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))
	router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "storefront:ratelimit",
	}, logger))

	// Upstream cart API and connectivity. The monitor starts offline so the
	// first successful probe is a transition and drains any stored queue.
	cartClient, err := cartapi.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, logger)
	if err != nil {
		return nil, err
	}
	monitor := network.NewMonitor(network.MonitorConfig{
		ProbeURL:      cfg.Upstream.BaseURL + cfg.Upstream.HealthPath,
		Interval:      cfg.Upstream.ProbeInterval,
		InitialOnline: false,
	}, logger)

	// Offline queue
	store, err := NewQueueStore(cfg.OfflineQueue, db, redisClient)
	if err != nil {
		return nil, err
	}
	queryCache := cache.NewQueryCache(redisClient, cfg.Cache.KeyPrefix, cfg.Cache.TTL)
	feed := offlinecart.NewFeed(cfg.Notification.FeedLimit, logger)
	queue := offlinecart.NewQueue(cfg.OfflineQueue.Key, store, cartClient, queryCache, feed, monitor, logger)

	// Initialize repositories and services
	productRepo := repository.NewProductRepository(db)
	storefront := service.NewStorefrontService(
		productRepo,
		offlinecart.NewCart(queue),
		cartClient,
		queryCache,
		queue,
		monitor,
		logger,
	)

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"status":          "ok",
			"upstream_online": monitor.IsOnline(),
		})
	})

	// Register routes
	transport.NewStorefrontHandler(storefront, feed, logger).RegisterRoutes(router)

	logger.Info("Offline cart queue configured",
		zap.String("driver", cfg.OfflineQueue.Driver),
		zap.String("key", queue.Key()),
	)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:  cfg,
		logger:  logger,
		db:      db,
		redis:   redisClient,
		monitor: monitor,
		queue:   queue,
	}

	return server, nil
}

// StartBackground starts the upstream probe and drains the offline queue on
// every reconnect
func (s *Server) StartBackground() {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopBackground = cancel
	s.unwatch = s.queue.Watch(ctx)

	go s.monitor.Run(ctx)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.unwatch != nil {
		s.unwatch()
	}
	if s.stopBackground != nil {
		s.stopBackground()
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
