package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))

	// Wire repositories and services. The factory hands transaction-scoped
	// bundles to the order engine; the base bundle serves read paths.
	factory := service.NewStoreFactory()
	stores := factory(db)
	txm := database.NewTxManager(db)
	fanout := service.NewFanout(logger)

	userService := service.NewUserService(stores.Users)
	catalogService := service.NewCatalogService(stores.Products)
	cartService := service.NewCartService(stores.Carts, stores.Products)
	orderService := service.NewOrderService(txm, stores, factory, fanout, logger)
	notificationService := service.NewNotificationService(stores.Notifications)
	commentService := service.NewCommentService(txm, stores, factory, fanout)

	// Identity gate runs on every request; anonymous requests proceed and
	// are rejected only at capability-protected routes.
	router.Use(custommiddleware.AuthMiddleware(stores.Users, logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: 300,
			Window:            time.Minute,
			KeyPrefix:         "storefront:ratelimit",
		}, logger))
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":   "ok",
			"database": database.Health(db),
		})
	})

	requireAuth := custommiddleware.RequireAuth(logger)

	transport.NewUserHandler(userService, logger).RegisterRoutes(router, requireAuth)
	transport.NewProductHandler(catalogService, logger).RegisterRoutes(router, requireAuth)
	transport.NewCartHandler(cartService, logger).RegisterRoutes(router, requireAuth)
	transport.NewOrderHandler(orderService, logger).RegisterRoutes(router, requireAuth)
	transport.NewNotificationHandler(notificationService, logger).RegisterRoutes(router, requireAuth)
	transport.NewCommentHandler(commentService, logger).RegisterRoutes(router, requireAuth)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
