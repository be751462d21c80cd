package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vehicle-auctions/internal/api/handlers"
	"vehicle-auctions/internal/config"
	"vehicle-auctions/internal/infrastructure/leader"
	"vehicle-auctions/internal/infrastructure/mysql"
	"vehicle-auctions/internal/infrastructure/redis"
	"vehicle-auctions/internal/infrastructure/websocket"
	"vehicle-auctions/internal/services"
	"vehicle-auctions/pkg/logger"
	"vehicle-auctions/pkg/utils"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	log := logger.New()
	log.Info("Starting Vehicle Auction Service")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	// Initialize MySQL
	db, err := utils.InitializeMySQL(ctx, cfg)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close MySQL connection", "error", err)
		}
	}()
	log.Info("Connected to MySQL")

	// Initialize repositories
	auctionRepo := mysql.NewMySQLAuctionRepository(db)
	lotRepo := mysql.NewMySQLLotRepository(db)
	bidRepo := mysql.NewMySQLBidRepository(db)
	notificationRepo := mysql.NewMySQLNotificationRepository(db)
	favouriteRepo := mysql.NewMySQLFavouriteRepository(db)

	// Initialize Redis based components
	highBidCache := redis.NewRedisHighBidCache(rdb)
	windowCache := redis.NewRedisWindowCache(rdb)
	eventPublisher := redis.NewRedisEventPublisher(rdb)
	eventSubscriber := redis.NewRedisEventSubscriber(rdb, log)

	// Initialize leader election
	leaderElection := leader.NewRedisLeaderElection(rdb, cfg.Leader.TTL)

	// Initialize connection manager
	connManager := websocket.NewConnectionManager(log)

	// Initialize core services
	notificationService := services.NewNotificationService(notificationRepo, eventPublisher, log)
	bidService := services.NewBidService(bidRepo, lotRepo, notificationService, highBidCache, log)
	favouriteService := services.NewFavouriteService(favouriteRepo, lotRepo, notificationService, eventPublisher, log)

	scheduler := services.NewLifecycleScheduler(
		auctionRepo,
		lotRepo,
		favouriteRepo,
		notificationService,
		windowCache,
		leaderElection,
		cfg.Instance.ID,
		cfg.Scheduler,
		log,
	)

	eventListener := services.NewEventListener(connManager, log)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","remote_ip":"${remote_ip}","host":"${host}","method":"${method}","uri":"${uri}","user_agent":"${user_agent}","status":${status},"error":"${error}","latency":${latency},"latency_human":"${latency_human}","bytes_in":${bytes_in},"bytes_out":${bytes_out}}` + "\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			echo.GET, echo.HEAD, echo.PUT, echo.PATCH,
			echo.POST, echo.DELETE, echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			echo.HeaderXRequestedWith,
		},
		MaxAge: 86400,
	}))

	// Initialize handlers
	bidHandler := handlers.NewBidHandler(bidService, log)
	favouriteHandler := handlers.NewFavouriteHandler(favouriteService, log)
	notificationHandler := handlers.NewNotificationHandler(notificationService, log)
	wsHandlers := handlers.NewWebSocketHandlers(connManager, log)

	// API routes
	api := e.Group("/api/v1")
	api.POST("/lots/:id/bids", bidHandler.PlaceBid)
	api.GET("/lots/:id/high-bid", bidHandler.GetHighBid)
	api.POST("/favourites/:id/toggle", favouriteHandler.Toggle)
	api.GET("/notifications", notificationHandler.List)
	api.POST("/notifications/:id/read", notificationHandler.MarkRead)
	api.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	api.DELETE("/notifications", notificationHandler.Clear)

	e.GET("/ws", echo.WrapHandler(http.HandlerFunc(wsHandlers.HandleConnection)))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "auction-service",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Ops server on its own port
	opsHandler := handlers.NewOpsHandler(auctionRepo, leaderElection, cfg.Instance.ID, log)
	opsServer := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.Ops.Port),
		Handler: opsHandler.Router(),
	}

	go func() {
		log.Info("Starting ops server", "port", cfg.Ops.Port)
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Ops server failed", "error", err)
		}
	}()

	// Start background services
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	if err := scheduler.Start(rootCtx); err != nil {
		log.Error("Failed to start lifecycle scheduler", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := eventListener.Start(rootCtx, eventSubscriber); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Event listener stopped", "error", err)
		}
	}()

	// Try to become leader
	go func() {
		for {
			became, err := leaderElection.BecomeLeader(rootCtx, cfg.Instance.ID)
			if err != nil {
				log.Error("Failed to attempt leadership", "error", err)
				time.Sleep(5 * time.Second)
				continue
			}
			if became {
				log.Info("Became lifecycle leader", "instance_id", cfg.Instance.ID)
			}
			select {
			case <-rootCtx.Done():
				return
			case <-time.After(10 * time.Second):
			}
		}
	}()

	// Start server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("Starting auction service", "address", serverAddr)

	go func() {
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down auction service...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := scheduler.Stop(); err != nil {
		log.Error("Failed to stop scheduler", "error", err)
	}
	rootCancel()

	if err := leaderElection.ReleaseLeadership(shutdownCtx, cfg.Instance.ID); err != nil {
		log.Error("Failed to release leadership", "error", err)
	}

	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Ops server forced to shutdown", "error", err)
	}

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Auction service stopped")
}
