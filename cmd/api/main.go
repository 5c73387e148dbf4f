package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/velora/beauty-orders-api/internal/config"
	"github.com/velora/beauty-orders-api/internal/events"
	"github.com/velora/beauty-orders-api/internal/handler"
	"github.com/velora/beauty-orders-api/internal/middleware"
	"github.com/velora/beauty-orders-api/internal/repository"
	"github.com/velora/beauty-orders-api/internal/service"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	if err := repository.Migrate(ctx, dbPool); err != nil {
		log.Error("migrate database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	amqpCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer amqpCh.Close()

	if err := events.Setup(amqpCh); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}
	log.Info("connected to RabbitMQ")

	// Repositories
	userRepo := repository.NewUserRepository(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	customerRepo := repository.NewCustomerRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)
	analyticsRepo := repository.NewAnalyticsRepository(dbPool)

	// Services
	publisher := events.NewPublisher(amqpCh, log)
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	productSvc := service.NewProductService(productRepo, redisClient)
	customerSvc := service.NewCustomerService(customerRepo, orderRepo)
	orderSvc := service.NewOrderService(orderRepo, publisher, productSvc)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo)

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	productH := handler.NewProductHandler(productSvc)
	customerH := handler.NewCustomerHandler(customerSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	analyticsH := handler.NewAnalyticsHandler(analyticsSvc)
	healthH := handler.NewHealthHandler(dbPool, redisClient, amqpConn)

	// Router
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.GET("/", healthH.Root)
	router.GET("/health", healthH.Health)
	router.GET("/readyz", healthH.Readyz)

	authRequired := middleware.AuthMiddleware(cfg.JWT.Secret, userRepo)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.GET("/me", authRequired, authH.Me)
		auth.POST("/logout", authH.Logout)

		products := api.Group("/products", authRequired)
		products.GET("", productH.List)
		products.GET("/:id", productH.GetByID)
		products.POST("", productH.Create)
		products.PUT("/:id", productH.Update)
		products.DELETE("/:id", productH.Delete)
		products.GET("/search/:term", productH.Search)
		products.POST("/bulk-price-update", productH.BulkPriceUpdate)

		customers := api.Group("/customers", authRequired)
		customers.GET("", customerH.List)
		customers.GET("/:id", customerH.GetByID)
		customers.POST("", customerH.Create)
		customers.PUT("/:id", customerH.Update)
		customers.DELETE("/:id", customerH.Delete)
		customers.GET("/search/:term", customerH.Search)
		customers.GET("/:id/orders", customerH.Orders)
		customers.GET("/:id/stats", customerH.Stats)
		customers.GET("/stats/by-type", customerH.StatsByType)

		orders := api.Group("/orders", authRequired)
		orders.GET("", orderH.List)
		orders.GET("/:id", orderH.GetByID)
		orders.POST("", orderH.Create)
		orders.PUT("/:id/status", orderH.UpdateStatus)
		orders.DELETE("/:id", orderH.Delete)
		orders.GET("/customer/:id", orderH.ListByCustomer)
		orders.GET("/stats/by-status", orderH.StatsByStatus)

		analytics := api.Group("/analytics", authRequired)
		analytics.GET("/dashboard", analyticsH.Dashboard)
		analytics.GET("/revenue-by-day", analyticsH.RevenueByDay)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}
	log.Info("server stopped")
}
