package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"agent_shopping/internal/config"
	"agent_shopping/internal/handler"
	"agent_shopping/internal/middleware"
	"agent_shopping/internal/repository"
	"agent_shopping/internal/service"
	"agent_shopping/internal/ws"
	"agent_shopping/pkg/logger"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger := logger.New(cfg.Log.Level)

	// Подключение к PostgreSQL
	dbPool, err := pgxpool.New(context.Background(), cfg.Database.DSN)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		appLogger.Fatal("Failed to ping database", "error", err)
	}
	appLogger.Info("Database connection established")

	// Подключение к Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}
	appLogger.Info("Redis connection established")

	// Реестр чат-комнат
	hub := ws.NewHub(appLogger)

	// Инициализация слоёв
	repos := repository.NewRepositories(dbPool, rdb, appLogger)
	services := service.NewServices(repos, cfg, hub, appLogger)

	authMiddleware := middleware.NewAuthMiddleware(services.Auth, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, appLogger)

	handlers := handler.NewHandlers(services, hub, cfg, appLogger)

	router := setupRouter(handlers, authMiddleware, rateLimitMiddleware, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		appLogger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exited")
}

func setupRouter(
	handlers *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorHandler())

	// Health check
	router.GET("/health", handlers.Health.Check)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Публичные endpoints
		public := v1.Group("/auth")
		{
			public.POST("/send-code", rateLimitMiddleware.Limit(), handlers.Auth.SendCode)
			public.POST("/register", rateLimitMiddleware.Limit(), handlers.Auth.Register)
			public.POST("/login", rateLimitMiddleware.Limit(), handlers.Auth.Login)
			public.POST("/refresh", handlers.Auth.RefreshToken)
			public.POST("/logout", handlers.Auth.Logout)
		}

		// Защищенные endpoints
		protected := v1.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			users := protected.Group("/users")
			{
				users.GET("/me", handlers.User.GetMe)
				users.PUT("/me/role", handlers.User.ChooseRole)
			}

			// Круг закупщиков: опубликованные маршруты
			protected.GET("/agents", handlers.Trip.ListPublished)

			trips := protected.Group("/trips")
			{
				trips.GET("/me", handlers.Trip.GetMine)
				trips.PUT("/me", handlers.Trip.Save)
				trips.POST("/me/publish", handlers.Trip.Publish)
				trips.DELETE("/me", handlers.Trip.Delete)
			}

			shopping := protected.Group("/shopping")
			{
				shopping.GET("/items", handlers.Shopping.ListItems)
				shopping.POST("/items", handlers.Shopping.AddItem)
				shopping.DELETE("/items/:id", handlers.Shopping.DeleteItem)
				shopping.GET("/circle/me", handlers.Shopping.GetCircle)
				shopping.PUT("/circle/me", handlers.Shopping.SaveCircle)
				shopping.GET("/circle", handlers.Shopping.ListCircles)
			}

			bindings := protected.Group("/bindings")
			{
				bindings.POST("", handlers.Binding.Request)
				bindings.POST("/direct", handlers.Binding.RequestDirect)
				bindings.GET("", handlers.Binding.List)
				bindings.GET("/:id", handlers.Binding.GetByID)
				bindings.POST("/:id/confirm", handlers.Binding.Confirm)
				bindings.DELETE("/:id", handlers.Binding.Unbind)
			}

			protected.GET("/chat/:id/history", handlers.Chat.GetHistory)
		}
	}

	// WebSocket endpoint для чата (токен в query)
	router.GET("/ws/chat/:id", handlers.WebSocket.HandleChat)

	return router
}
