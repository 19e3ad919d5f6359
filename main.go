package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-platform/backend/internal/cache"
	"task-platform/backend/internal/config"
	"task-platform/backend/internal/database"
	"task-platform/backend/internal/handlers"
	"task-platform/backend/internal/middleware"
	"task-platform/backend/internal/models"
	"task-platform/backend/internal/monitoring"
	"task-platform/backend/internal/services"
	"task-platform/backend/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	cacheInstance := cache.NewRedisCache(&cache.Config{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err := cacheInstance.Health(); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	jobQueue := worker.NewJobQueue(cacheInstance.Client(), cfg.Worker.MaxTries)
	dispatcher := worker.NewDispatcher(jobQueue)

	authService := services.NewAuthService(cfg.Auth)
	registerService := services.NewRegisterService(authService)
	userService := services.NewUserService()
	taskService := services.NewCachedTaskService(services.NewTaskService(), cacheInstance, cfg.Cache)

	jobWorker := worker.NewWorker(worker.Config{
		RedisClient:  cacheInstance.Client(),
		Concurrency:  cfg.Worker.Concurrency,
		PollInterval: cfg.Worker.PollInterval,
		Queues:       cfg.Worker.Queues,
	})
	worker.NewJobs(db, taskService, cfg.Worker.ArchiveAfter).Register(jobWorker)
	jobWorker.Start(cfg.Worker.Concurrency)

	scheduler := worker.NewScheduler(jobQueue, cfg.Worker.ArchiveInterval)
	scheduler.Start()

	router := setupRouter(cfg, db, cacheInstance, authService, registerService, userService, taskService, dispatcher)

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.GetServerAddr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	scheduler.Stop()
	jobWorker.Stop()

	if err := cacheInstance.Close(); err != nil {
		log.Printf("Cache close error: %v", err)
	}

	log.Println("Shutdown complete")
}

func setupRouter(
	cfg *config.Config,
	db *gorm.DB,
	cacheInstance *cache.RedisCache,
	authService services.AuthService,
	registerService services.RegisterService,
	userService services.UserService,
	taskService services.TaskService,
	dispatcher *worker.Dispatcher,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.NewRateLimiter(cfg.RateLimit).Middleware())
	}

	metrics := monitoring.NewMetrics()
	router.Use(metrics.Middleware())

	authHandler := handlers.NewAuthHandler(db, authService)
	registerHandler := handlers.NewRegisterHandler(db, registerService, dispatcher)
	refreshHandler := handlers.NewRefreshHandler(db, authService)
	userHandler := handlers.NewUserHandler(db, userService)
	taskHandler := handlers.NewTaskHandler(db, taskService, dispatcher)
	healthHandler := handlers.NewHealthHandler(db, cacheInstance)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Task Platform API",
			"status":  "healthy",
		})
	})
	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", registerHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", refreshHandler.Refresh)
	}

	protected := v1.Group("")
	protected.Use(middleware.RequireAuth(db, authService))
	{
		users := protected.Group("/users")
		{
			users.GET("/me", userHandler.GetMe)
			users.PATCH("/me", userHandler.UpdateMe)
			users.GET("", middleware.RequireRole(models.RoleAdmin), userHandler.ListUsers)
			users.PATCH("/:id", middleware.RequireRole(models.RoleAdmin), userHandler.UpdateUser)
		}

		tasks := protected.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}
	}

	return router
}
