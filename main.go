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

	"employment-api/backend/internal/cache"
	"employment-api/backend/internal/config"
	"employment-api/backend/internal/database"
	"employment-api/backend/internal/handlers"
	"employment-api/backend/internal/middleware"
	"employment-api/backend/internal/monitoring"
	"employment-api/backend/internal/services"
	"employment-api/backend/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type Application struct {
	Config *config.Config
	DB     *database.Pool
	Cache  cache.Cache
	Redis  *redis.Client
	Router *gin.Engine
	Server *http.Server
	Worker *worker.Worker
	Jobs   *worker.JobQueue

	TokenService *services.TokenService
	AuthService  services.AuthService
	UserService  services.UserService
	TaskService  services.TaskService
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.setupRoutes()
	app.startServer()
}

func initializeApplication(cfg *config.Config) (*Application, error) {
	app := &Application{Config: cfg}

	log.Printf("Initializing Employment API (environment: %s)", cfg.Server.Environment)

	pool, err := database.NewPool(&database.PoolConfig{
		DSN:             cfg.GetDatabaseDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	app.DB = pool

	if err := database.Migrate(pool.DB); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	log.Println("Database connected and migrated")

	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
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

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis unavailable: %v (continuing with memory cache only)", err)
		} else {
			app.Redis = redisClient
			log.Println("Redis connected")
		}
	}

	if app.Redis != nil {
		app.Cache = cache.NewMultiLevelCache(cache.NewRedisCacheFromClient(app.Redis))
		log.Println("Multi-level cache initialized (memory L1 + redis L2)")
	} else {
		app.Cache = cache.NewMultiLevelCache(nil)
		log.Println("Memory cache initialized (no redis)")
	}

	app.TokenService = services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	app.AuthService = services.NewAuthService(cfg.Auth.BCryptCost)
	app.UserService = services.NewUserService()
	app.TaskService = services.NewCachedTaskService(services.NewTaskService(), app.Cache)

	if app.Redis != nil {
		app.Jobs = worker.NewJobQueue(app.Redis)
		if cfg.Worker.Enabled {
			app.Worker = worker.New(worker.Config{
				RedisClient: app.Redis,
				Queues:      cfg.Worker.Queues,
			})
			registerJobHandlers(app.Worker)
			app.Worker.Start(cfg.Worker.Concurrency)
		}
	}

	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		return app.DB.Health()
	})
	monitoring.RegisterHealthCheck("cache", func(ctx context.Context) error {
		return app.Cache.Health()
	})

	log.Println("All services initialized")
	return app, nil
}

func registerJobHandlers(w *worker.Worker) {
	w.RegisterHandler(worker.JobTypeWelcomeEmail, func(ctx context.Context, job *worker.Job) error {
		// Mail delivery is not wired up; the job records intent.
		log.Printf("welcome email queued for %v", job.Payload["email"])
		return nil
	})
	w.RegisterHandler(worker.JobTypeTaskReminder, func(ctx context.Context, job *worker.Job) error {
		log.Printf("task %v is due: %v", job.Payload["task_id"], job.Payload["title"])
		return nil
	})
}

func (app *Application) setupRoutes() {
	r := gin.New()

	r.Use(gin.Logger())
	r.Use(middleware.RecoveryWithLog())
	r.Use(middleware.RequestID())
	r.Use(monitoring.MetricsMiddleware())

	if app.Config.RateLimit.Enabled {
		perSecond := rate.Limit(float64(app.Config.RateLimit.RequestsPerMin) / 60.0)
		r.Use(middleware.RateLimiter(perSecond, app.Config.RateLimit.BurstSize, app.Config.RateLimit.CleanupInterval))
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     app.Config.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Use-Token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", monitoring.HealthHandler())
	r.GET("/metrics", monitoring.MetricsHandler())

	authHandler := handlers.NewAuthHandler(app.DB.DB, app.AuthService, app.UserService, app.TokenService, app.Jobs,
		handlers.AuthHandlerConfig{
			AccessTokenTTL:  app.Config.Auth.AccessTokenTTL,
			RefreshTokenTTL: app.Config.Auth.RefreshTokenTTL,
			SecureCookies:   app.Config.IsProduction(),
		})
	userHandler := handlers.NewUserHandler(app.DB.DB, app.UserService)
	taskHandler := handlers.NewTaskHandler(app.DB.DB, app.TaskService, app.UserService, app.Jobs)

	requireLogin := middleware.RequireLogin(app.TokenService)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)

		auth.GET("/protected", requireLogin, userHandler.Protected)
		auth.GET("/get_user_role", requireLogin, userHandler.GetUserRole)
		auth.GET("/get_employees", requireLogin, userHandler.GetEmployees)
	}

	tasks := r.Group("/tasks")
	{
		tasks.GET("/read_tasks", taskHandler.ReadTasks)
		tasks.GET("/read_task/:id", taskHandler.ReadTask)

		tasks.POST("/create_task", requireLogin, taskHandler.CreateTask)
		tasks.PUT("/update_task/:id", requireLogin, taskHandler.UpdateTask)
		tasks.DELETE("/delete_task/:id", requireLogin, taskHandler.DeleteTask)
	}

	app.Router = r
}

func (app *Application) startServer() {
	addr := app.Config.GetServerAddr()

	app.Server = &http.Server{
		Addr:         addr,
		Handler:      app.Router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.Server.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
		}

		app.cleanup()
		log.Println("Server stopped gracefully")
	}()

	log.Printf("Listening on %s", addr)
	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

func (app *Application) cleanup() {
	if app.Worker != nil {
		app.Worker.Stop()
	}
	if app.Cache != nil {
		app.Cache.Close()
	}
	if app.DB != nil {
		app.DB.Close()
	}
}
