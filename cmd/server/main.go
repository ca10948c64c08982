package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/makeasinger/scales/internal/client"
	"github.com/makeasinger/scales/internal/config"
	"github.com/makeasinger/scales/internal/handler"
	"github.com/makeasinger/scales/internal/logger"
	"github.com/makeasinger/scales/internal/middleware"
	"github.com/makeasinger/scales/internal/repository"
	"github.com/makeasinger/scales/internal/router"
	"github.com/makeasinger/scales/internal/service"
	ws "github.com/makeasinger/scales/internal/websocket"
	"github.com/makeasinger/scales/internal/worker"
	"github.com/makeasinger/scales/pkg/response"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	shutdownTimeout       = 10 * time.Second
	environmentProduction = "production"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Server.Env,
			Debug:       cfg.Server.Env != environmentProduction,
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				if event.Request != nil {
					delete(event.Request.Headers, "Authorization")
					delete(event.Request.Headers, "Cookie")
				}
				return event
			},
		}); err != nil {
			logger.Warn("Failed to initialize Sentry", logger.Fields{"error": err.Error()})
		} else {
			defer sentry.Flush(sentryFlushTimeout)
		}
	}

	ctx := context.Background()

	var redisClient *redis.Client
	if cfg.RedisRequired() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis not available", logger.Fields{"addr": cfg.Redis.Addr, "error": err.Error()})
		}
	}

	repo, err := openRepository(cfg, redisClient)
	if err != nil {
		return err
	}

	validate := validator.New()

	// Services
	scaleService := service.NewScaleService(repo)
	if cfg.Storage.Seed {
		n, err := scaleService.Seed(ctx)
		if err != nil {
			logger.Error("Failed to seed catalog", err, nil)
		} else if n > 0 {
			logger.Info("Catalog seeded", logger.Fields{"scales": n})
		}
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.JWT.Expiration)
	if cfg.JWT.JWKSURL != "" {
		jwks, err := middleware.NewJWKS(ctx, cfg.JWT.JWKSURL)
		if err != nil {
			return err
		}
		authMiddleware.UseJWKS(jwks, cfg.JWT.Issuer)
		logger.Info("JWKS verification enabled", logger.Fields{"jwks_url": cfg.JWT.JWKSURL})
	}

	deps := router.Deps{
		Config:      cfg,
		Scales:      handler.NewScaleHandler(scaleService, validate),
		Theory:      handler.NewTheoryHandler(validate),
		Auth:        authMiddleware,
		RateLimiter: middleware.NewRateLimiter(redisClient),
	}

	var workerServer *asynq.Server
	if cfg.Jobs.Enabled {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}

		asynqClient := asynq.NewClient(redisOpt)
		defer asynqClient.Close()

		hub := ws.NewHub()
		go hub.Run()
		defer hub.Close()

		jobService := service.NewJobService(redisClient, asynqClient, scaleService)
		deps.Jobs = handler.NewJobHandler(jobService)
		deps.Hub = hub

		var store worker.ResultStore
		if cfg.Export.Enabled() {
			s3Client, err := client.NewS3Client(ctx, &cfg.Export)
			if err != nil {
				return err
			}
			store = s3Client
		}

		workerServer, err = startWorkerServer(cfg, redisOpt, worker.NewPitchTableWorker(jobService, hub, store))
		if err != nil {
			return err
		}
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	router.Setup(app, deps)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Shutting down server", nil)
		if workerServer != nil {
			workerServer.Shutdown()
		}
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("Server shutdown error", err, nil)
		}
	}()

	addr := ":" + cfg.Server.Port
	logger.Info("Server starting", logger.Fields{
		"addr":    addr,
		"storage": cfg.Storage.Provider,
		"jobs":    cfg.Jobs.Enabled,
	})
	return app.Listen(addr)
}

func openRepository(cfg *config.Config, redisClient *redis.Client) (repository.ScaleRepository, error) {
	switch cfg.Storage.Provider {
	case repository.ProviderMemory:
		return repository.NewMemoryRepository(), nil
	case repository.ProviderRedis:
		return repository.NewRedisRepository(redisClient), nil
	case repository.ProviderPostgres:
		if cfg.Postgres.DSN == "" {
			return nil, errors.New("postgres.dsn is required for the postgres storage provider")
		}
		repo, err := repository.OpenPostgres(cfg.Postgres.DSN)
		if err != nil {
			sentry.CaptureException(err)
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return repo, nil
	}
	return nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
}

func startWorkerServer(cfg *config.Config, redisOpt asynq.RedisClientOpt, pitchTableWorker *worker.PitchTableWorker) (*asynq.Server, error) {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Jobs.Concurrency,
		Queues: map[string]int{
			service.QueuePitchTable: 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypePitchTable, pitchTableWorker.ProcessTask)

	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start worker server: %w", err)
	}
	return srv, nil
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	if code >= fiber.StatusInternalServerError {
		logger.Error("Unhandled error", err, logger.WithContext(c))
	}

	errCode := response.CodeServiceError
	if code == fiber.StatusNotFound {
		errCode = response.CodeNotFound
	}
	return response.Error(c, code, errCode, message, nil)
}
