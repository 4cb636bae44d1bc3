package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"story-branches/internal/authutils"
	"story-branches/internal/cache"
	"story-branches/internal/config"
	"story-branches/internal/database"
	"story-branches/internal/handler"
	"story-branches/internal/illustration"
	"story-branches/internal/interfaces"
	"story-branches/internal/logger"
	"story-branches/internal/messaging"
	"story-branches/internal/middleware"
	"story-branches/internal/service"
	"story-branches/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Стандартный log только до инициализации zap.
	log.Println("Starting story-branches server...")

	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	zap.ReplaceGlobals(zapLogger)
	zapLogger.Info("Logger initialized", zap.String("env", cfg.Env), zap.String("logLevel", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Хранилище историй ---
	repo, closeStore, err := database.OpenStoryRepository(ctx, cfg.StoreConfig(true), zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to open story store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	// --- Redis: кэш историй и счетчики rate limit ---
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		if err := cache.Ping(ctx, redisClient); err != nil {
			// Кэш не обязателен: декоратор сам переходит на чтение из БД при ошибках Redis.
			zapLogger.Warn("Redis is not reachable, story cache will fall through to the store", zap.Error(err))
		} else {
			zapLogger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))
		}
		repo = cache.NewCachedStoryRepository(repo, redisClient, cfg.StoryCacheTTL, zapLogger)
	} else {
		zapLogger.Info("REDIS_ADDR is not set, story cache disabled")
	}

	// --- События ---
	var publisher interfaces.StoryEventPublisher
	if cfg.RabbitMQURL != "" {
		conn, err := messaging.Dial(ctx, cfg.RabbitMQURL, 5, 5*time.Second, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer conn.Close()
		rabbitPublisher, err := messaging.NewRabbitMQStoryEventPublisher(conn, cfg.StoryEventsQueue, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to create story event publisher", zap.Error(err))
		}
		defer func() {
			if err := rabbitPublisher.Close(); err != nil {
				zapLogger.Error("Failed to close publisher channel", zap.Error(err))
			}
		}()
		publisher = rabbitPublisher
	} else {
		zapLogger.Info("RABBITMQ_URL is not set, story events are only logged")
		publisher = messaging.NewNopPublisher(zapLogger)
	}

	// --- Внешние провайдеры ---
	images, err := storage.NewFirebaseImageStore(ctx, storage.Config{
		CredentialsPath: cfg.FirebaseCredentialsPath,
		Bucket:          cfg.FirebaseStorageBucket,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize Firebase Storage", zap.Error(err))
	}
	if images == nil {
		images = storage.NewDisabledImageStore(zapLogger)
	}

	illustrator, err := illustration.NewOpenAIGenerator(illustration.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIImageModel,
		Size:    cfg.OpenAIImageSize,
		Timeout: cfg.OpenAITimeout,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize illustration generator", zap.Error(err))
	}
	if illustrator == nil {
		illustrator = illustration.NewDisabledGenerator()
	}

	verifierOpts := []authutils.Option{authutils.WithLeeway(cfg.JWTLeeway)}
	if cfg.JWTIssuer != "" {
		verifierOpts = append(verifierOpts, authutils.WithIssuer(cfg.JWTIssuer))
	}
	verifier, err := authutils.NewJWTVerifier(cfg.JWTSecret, zapLogger, verifierOpts...)
	if err != nil {
		zapLogger.Fatal("Failed to create token verifier", zap.Error(err))
	}

	// --- Сервисы и HTTP ---
	storyHandler := handler.NewStoryHandler(
		service.NewStoryService(repo, publisher, images, zapLogger),
		service.NewBranchService(repo, publisher, illustrator, zapLogger),
		service.NewReaderService(repo, zapLogger),
		verifier.VerifyToken,
		cfg.MaxUploadBytes,
		zapLogger,
	)
	illustrationLimit := middleware.RateLimitByActor(
		middleware.NewRateLimitStore(redisClient, middleware.RateLimitConfig{
			Rate:  cfg.IllustrationRateWindow,
			Limit: cfg.IllustrationRateLimit,
		}),
		zapLogger,
	)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, zapLogger, func(r gin.IRouter) {
		storyHandler.RegisterRoutes(r, illustrationLimit)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		zapLogger.Info("HTTP server listening", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	zapLogger.Info("Server stopped")
}
