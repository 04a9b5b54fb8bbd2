package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"cipher-chat/internal/auth"
	"cipher-chat/internal/cipher"
	"cipher-chat/internal/config"
	"cipher-chat/internal/handler"
	chatredis "cipher-chat/internal/redis"
	"cipher-chat/internal/repository"
	"cipher-chat/internal/server"
	"cipher-chat/internal/services"
	"cipher-chat/internal/storage"
	"cipher-chat/internal/websocket"
	"cipher-chat/pkg/database"
	"cipher-chat/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	mode := logger.DevelopmentMode
	if cfg.IsProduction() {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		l.Logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	redisClient := chatredis.NewClient(chatredis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := chatredis.Ping(ctx, redisClient); err != nil {
		l.Logger.Fatal("failed to connect to redis", zap.Error(err))
	}

	var images services.ImageStore
	if cfg.StorageEnabled() {
		s3Client, err := storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.Storage.Region,
			Bucket:     cfg.Storage.Bucket,
			AccessKey:  cfg.Storage.AccessKey,
			SecretKey:  cfg.Storage.SecretKey,
			Endpoint:   cfg.Storage.Endpoint,
			PublicBase: cfg.Storage.PublicBase,
			ACL:        cfg.Storage.ACL,
		})
		if err != nil {
			l.Logger.Fatal("failed to configure object storage", zap.Error(err))
		}
		images = s3Client
	} else {
		l.Warnf("S3 storage not configured; image messages will be rejected")
	}

	publisher := chatredis.NewPublisher(redisClient)
	presence := chatredis.NewPresenceStore(redisClient, publisher, 0)
	go presence.RunCleanup(ctx, time.Minute)
	cache := chatredis.NewCacheStore(redisClient, cfg.Chat.UserCacheTTL)
	limiter := chatredis.NewRateLimiter(redisClient, chatredis.RateLimitConfig{
		MessageLimit:  cfg.Chat.MessageRateLimit,
		MessageWindow: cfg.Chat.MessageRateWindow,
	})

	userRepo := repository.NewUserRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)

	userService := services.NewUserService(userRepo, cache, presence, l)
	messageService := services.NewMessageService(services.MessageServiceOptions{
		Messages:      messageRepo,
		Users:         userRepo,
		Images:        images,
		Publisher:     publisher,
		Presence:      presence,
		Codec:         cipher.NewCodec(cfg.Chat.Shift),
		MaxImageBytes: cfg.Chat.MaxImageBytes,
		Logger:        l,
	})

	hub := websocket.NewHub()
	go hub.Run(ctx)

	bridge := websocket.NewRedisBridge(chatredis.NewSubscriber(redisClient), hub)
	go func() {
		if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			l.Logger.Error("redis bridge stopped", zap.Error(err))
		}
	}()

	verifier := auth.NewTokenVerifier(cfg.Auth.JWTSecret)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Messages: handler.NewMessageHandler(messageService),
		Users:    handler.NewUserHandler(userService),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"postgres": pool,
			"redis": handler.PingFunc(func(ctx context.Context) error {
				return chatredis.Ping(ctx, redisClient)
			}),
		}),
		WebSocket: websocket.NewHandler(verifier, hub, presence, cfg.Auth.CookieName, l),
	}, verifier, limiter)

	l.Infof("message codec shift: %d", cfg.Chat.Shift)
	if err := srv.Run(ctx); err != nil {
		l.Logger.Fatal("server error", zap.Error(err))
	}
}
