// @title        Writing Marketplace API
// @version      1.0
// @description  Assignment lifecycle, pricing, payments, and notifications for an academic writing marketplace.
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/scribehub/writing-marketplace/internal/api"
	"github.com/scribehub/writing-marketplace/internal/infrastructure/ai"
	mongodb "github.com/scribehub/writing-marketplace/internal/infrastructure/db/mongo"
	redisdb "github.com/scribehub/writing-marketplace/internal/infrastructure/db/redis"
	"github.com/scribehub/writing-marketplace/internal/infrastructure/notify"
	"github.com/scribehub/writing-marketplace/internal/infrastructure/paystack"
	"github.com/scribehub/writing-marketplace/internal/pkg/config"
	"github.com/scribehub/writing-marketplace/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connect failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	defer rdb.Close()

	ensureIndexes(ctx, db, log)

	// --- External clients ---
	gateway := paystack.NewClient(cfg.Paystack.SecretKey, cfg.Paystack.BaseURL, cfg.Paystack.CallbackURL)

	estimator, err := ai.NewEstimator(cfg.Ollama.BaseURL, cfg.Ollama.Model, cfg.Ollama.Timeout, log)
	if err != nil {
		log.Fatal().Err(err).Msg("estimator init failed")
	}

	var telegram notify.TelegramSender
	if cfg.Telegram.BotToken != "" {
		telegram = notify.NewTelegramBot(cfg.Telegram.BotToken)
	}
	var email notify.EmailSender
	if cfg.Email.SendgridKey != "" {
		email = notify.NewSendgridSender(cfg.Email.SendgridKey, cfg.Email.FromName, cfg.Email.From)
	}
	var push notify.PushSender
	if cfg.Push.VAPIDPrivateKey != "" {
		push = notify.NewWebPushSender(cfg.Push.Subscriber, cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey)
	}

	// --- Notification fan-out ---
	deliverer := notify.NewDeliverer(
		mongodb.NewNotificationRepository(db),
		mongodb.NewSubscriptionRepository(db),
		mongodb.NewUserRepository(db),
		email,
		telegram,
		push,
		cfg.Telegram.AdminChatID,
		log,
	)
	dispatcher := notify.NewDispatcher(cfg.Notify.Workers, deliverer, log)
	dispatcher.Start(ctx)

	// --- HTTP server ---
	e := api.NewRouter(api.Dependencies{
		Mongo:     db,
		Redis:     rdb,
		Config:    cfg,
		Gateway:   gateway,
		Estimator: estimator,
		Notifier:  dispatcher,
		Telegram:  telegram,
		Log:       log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

// ensureIndexes creates all collection indexes; startup proceeds on failure
// since the indexes are performance and uniqueness aids, not schema.
func ensureIndexes(ctx context.Context, db *mongo.Database, log zerolog.Logger) {
	type indexer interface {
		EnsureIndexes(ctx context.Context) error
	}

	for name, r := range map[string]indexer{
		"assignments":   mongodb.NewAssignmentRepository(db),
		"users":         mongodb.NewUserRepository(db),
		"transactions":  mongodb.NewTransactionRepository(db),
		"notifications": mongodb.NewNotificationRepository(db),
		"subscriptions": mongodb.NewSubscriptionRepository(db),
		"messages":      mongodb.NewMessageRepository(db),
	} {
		if err := r.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}
}
