package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-relay-bot/internal/application/authz"
	relayapp "github.com/go-relay-bot/internal/application/relay"
	"github.com/go-relay-bot/internal/config"
	"github.com/go-relay-bot/internal/dispatch"
	"github.com/go-relay-bot/internal/infrastructure/dynamo"
	"github.com/go-relay-bot/internal/infrastructure/telegram"
	"github.com/go-relay-bot/internal/logging"
	"github.com/go-relay-bot/internal/pkg/clock"
	botpoll "github.com/go-relay-bot/internal/transport/bot"
	transporthttp "github.com/go-relay-bot/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bootstrap DynamoDB tables (creates them if they don't exist). An
	// unreachable store is fatal at boot.
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		log.Fatalf("dynamodb client: %v", err)
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	tgClient := telegram.NewClient(cfg.BotToken)
	clk := clock.New()

	authSvc := authz.NewService(authz.ServiceDeps{
		UserRepo:   dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		Notifier:   tgClient,
		Clock:      clk,
		OperatorID: cfg.OperatorID,
		Logger:     logger,
	})
	defer authSvc.Close()

	relaySvc := relayapp.NewService(relayapp.ServiceDeps{
		LogRepo:    dynamo.NewRelayLogRepo(dynamoClient, cfg.DynamoTables.RelayMessages),
		Auth:       authSvc,
		Sender:     tgClient,
		Clock:      clk,
		OperatorID: cfg.OperatorID,
		Logger:     logger,
	})

	dispatcher := dispatch.New(dispatch.Deps{
		Auth:       authSvc,
		Relay:      relaySvc,
		Sender:     tgClient,
		OperatorID: cfg.OperatorID,
		Logger:     logger,
	})

	opsSrv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.OpsPort),
		Handler:      transporthttp.NewRouter(authSvc),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("ops server starting", "port", cfg.OpsPort, "env", cfg.AppEnv)
		if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ops server error: %v", err)
		}
	}()

	poller := botpoll.NewPoller(tgClient, dispatcher, cfg.PollTimeoutSec, logger)
	logger.Info("bot started", "operator_id", cfg.OperatorID)
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("poller stopped", "err", err)
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced ops server shutdown: %v", err)
	}
	logger.Info("stopped")
}
