package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gooneraki/risk-worker/cmd/worker/internal/cache"
	"github.com/gooneraki/risk-worker/cmd/worker/internal/processor"
	"github.com/gooneraki/risk-worker/cmd/worker/internal/quotes"
	"github.com/gooneraki/risk-worker/cmd/worker/internal/server"
	"github.com/gooneraki/risk-worker/cmd/worker/internal/store"
	"github.com/gooneraki/risk-worker/cmd/worker/internal/subscriber"
	"github.com/gooneraki/risk-worker/pkg/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	db, err := store.Open(cfg.Database.DSN)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	st, err := store.New(db)
	if err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()

	fetcher := quotes.NewClient(cfg.Provider.BaseURL, cfg.Provider.Timeout)
	publisher := cache.NewPublisher(rdb)

	// The cache is advisory: when disabled the interfaces stay nil and
	// the processor and server skip it entirely.
	var (
		procCache   processor.Cache
		serverCache server.PriceCache
	)
	if cfg.Cache.Enabled {
		pc := cache.NewPriceCache(rdb, cfg.Cache.TTL, logger)
		procCache = pc
		serverCache = pc
	}

	proc := processor.New(fetcher, st, procCache, publisher, logger)

	var source subscriber.Source
	switch cfg.Broker.Source {
	case "kafka":
		source = subscriber.NewKafkaSource(cfg.Kafka)
	default:
		source = subscriber.NewRedisSource(rdb, cfg.Broker.Channel)
	}
	sup := subscriber.NewSupervisor(source, proc, cfg.Broker.Channel, cfg.Broker.ReconnectBackoff, logger)

	ctx, cancel := context.WithCancel(context.Background())
	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx)
	}()

	srv := &http.Server{
		Addr:    cfg.App.Port,
		Handler: server.New(cfg, logger, st, serverCache, proc).Router(),
	}
	go func() {
		logger.Info("Server Started",
			zap.String("port", cfg.App.Port),
			zap.String("broker", cfg.Broker.Source),
			zap.String("channel", cfg.Broker.Channel))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("HTTP Error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("Shutdown signal received, stopping worker...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}

	// In-flight message handling runs detached from the supervisor
	// context; give it a bounded grace period to finish.
	select {
	case <-supDone:
	case <-time.After(10 * time.Second):
		logger.Warn("Subscriber did not stop in time, exiting anyway")
	}

	logger.Info("Shutdown Complete")
}
