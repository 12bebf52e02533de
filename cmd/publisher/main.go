package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/gooneraki/risk-worker/cmd/publisher/internal/publisher"
	"github.com/gooneraki/risk-worker/pkg/config"
)

var tickers = []string{"AAPL", "GOOG", "TSLA", "AMZN", "MSFT"}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	var sink publisher.Sink
	switch cfg.Broker.Source {
	case "kafka":
		// Ensure the topic exists before the first write.
		tc := publisher.NewTopicCreator(logger,
			&publisher.RealKafkaDialer{Dialer: kafka.DefaultDialer}, publisher.RealClock{})
		tc.Create(cfg.Kafka.Brokers, cfg.Kafka.Topic)

		sink = publisher.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	default:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		sink = publisher.NewRedisSink(rdb, cfg.Broker.Channel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	r := publisher.RealRand{Rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
	pub := publisher.NewEventPublisher(logger, sink, tickers,
		1*time.Second, 0.2, r, publisher.RealClock{})

	go pub.Run(ctx)

	<-sigChan
	logger.Info("Shutdown signal received")
	cancel()

	// Flush buffered writes before exiting.
	if err := sink.Close(); err != nil {
		logger.Error("Error closing sink", zap.Error(err))
	} else {
		logger.Info("Sink closed cleanly")
	}
}
