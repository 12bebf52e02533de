package processor

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/gooneraki/risk-worker/cmd/worker/internal/metrics"
	"github.com/gooneraki/risk-worker/pkg/models"
)

// Processor runs the fetch-then-persist pipeline for one ticker event.
// Dependencies arrive at construction; cache and publisher may be nil
// when those features are disabled.
type Processor struct {
	fetcher   Fetcher
	gateway   Gateway
	cache     Cache
	publisher PricePublisher
	logger    *zap.Logger
}

func New(fetcher Fetcher, gateway Gateway, cache Cache, publisher PricePublisher, logger *zap.Logger) *Processor {
	return &Processor{
		fetcher:   fetcher,
		gateway:   gateway,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

// Process handles one event end to end and reports how far it got. It is
// side-effecting only: callers that need the result inspect the outcome.
// A fetch failure is terminal for the event; there is no retry or re-queue.
func (p *Processor) Process(ctx context.Context, event models.TickerEvent) models.ProcessOutcome {
	log := p.logger.With(zap.String("ticker", event.Ticker), zap.String("action", event.Action))

	// Delete events unsubscribe a ticker upstream; price history stays.
	if event.Action == models.ActionDelete {
		log.Info("Delete event acknowledged, history retained")
		return models.OutcomeSkipped
	}

	timer := prometheus.NewTimer(metrics.ProcessingDuration)
	defer timer.ObserveDuration()

	result := p.fetcher.Fetch(ctx, event.Ticker)
	if !result.Success {
		log.Error("Price fetch failed", zap.String("reason", result.ErrorMessage))
		metrics.ProviderFetches.WithLabelValues("failure").Inc()
		return models.OutcomeFetchFailed
	}
	metrics.ProviderFetches.WithLabelValues("success").Inc()

	// The two writes are independent units of work: one failing must not
	// stop the other from being attempted.
	priceErr := p.gateway.RecordPrice(ctx, result)
	if priceErr != nil {
		log.Error("Failed to store price", zap.Error(priceErr))
		metrics.DatabaseWrites.WithLabelValues("ticker_prices", "failure").Inc()
	} else {
		metrics.DatabaseWrites.WithLabelValues("ticker_prices", "success").Inc()
	}

	metaErr := p.gateway.UpsertMetadata(ctx, event.Ticker, result.Info)
	if metaErr != nil {
		log.Error("Failed to upsert metadata", zap.Error(metaErr))
		metrics.DatabaseWrites.WithLabelValues("ticker_metadata", "failure").Inc()
	} else {
		metrics.DatabaseWrites.WithLabelValues("ticker_metadata", "success").Inc()
	}

	if p.cache != nil {
		p.cache.Set(ctx, event.Ticker, result.Price)
	}
	if p.publisher != nil {
		if err := p.publisher.PublishPriceUpdate(ctx, event.Ticker, result.Price, time.Now()); err != nil {
			log.Warn("Failed to publish price update", zap.Error(err))
		}
	}

	outcome := classify(priceErr, metaErr)
	switch {
	case outcome == models.OutcomeSuccess:
		log.Info("Processed ticker", zap.String("price", result.Price.String()))
	case outcome.Partial():
		log.Warn("Partial success processing ticker", zap.String("outcome", outcome.String()))
	default:
		log.Error("All writes failed for ticker")
	}
	return outcome
}

func classify(priceErr, metaErr error) models.ProcessOutcome {
	switch {
	case priceErr == nil && metaErr == nil:
		return models.OutcomeSuccess
	case priceErr == nil:
		return models.OutcomePriceOnly
	case metaErr == nil:
		return models.OutcomeMetadataOnly
	default:
		return models.OutcomeWritesFailed
	}
}
