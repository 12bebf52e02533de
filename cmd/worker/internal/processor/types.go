package processor

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gooneraki/risk-worker/pkg/models"
)

// Fetcher abstracts the quote provider client
type Fetcher interface {
	Fetch(ctx context.Context, ticker string) models.FetchResult
}

// Gateway abstracts the persistence layer
type Gateway interface {
	RecordPrice(ctx context.Context, result models.FetchResult) error
	UpsertMetadata(ctx context.Context, ticker string, info models.ProviderInfo) error
}

// Cache abstracts the advisory price cache
type Cache interface {
	Set(ctx context.Context, ticker string, price decimal.Decimal)
}

// PricePublisher announces recorded prices to downstream consumers
type PricePublisher interface {
	PublishPriceUpdate(ctx context.Context, ticker string, price decimal.Decimal, at time.Time) error
}
