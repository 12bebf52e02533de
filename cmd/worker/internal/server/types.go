package server

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/gooneraki/risk-worker/pkg/models"
)

// PriceReader abstracts the persistence gateway's read path
type PriceReader interface {
	LatestPrice(ctx context.Context, ticker string) (*models.PriceObservation, error)
}

// PriceCache abstracts the advisory read-through cache
type PriceCache interface {
	Get(ctx context.Context, ticker string) (decimal.Decimal, bool)
	Set(ctx context.Context, ticker string, price decimal.Decimal)
}

// Trigger abstracts the processor for out-of-band manual updates
type Trigger interface {
	Process(ctx context.Context, event models.TickerEvent) models.ProcessOutcome
}
