package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/gooneraki/risk-worker/pkg/models"
)

// PriceUpdate is the payload published on the price-updates channel for
// downstream consumers.
type PriceUpdate struct {
	Ticker    string          `json:"ticker"`
	Price     decimal.Decimal `json:"price"`
	Timestamp int64           `json:"timestamp"` // unix micro
}

// Publisher announces freshly recorded prices on the
// ticker_price_updates channel.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) PublishPriceUpdate(ctx context.Context, ticker string, price decimal.Decimal, at time.Time) error {
	payload, err := json.Marshal(PriceUpdate{
		Ticker:    ticker,
		Price:     price,
		Timestamp: at.UnixMicro(),
	})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, models.TickerPriceUpdatesChannel, payload).Err()
}
