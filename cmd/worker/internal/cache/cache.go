package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gooneraki/risk-worker/cmd/worker/internal/metrics"
)

const keyPrefix = "price:"

// PriceCache is a best-effort read-through cache for latest prices.
// A miss only means "consult the store"; it never means the ticker is
// unknown. Write failures are logged and swallowed.
type PriceCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewPriceCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *PriceCache {
	return &PriceCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached price for a ticker and whether it was present.
// Errors degrade to a miss.
func (c *PriceCache) Get(ctx context.Context, ticker string) (decimal.Decimal, bool) {
	val, err := c.client.Get(ctx, keyPrefix+ticker).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Cache read failed", zap.String("ticker", ticker), zap.Error(err))
		}
		return decimal.Decimal{}, false
	}

	price, err := decimal.NewFromString(val)
	if err != nil {
		c.logger.Warn("Discarding unparseable cache entry", zap.String("ticker", ticker), zap.String("value", val))
		return decimal.Decimal{}, false
	}
	return price, true
}

// Set stores the latest price with the configured TTL. A stale entry is
// self-healing once the TTL expires, so failures are not propagated.
func (c *PriceCache) Set(ctx context.Context, ticker string, price decimal.Decimal) {
	if err := c.client.Set(ctx, keyPrefix+ticker, price.String(), c.ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed", zap.String("ticker", ticker), zap.Error(err))
		metrics.CacheWrites.WithLabelValues("failure").Inc()
		return
	}
	metrics.CacheWrites.WithLabelValues("success").Inc()
}
