package cache_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gooneraki/risk-worker/cmd/worker/internal/cache"
)

func newTestCache(t *testing.T, ttl time.Duration) (*cache.PriceCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return cache.NewPriceCache(client, ttl, zap.NewNop()), mr
}

func TestPriceCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	c.Set(ctx, "MSFT", decimal.NewFromFloat(410.50))

	price, ok := c.Get(ctx, "MSFT")
	if !ok {
		t.Fatal("Get() reported a miss after Set()")
	}
	if got := price.StringFixed(2); got != "410.50" {
		t.Errorf("price = %s, want 410.50", got)
	}
}

func TestPriceCache_MissForUnknownTicker(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	if _, ok := c.Get(context.Background(), "UNSEEN"); ok {
		t.Error("Get() should miss for a ticker that was never cached")
	}
}

func TestPriceCache_EntryExpires(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	c.Set(ctx, "AAPL", decimal.NewFromFloat(190.0))
	mr.FastForward(31 * time.Second)

	if _, ok := c.Get(ctx, "AAPL"); ok {
		t.Error("Get() should miss after the TTL elapsed")
	}
}

func TestPriceCache_SetFailureSwallowed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := cache.NewPriceCache(client, time.Minute, zap.NewNop())
	mr.Close() // cache backend gone

	// Must not panic or propagate: caching is advisory.
	c.Set(context.Background(), "MSFT", decimal.NewFromFloat(1.0))

	if _, ok := c.Get(context.Background(), "MSFT"); ok {
		t.Error("Get() against a dead backend should degrade to a miss")
	}
}

func TestPublisher_PublishPriceUpdate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	p := cache.NewPublisher(client)

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ps := sub.Subscribe(context.Background(), "ticker_price_updates")
	defer ps.Close()
	if _, err := ps.Receive(context.Background()); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	err := p.PublishPriceUpdate(context.Background(), "MSFT", decimal.NewFromFloat(410.50), time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("PublishPriceUpdate() error = %v", err)
	}

	select {
	case msg := <-ps.Channel():
		if msg.Channel != "ticker_price_updates" {
			t.Errorf("channel = %s", msg.Channel)
		}
		if want := `"ticker":"MSFT"`; !strings.Contains(msg.Payload, want) {
			t.Errorf("payload %s missing %s", msg.Payload, want)
		}
	case <-time.After(time.Second):
		t.Fatal("no price update received")
	}
}
