package subscriber

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Compile-time check to ensure RedisSource implements Source
var _ Source = (*RedisSource)(nil)

// RedisSource subscribes to a Redis pub/sub channel.
type RedisSource struct {
	client  *redis.Client
	channel string

	mu     sync.Mutex
	pubsub *redis.PubSub
}

func NewRedisSource(client *redis.Client, channel string) *RedisSource {
	return &RedisSource{client: client, channel: channel}
}

func (r *RedisSource) Subscribe(ctx context.Context) (<-chan Message, error) {
	ps := r.client.Subscribe(ctx, r.channel)
	// Force the subscribe round-trip so an unreachable broker surfaces
	// here instead of as a silent dead channel.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, err
	}

	r.mu.Lock()
	r.pubsub = ps
	r.mu.Unlock()

	out := make(chan Message)
	go func() {
		defer close(out)
		// ps.Channel() closes when the connection drops or the pubsub
		// is closed; either way the consumer sees transport loss.
		for msg := range ps.Channel() {
			select {
			case out <- Message{Payload: []byte(msg.Payload)}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (r *RedisSource) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pubsub == nil {
		return nil
	}
	ps := r.pubsub
	r.pubsub = nil
	return ps.Close()
}
