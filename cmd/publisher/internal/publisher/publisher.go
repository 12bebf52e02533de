package publisher

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/gooneraki/risk-worker/pkg/models"
)

// Weighted action mix: mostly adds, some updates, an occasional delete.
var actions = []string{
	models.ActionAdd, models.ActionAdd, models.ActionAdd,
	models.ActionUpdate, models.ActionUpdate,
	models.ActionDelete,
}

// EventPublisher emits synthetic ticker events for exercising the
// worker end to end. A slice of traffic goes out as bare ticker
// strings rather than JSON, matching what legacy producers send.
type EventPublisher struct {
	logger    *zap.Logger
	sink      Sink
	tickers   []string
	interval  time.Duration
	bareRatio float64
	rand      Rand
	clock     Clock
}

func NewEventPublisher(
	logger *zap.Logger,
	sink Sink,
	tickers []string,
	interval time.Duration,
	bareRatio float64,
	rnd Rand,
	clock Clock,
) *EventPublisher {
	return &EventPublisher{
		logger:    logger,
		sink:      sink,
		tickers:   tickers,
		interval:  interval,
		bareRatio: bareRatio,
		rand:      rnd,
		clock:     clock,
	}
}

func (ep *EventPublisher) Run(ctx context.Context) {
	ep.logger.Info("Publisher Started", zap.Strings("tickers", ep.tickers))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if len(ep.tickers) == 0 {
				ep.clock.Sleep(1 * time.Second)
				continue
			}

			ticker := ep.tickers[ep.rand.Intn(len(ep.tickers))]
			payload := ep.buildPayload(ticker)

			if err := ep.sink.Publish(ctx, ticker, payload); err != nil {
				ep.logger.Error("Publish Error", zap.Error(err))
			} else {
				ep.logger.Debug("Sent event", zap.ByteString("payload", payload))
			}

			ep.clock.Sleep(ep.interval)
		}
	}
}

func (ep *EventPublisher) buildPayload(ticker string) []byte {
	if ep.rand.Float64() < ep.bareRatio {
		return []byte(ticker)
	}

	event := models.TickerEvent{
		Ticker:    ticker,
		Action:    actions[ep.rand.Intn(len(actions))],
		UserID:    int64(ep.rand.Intn(1000) + 1),
		Timestamp: float64(ep.clock.Now().UnixMicro()) / 1e6,
	}
	payload, _ := json.Marshal(event) // Error ignored for simplicity in loop
	return payload
}
