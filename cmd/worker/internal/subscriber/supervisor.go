package subscriber

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gooneraki/risk-worker/cmd/worker/internal/decoder"
	"github.com/gooneraki/risk-worker/cmd/worker/internal/metrics"
)

// Supervisor owns the long-lived connection to the message channel. It
// loops Disconnected -> Subscribing -> Listening forever: a dropped
// connection or failed subscribe means a fixed backoff and another
// attempt, never a dead worker. Only ctx cancellation stops it.
type Supervisor struct {
	source  Source
	handler Handler
	channel string
	backoff time.Duration
	logger  *zap.Logger
}

func NewSupervisor(source Source, handler Handler, channel string, backoff time.Duration, logger *zap.Logger) *Supervisor {
	return &Supervisor{
		source:  source,
		handler: handler,
		channel: channel,
		backoff: backoff,
		logger:  logger,
	}
}

// Run blocks until ctx is cancelled. Messages published while the
// supervisor is between connection epochs are lost; the worker trades
// delivery guarantees for always coming back up.
func (s *Supervisor) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		msgs, err := s.source.Subscribe(ctx)
		if err != nil {
			s.logger.Error("Subscription failed", zap.String("channel", s.channel), zap.Error(err))
			metrics.Reconnects.Inc()
			if !s.wait(ctx) {
				return
			}
			continue
		}

		s.logger.Info("Subscribed to channel", zap.String("channel", s.channel))
		metrics.ActiveSubscriptions.Set(1)
		s.listen(ctx, msgs)
		metrics.ActiveSubscriptions.Set(0)

		// Best-effort cleanup; a failed close is logged, not escalated.
		if err := s.source.Close(); err != nil {
			s.logger.Warn("Error closing subscription", zap.Error(err))
		}

		if ctx.Err() != nil {
			return
		}

		s.logger.Info("Restarting subscription", zap.Duration("backoff", s.backoff))
		metrics.Reconnects.Inc()
		if !s.wait(ctx) {
			return
		}
	}
}

// listen drains the receive channel until transport loss or shutdown.
// One message is fully handed off before the next is read.
func (s *Supervisor) listen(ctx context.Context, msgs <-chan Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-msgs:
			if !ok {
				s.logger.Warn("Channel connection lost", zap.String("channel", s.channel))
				return
			}
			s.handle(m)
		}
	}
}

// handle processes one message. A decode or processing failure drops the
// message and keeps the loop alive; nothing from a single message may
// escape this boundary. The background context means an in-flight write
// finishes even while shutdown is underway.
func (s *Supervisor) handle(m Message) {
	evt, err := decoder.Decode(m.Payload)
	if err != nil {
		s.logger.Warn("Dropping undecodable message",
			zap.ByteString("payload", m.Payload), zap.Error(err))
		metrics.DecodeFailures.Inc()
		metrics.MessagesProcessed.WithLabelValues(s.channel, "decode_error").Inc()
		return
	}

	s.logger.Info("Received ticker event",
		zap.String("ticker", evt.Ticker), zap.String("action", evt.Action))

	outcome := s.handler.Process(context.Background(), evt)
	metrics.MessagesProcessed.WithLabelValues(s.channel, outcome.String()).Inc()
}

// wait sleeps out the backoff, returning false when ctx ended first.
func (s *Supervisor) wait(ctx context.Context) bool {
	select {
	case <-time.After(s.backoff):
		return true
	case <-ctx.Done():
		return false
	}
}
