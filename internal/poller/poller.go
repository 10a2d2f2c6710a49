package poller

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// OrderPlacedEvent is published by the order pipeline once an order has been accepted.
type OrderPlacedEvent struct {
	SessionID string `json:"session_id"`
	OrderID   string `json:"order_id"`
}

// SessionClearer empties a session's cart and checkout info.
type SessionClearer interface {
	ClearSession(ctx context.Context, sessionID string) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

const defaultRetryDelay = time.Second

// Poller clears carts whose orders were placed.
type Poller struct {
	carts      SessionClearer
	reader     messageReader
	logger     *zap.Logger
	retryDelay time.Duration // pause after a failed read
}

func NewPoller(carts SessionClearer, logger *zap.Logger, topic, groupID string, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{
		carts:      carts,
		reader:     reader,
		logger:     logger.With(zap.String("topic", topic)),
		retryDelay: defaultRetryDelay,
	}
}

// Start runs the poller in its own goroutine. The returned channel is closed once Run returns.
func (p *Poller) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx)
	}()
	return done
}

// Run consumes events until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.getMessageAndClearCart(ctx)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.Warn("error closing reader", zap.Error(err))
	}
}

func (p *Poller) getMessageAndClearCart(ctx context.Context) {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		p.logger.Error("error reading message", zap.Error(err), zap.Duration("retry_in", p.retryDelay))
		select {
		case <-ctx.Done():
		case <-time.After(p.retryDelay):
		}
		return
	}
	p.handleMessage(ctx, m)
}

func (p *Poller) handleMessage(ctx context.Context, m kafka.Message) {
	var event OrderPlacedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		p.logger.Warn("error parsing message", zap.Int64("offset", m.Offset), zap.Error(err))
		return
	}
	if event.SessionID == "" {
		p.logger.Warn("missing or invalid session_id", zap.Int64("offset", m.Offset))
		return
	}

	if err := p.carts.ClearSession(ctx, event.SessionID); err != nil {
		p.logger.Error("failed to clear cart",
			zap.String("session_id", event.SessionID),
			zap.String("order_id", event.OrderID),
			zap.Error(err))
		return
	}
	p.logger.Info("cart cleared after order placement",
		zap.String("session_id", event.SessionID),
		zap.String("order_id", event.OrderID))
}
