package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// DefaultExchange is used when no exchange name is configured.
const DefaultExchange = "storefront.orders"

var errPublisherClosed = errors.New("publisher closed")

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// link is one broker connection with its publishing channel. closed is
// signalled by the client library when the channel or connection goes away.
type link struct {
	ch     channel
	conn   io.Closer
	closed <-chan *amqp.Error
}

func (l *link) alive() bool {
	if l.closed == nil {
		return true
	}
	select {
	case <-l.closed:
		return false
	default:
		return true
	}
}

func (l *link) close() {
	_ = l.ch.Close()
	if l.conn != nil {
		_ = l.conn.Close()
	}
}

func dialLink(url, exchange string) (*link, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbit: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	closed := ch.NotifyClose(make(chan *amqp.Error, 1))
	return &link{ch: ch, conn: conn, closed: closed}, nil
}

// RabbitPublisher publishes events as persistent JSON messages to a topic exchange.
// A dropped connection is redialled on the next publish.
type RabbitPublisher struct {
	mu       sync.Mutex
	link     *link
	dial     func() (*link, error)
	exchange string
	logger   zerolog.Logger
	closed   bool
}

// DialRabbit connects to the broker and declares the events exchange.
func DialRabbit(url, exchange string, logger zerolog.Logger) (*RabbitPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := newRabbitPublisher(func() (*link, error) { return dialLink(url, exchange) }, exchange, logger)
	l, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.link = l
	return p, nil
}

func newRabbitPublisher(dial func() (*link, error), exchange string, logger zerolog.Logger) *RabbitPublisher {
	return &RabbitPublisher{
		dial:     dial,
		exchange: exchange,
		logger:   logger.With().Str("component", "events").Str("exchange", exchange).Logger(),
	}
}

// current returns a live link, dialling a new one when needed. Callers hold mu.
func (p *RabbitPublisher) current() (*link, error) {
	if p.closed {
		return nil, errPublisherClosed
	}
	if p.link != nil && p.link.alive() {
		return p.link, nil
	}
	if p.link != nil {
		p.logger.Warn().Msg("broker connection lost, reconnecting")
		p.drop()
	}
	l, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.link = l
	p.logger.Info().Msg("broker connection established")
	return l, nil
}

func (p *RabbitPublisher) drop() {
	if p.link != nil {
		p.link.close()
		p.link = nil
	}
}

func (p *RabbitPublisher) PublishOrderPlaced(ctx context.Context, evt OrderPlaced) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", RoutingKeyOrderPlaced, err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    evt.EventID,
		Type:         RoutingKeyOrderPlaced,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// One retry on a fresh link covers a connection that died without
	// the close notification arriving first.
	for attempt := 0; ; attempt++ {
		l, err := p.current()
		if err != nil {
			return fmt.Errorf("publish %s: %w", RoutingKeyOrderPlaced, err)
		}
		err = l.ch.PublishWithContext(ctx, p.exchange, RoutingKeyOrderPlaced, false, false, msg)
		if err == nil {
			break
		}
		p.drop()
		if attempt > 0 || ctx.Err() != nil {
			return fmt.Errorf("publish %s: %w", RoutingKeyOrderPlaced, err)
		}
		p.logger.Warn().Err(err).Msg("publish failed, retrying on a new connection")
	}
	p.logger.Debug().Str("event_id", evt.EventID).Int64("order_id", evt.OrderID).Msg("event published")
	return nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.drop()
	return nil
}
