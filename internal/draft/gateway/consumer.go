package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/cdurbin34/draftroom/internal/draft/outbox"
)

// ConsumerConfig tunes the JetStream event consumer feeding the gateway.
type ConsumerConfig struct {
	URL           string
	StreamName    string
	ConsumerName  string
	FilterSubject string
	MaxReconnects int
	ReconnectWait time.Duration
	AckWait       time.Duration
}

// DefaultConsumerConfig returns the consumer defaults.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		URL:           nats.DefaultURL,
		StreamName:    "DRAFT_EVENTS",
		ConsumerName:  "draft-gateway",
		FilterSubject: "draft.events.>",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		AckWait:       30 * time.Second,
	}
}

// EventConsumer pulls published draft events off JetStream and hands them to
// the connection manager for fanout.
type EventConsumer struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	manager *ConnectionManager
	config  ConsumerConfig

	consumeCtx jetstream.ConsumeContext
}

// NewEventConsumer connects to NATS and ensures the durable consumer.
func NewEventConsumer(manager *ConnectionManager, cfg ConsumerConfig) (*EventConsumer, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("gateway NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("gateway NATS reconnected")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	return &EventConsumer{
		nc:      nc,
		js:      js,
		manager: manager,
		config:  cfg,
	}, nil
}

// Start begins consuming events until Stop is called.
func (c *EventConsumer) Start(ctx context.Context) error {
	consumer, err := c.ensureConsumer(ctx)
	if err != nil {
		return err
	}

	consumeCtx, err := consumer.Consume(c.handleMessage)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	c.consumeCtx = consumeCtx

	log.Info().
		Str("stream", c.config.StreamName).
		Str("consumer", c.config.ConsumerName).
		Str("filter", c.config.FilterSubject).
		Msg("gateway event consumer started")
	return nil
}

// Stop drains the consumer and closes the NATS connection.
func (c *EventConsumer) Stop() {
	if c.consumeCtx != nil {
		c.consumeCtx.Stop()
	}
	if c.nc != nil {
		c.nc.Close()
	}
}

func (c *EventConsumer) ensureConsumer(ctx context.Context) (jetstream.Consumer, error) {
	stream, err := c.js.Stream(ctx, c.config.StreamName)
	if err != nil {
		return nil, fmt.Errorf("get stream %s: %w", c.config.StreamName, err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       c.config.ConsumerName,
		FilterSubject: c.config.FilterSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       c.config.AckWait,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("create consumer: %w", err)
	}
	return consumer, nil
}

// handleMessage decodes the envelope, routes it to the draft's watchers, and
// acks. Malformed messages are terminated so they never redeliver.
func (c *EventConsumer) handleMessage(msg jetstream.Msg) {
	var env outbox.Envelope
	if err := json.Unmarshal(msg.Data(), &env); err != nil {
		log.Error().Err(err).Str("subject", msg.Subject()).Msg("failed to decode event envelope")
		msg.Term()
		return
	}

	draftID, err := uuid.Parse(env.DraftID)
	if err != nil {
		log.Error().Err(err).Str("draft_id", env.DraftID).Msg("invalid draft ID in event envelope")
		msg.Term()
		return
	}

	c.manager.Broadcast(draftID, env)

	if err := msg.Ack(); err != nil {
		log.Error().Err(err).Str("event_id", env.EventID).Msg("failed to ack event")
	}
}
