// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package eventbus

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/stackchart/internal/logging"
	"github.com/tomtom215/stackchart/internal/metrics"
	"github.com/tomtom215/stackchart/internal/models"
)

// Driver names.
const (
	DriverGoChannel = "gochannel"
	DriverNATS      = "nats"
)

// Config selects and tunes the bus driver.
type Config struct {
	Driver string

	// NATSURL is the server URL for the nats driver.
	NATSURL string

	// OutputBuffer is the per-subscriber channel buffer of the gochannel driver.
	OutputBuffer int64
}

// Bus publishes lifecycle events and hands out subscription handles.
// It is safe for concurrent use by any number of charts.
type Bus struct {
	pub    message.Publisher
	sub    message.Subscriber
	logger watermill.LoggerAdapter

	mu     sync.Mutex
	closed bool
	subs   map[*Subscription]struct{}
}

// New builds a bus for cfg.Driver.
func New(cfg Config, logger watermill.LoggerAdapter) (*Bus, error) {
	if logger == nil {
		logger = logging.NewWatermillLogger()
	}

	switch strings.ToLower(cfg.Driver) {
	case "", DriverGoChannel:
		ps := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            cfg.OutputBuffer,
			BlockPublishUntilSubscriberAck: true,
		}, logger)
		return NewWithPubSub(ps, ps, logger), nil
	case DriverNATS:
		pub, sub, err := newNATSPubSub(cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewWithPubSub(pub, sub, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// NewWithPubSub builds a bus over an existing Watermill publisher and subscriber.
func NewWithPubSub(pub message.Publisher, sub message.Subscriber, logger watermill.LoggerAdapter) *Bus {
	return &Bus{
		pub:    pub,
		sub:    sub,
		logger: logger,
		subs:   make(map[*Subscription]struct{}),
	}
}

// PublishCollectStart announces that the task identified by key started collecting.
func (b *Bus) PublishCollectStart(ctx context.Context, key models.QueryKey) error {
	return b.PublishCollect(ctx, NewCollectEvent(CollectStart, key))
}

// PublishCollectStop announces that the task identified by key stopped collecting.
func (b *Bus) PublishCollectStop(ctx context.Context, key models.QueryKey) error {
	return b.PublishCollect(ctx, NewCollectEvent(CollectStop, key))
}

// PublishCollect publishes ev on the lifecycle topic.
func (b *Bus) PublishCollect(ctx context.Context, ev *CollectEvent) error {
	data, err := Marshal(ev)
	if err != nil {
		return err
	}
	msg := message.NewMessage(ev.EventID, data)
	msg.Metadata.Set("type", string(ev.Type))
	msg.Metadata.Set("query_key", ev.Key.String())
	return b.publish(ctx, TopicCollectLifecycle, msg)
}

// PublishShowHistory publishes ev on the history topic.
func (b *Bus) PublishShowHistory(ctx context.Context, ev *ShowHistoryEvent) error {
	data, err := Marshal(ev)
	if err != nil {
		return err
	}
	return b.publish(ctx, TopicShowHistory, message.NewMessage(ev.EventID, data))
}

func (b *Bus) publish(ctx context.Context, topic string, msg *message.Message) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrBusClosed
	}

	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("correlation_id", id)
	}
	if err := b.pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	metrics.BusEventsPublished.WithLabelValues(topic).Inc()
	return nil
}

// SubscribeCollect delivers start and stop signals for key to l. Signals for
// other keys are dropped before they reach the listener. ctx bounds the life
// of the subscription.
func (b *Bus) SubscribeCollect(ctx context.Context, key models.QueryKey, l CollectListener) (*Subscription, error) {
	return b.subscribe(ctx, TopicCollectLifecycle, func(ctx context.Context, payload []byte) string {
		ev, err := UnmarshalCollect(payload)
		if err != nil {
			b.logger.Error("Dropping malformed lifecycle event", err, watermill.LogFields{"query_key": key.String()})
			return "invalid"
		}
		if ev.Key != key {
			return "filtered"
		}
		switch ev.Type {
		case CollectStart:
			l.OnCollectStart(ctx, ev)
		case CollectStop:
			l.OnCollectStop(ctx, ev)
		}
		return "handled"
	})
}

// SubscribeHistory delivers every show-history request to l.
func (b *Bus) SubscribeHistory(ctx context.Context, l HistoryListener) (*Subscription, error) {
	return b.subscribe(ctx, TopicShowHistory, func(ctx context.Context, payload []byte) string {
		ev, err := UnmarshalShowHistory(payload)
		if err != nil {
			b.logger.Error("Dropping malformed history event", err, nil)
			return "invalid"
		}
		l.OnShowHistory(ctx, ev)
		return "handled"
	})
}

func (b *Bus) subscribe(ctx context.Context, topic string, handle func(context.Context, []byte) string) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}

	subCtx, cancel := context.WithCancel(ctx)
	msgs, err := b.sub.Subscribe(subCtx, topic)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	s := &Subscription{
		topic:  topic,
		cancel: cancel,
		done:   make(chan struct{}),
		bus:    b,
	}
	b.subs[s] = struct{}{}
	go s.dispatch(subCtx, msgs, handle)
	return s, nil
}

func (b *Bus) forget(s *Subscription) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
}

// Close closes every open subscription and then the driver.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	open := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		open = append(open, s)
	}
	b.mu.Unlock()

	for _, s := range open {
		_ = s.Close()
	}

	err := b.pub.Close()
	if any(b.sub) != any(b.pub) {
		if subErr := b.sub.Close(); err == nil {
			err = subErr
		}
	}
	return err
}

// Subscription is a registered listener. Close must not be called from
// inside the listener it closes.
type Subscription struct {
	topic  string
	cancel context.CancelFunc
	done   chan struct{}
	bus    *Bus
	once   sync.Once
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() string {
	return s.topic
}

// Close stops delivery and waits for an in-progress callback to return.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
		s.bus.forget(s)
	})
	return nil
}

func (s *Subscription) dispatch(ctx context.Context, msgs <-chan *message.Message, handle func(context.Context, []byte) string) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			// Ack on receipt so a publisher is released before a slow listener runs.
			msg.Ack()

			msgCtx := logging.ContextWithNewCorrelationID(ctx)
			if id := msg.Metadata.Get("correlation_id"); id != "" {
				msgCtx = logging.ContextWithCorrelationID(ctx, id)
			}
			result := handle(msgCtx, msg.Payload)
			metrics.BusEventsDelivered.WithLabelValues(s.topic, result).Inc()
		}
	}
}
