// Package broker fans mutation events out to subscribers. Publishing never
// blocks on a slow consumer: each subscriber owns a bounded queue that drops
// its oldest pending event on overflow. Events for one subscriber are always
// delivered in publish order.
package broker

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hanpama/snapgraph/internal/eventbus"
	"github.com/hanpama/snapgraph/internal/events"
)

// Topics correspond to the subscription root fields.
const (
	TopicNewPhoto      = "newPhoto"
	TopicNewUser       = "newUser"
	TopicNewFriendship = "newFriendship"
)

// DefaultQueueSize bounds a subscriber's pending events.
const DefaultQueueSize = 16

// Event is one published occurrence delivered to a subscriber.
type Event struct {
	Topic   string
	Payload any
}

// Filter decides per subscriber whether a payload is delivered. A nil filter
// accepts everything.
type Filter func(payload any) bool

// Subscription is one registration on a topic. Events arrives in publish
// order; the channel is closed after Close or context cancellation.
type Subscription struct {
	ID    string
	Topic string

	ch     chan Event
	broker *Broker
	once   sync.Once
}

// Events returns the delivery channel.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Close deregisters the subscription immediately. Events published after
// Close returns are not delivered.
func (s *Subscription) Close() {
	s.once.Do(func() { s.broker.remove(s) })
}

type subscriber struct {
	sub    *Subscription
	filter Filter
}

// Broker is the in-process fan-out hub between the mutation coordinator and
// subscription transports.
type Broker struct {
	mu        sync.Mutex
	topics    map[string]map[string]*subscriber
	queueSize int
	log       zerolog.Logger
}

func New(queueSize int, log zerolog.Logger) *Broker {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Broker{
		topics:    make(map[string]map[string]*subscriber),
		queueSize: queueSize,
		log:       log,
	}
}

// Subscribe registers on a topic. The subscription deregisters itself when
// ctx is canceled, or earlier via Close.
func (b *Broker) Subscribe(ctx context.Context, topic string, filter Filter) *Subscription {
	sub := &Subscription{
		ID:     uuid.NewString(),
		Topic:  topic,
		ch:     make(chan Event, b.queueSize),
		broker: b,
	}

	b.mu.Lock()
	byID := b.topics[topic]
	if byID == nil {
		byID = make(map[string]*subscriber)
		b.topics[topic] = byID
	}
	byID[sub.ID] = &subscriber{sub: sub, filter: filter}
	b.mu.Unlock()

	b.log.Debug().Str("subscription", sub.ID).Str("topic", topic).Msg("subscribed")

	go func() {
		<-ctx.Done()
		sub.Close()
	}()
	return sub
}

// Publish delivers the payload to every matching subscriber of the topic.
// It never blocks: a full subscriber queue evicts its oldest pending event
// to make room.
func (b *Broker) Publish(ctx context.Context, topic string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.topics[topic] {
		if s.filter != nil && !s.filter(payload) {
			continue
		}
		ev := Event{Topic: topic, Payload: payload}
		select {
		case s.sub.ch <- ev:
		default:
			// Queue full: evict the oldest pending event, then retry once.
			select {
			case <-s.sub.ch:
				b.log.Warn().
					Str("subscription", s.sub.ID).
					Str("topic", topic).
					Msg("subscriber queue full, dropped oldest event")
				eventbus.Publish(ctx, events.SubscriptionDropped{
					SubscriptionID: s.sub.ID,
					Topic:          topic,
				})
			default:
			}
			select {
			case s.sub.ch <- ev:
			default:
			}
		}
		eventbus.Publish(ctx, events.SubscriptionDelivered{
			SubscriptionID: s.sub.ID,
			Topic:          topic,
			QueueLen:       len(s.sub.ch),
		})
	}
}

// SubscriberCount reports the current registrations on a topic.
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[topic])
}

func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	if byID, ok := b.topics[sub.Topic]; ok {
		delete(byID, sub.ID)
		if len(byID) == 0 {
			delete(b.topics, sub.Topic)
		}
	}
	// Publish holds the same lock, so nothing can send after this close.
	close(sub.ch)
	b.mu.Unlock()

	b.log.Debug().Str("subscription", sub.ID).Str("topic", sub.Topic).Msg("unsubscribed")
}
