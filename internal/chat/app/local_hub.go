package app

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"social_chat_service/internal/chat/domain"
)

// Broadcaster definition topic pub/sub keyed by conversation id. Delivery is
// best-effort: publishes reach the handlers subscribed at the moment of the
// call, there is no replay, and a slow subscriber never blocks the others.
type Broadcaster interface {
	Publish(ctx context.Context, conversationID int64, view domain.MessageView) error
	Subscribe(ctx context.Context, conversationID int64, handler func(view domain.MessageView)) (func(), error)
}

// subscriberBuffer messages queued per subscriber before drops start
const subscriberBuffer = 64

type hubSubscriber struct {
	ch   chan domain.MessageView
	done chan struct{}
}

// LocalHub definition in-process Broadcaster for single-node runs and tests.
// Topics exist only while subscribers do.
type LocalHub struct {
	mu     sync.RWMutex
	topics map[int64]map[string]*hubSubscriber
	closed bool
}

// NewLocalHub create LocalHub
func NewLocalHub() *LocalHub {
	return &LocalHub{
		topics: make(map[int64]map[string]*hubSubscriber),
	}
}

// Subscribe register handler on the conversation topic. Each subscriber gets
// its own buffered queue drained by its own goroutine, so per-topic order is
// preserved and a stalled handler only ever loses its own messages.
func (h *LocalHub) Subscribe(ctx context.Context, conversationID int64, handler func(view domain.MessageView)) (func(), error) {
	sub := &hubSubscriber{
		ch:   make(chan domain.MessageView, subscriberBuffer),
		done: make(chan struct{}),
	}
	id := uuid.New().String()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.done)
		return func() {}, nil
	}
	topic, ok := h.topics[conversationID]
	if !ok {
		topic = make(map[string]*hubSubscriber)
		h.topics[conversationID] = topic
	}
	topic[id] = sub
	h.mu.Unlock()

	go func() {
		for {
			select {
			case view := <-sub.ch:
				handler(view)
			case <-sub.done:
				return
			case <-ctx.Done():
				h.remove(conversationID, id)
				return
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.remove(conversationID, id)
		})
	}
	return unsubscribe, nil
}

// Publish deliver view to every current subscriber of the topic. A full
// subscriber queue drops the message for that subscriber only.
func (h *LocalHub) Publish(_ context.Context, conversationID int64, view domain.MessageView) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.topics[conversationID] {
		select {
		case sub.ch <- view:
		default:
		}
	}
	return nil
}

// Close stop all subscribers, further subscribes become no-ops
func (h *LocalHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for _, topic := range h.topics {
		for _, sub := range topic {
			close(sub.done)
		}
	}
	h.topics = make(map[int64]map[string]*hubSubscriber)
}

func (h *LocalHub) remove(conversationID int64, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	topic, ok := h.topics[conversationID]
	if !ok {
		return
	}
	sub, ok := topic[id]
	if !ok {
		return
	}
	delete(topic, id)
	if len(topic) == 0 {
		delete(h.topics, conversationID)
	}
	close(sub.done)
}
