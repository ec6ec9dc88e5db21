package app

import (
	"context"
	"testing"
	"time"

	"social_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/assert"
)

func collectViews(ch <-chan domain.MessageView, n int, timeout time.Duration) []domain.MessageView {
	deadline := time.After(timeout)
	var got []domain.MessageView
	for len(got) < n {
		select {
		case v := <-ch:
			got = append(got, v)
		case <-deadline:
			return got
		}
	}
	return got
}

func TestLocalHub_PublishReachesSubscribers(t *testing.T) {
	ctx := context.Background()
	hub := NewLocalHub()
	defer hub.Close()

	recvA := make(chan domain.MessageView, 8)
	recvB := make(chan domain.MessageView, 8)

	unsubA, err := hub.Subscribe(ctx, 7, func(v domain.MessageView) { recvA <- v })
	assert.NoError(t, err)
	defer unsubA()
	unsubB, err := hub.Subscribe(ctx, 7, func(v domain.MessageView) { recvB <- v })
	assert.NoError(t, err)
	defer unsubB()

	assert.NoError(t, hub.Publish(ctx, 7, domain.MessageView{ID: 1, ConversationID: 7, Content: "hi"}))

	gotA := collectViews(recvA, 1, time.Second)
	gotB := collectViews(recvB, 1, time.Second)
	assert.Len(t, gotA, 1)
	assert.Len(t, gotB, 1)
	assert.Equal(t, "hi", gotA[0].Content)
}

func TestLocalHub_TopicsAreIsolated(t *testing.T) {
	ctx := context.Background()
	hub := NewLocalHub()
	defer hub.Close()

	recv := make(chan domain.MessageView, 8)
	unsub, err := hub.Subscribe(ctx, 7, func(v domain.MessageView) { recv <- v })
	assert.NoError(t, err)
	defer unsub()

	assert.NoError(t, hub.Publish(ctx, 8, domain.MessageView{ID: 1, ConversationID: 8}))

	got := collectViews(recv, 1, 100*time.Millisecond)
	assert.Empty(t, got)
}

// no replay: a publish before Subscribe is never seen
func TestLocalHub_NoReplay(t *testing.T) {
	ctx := context.Background()
	hub := NewLocalHub()
	defer hub.Close()

	assert.NoError(t, hub.Publish(ctx, 7, domain.MessageView{ID: 1, ConversationID: 7}))

	recv := make(chan domain.MessageView, 8)
	unsub, err := hub.Subscribe(ctx, 7, func(v domain.MessageView) { recv <- v })
	assert.NoError(t, err)
	defer unsub()

	got := collectViews(recv, 1, 100*time.Millisecond)
	assert.Empty(t, got)
}

func TestLocalHub_PerTopicOrder(t *testing.T) {
	ctx := context.Background()
	hub := NewLocalHub()
	defer hub.Close()

	recv := make(chan domain.MessageView, subscriberBuffer)
	unsub, err := hub.Subscribe(ctx, 7, func(v domain.MessageView) { recv <- v })
	assert.NoError(t, err)
	defer unsub()

	for i := int64(1); i <= 10; i++ {
		assert.NoError(t, hub.Publish(ctx, 7, domain.MessageView{ID: i, ConversationID: 7}))
	}

	got := collectViews(recv, 10, time.Second)
	assert.Len(t, got, 10)
	for i, v := range got {
		assert.Equal(t, int64(i+1), v.ID)
	}
}

func TestLocalHub_UnsubscribeStopsDelivery(t *testing.T) {
	ctx := context.Background()
	hub := NewLocalHub()
	defer hub.Close()

	recv := make(chan domain.MessageView, 8)
	unsub, err := hub.Subscribe(ctx, 7, func(v domain.MessageView) { recv <- v })
	assert.NoError(t, err)

	unsub()
	// calling it again must be a harmless no-op
	unsub()

	assert.NoError(t, hub.Publish(ctx, 7, domain.MessageView{ID: 1, ConversationID: 7}))

	got := collectViews(recv, 1, 100*time.Millisecond)
	assert.Empty(t, got)
}

// a subscriber with a full queue loses messages, the others still receive
func TestLocalHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	hub := NewLocalHub()
	defer hub.Close()

	block := make(chan struct{})
	unsubSlow, err := hub.Subscribe(ctx, 7, func(v domain.MessageView) { <-block })
	assert.NoError(t, err)
	defer unsubSlow()

	recv := make(chan domain.MessageView, 2*subscriberBuffer)
	unsubFast, err := hub.Subscribe(ctx, 7, func(v domain.MessageView) { recv <- v })
	assert.NoError(t, err)
	defer unsubFast()

	total := subscriberBuffer + 16
	done := make(chan struct{})
	go func() {
		for i := 0; i < total; i++ {
			hub.Publish(ctx, 7, domain.MessageView{ID: int64(i), ConversationID: 7})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	close(block)

	got := collectViews(recv, total, 2*time.Second)
	assert.Len(t, got, total)
}

func TestLocalHub_SubscribeAfterClose(t *testing.T) {
	ctx := context.Background()
	hub := NewLocalHub()
	hub.Close()

	recv := make(chan domain.MessageView, 1)
	unsub, err := hub.Subscribe(ctx, 7, func(v domain.MessageView) { recv <- v })
	assert.NoError(t, err)
	unsub()

	assert.NoError(t, hub.Publish(ctx, 7, domain.MessageView{ID: 1}))
	got := collectViews(recv, 1, 100*time.Millisecond)
	assert.Empty(t, got)
}
