package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"social_chat_service/internal/chat/domain"
	errprocess "social_chat_service/pkg/err"
	"social_chat_service/pkg/logger"
)

// RedisPubSub definition redis pub/sub backbone for conversation topics,
// lets websocket sessions on any node receive publishes from any node
type RedisPubSub struct {
	client *redis.Client
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{client: client}
}

func topicChannel(conversationID int64) string {
	return fmt.Sprintf("chat:room:%d", conversationID)
}

// Publish serialize the message view and publish it on the conversation topic
func (r *RedisPubSub) Publish(ctx context.Context, conversationID int64, view domain.MessageView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return errprocess.Set(fmt.Sprintf("marshal message %d: %v", view.ID, err))
	}
	if err := r.client.Publish(ctx, topicChannel(conversationID), data).Err(); err != nil {
		return errprocess.Set(fmt.Sprintf("publish to %s: %v", topicChannel(conversationID), err))
	}
	return nil
}

// Subscribe register handler on the conversation topic until the returned
// unsubscribe is called or ctx is cancelled. Unsubscribe is idempotent.
func (r *RedisPubSub) Subscribe(ctx context.Context, conversationID int64, handler func(view domain.MessageView)) (func(), error) {
	sub := r.client.Subscribe(ctx, topicChannel(conversationID))

	subCtx, cancel := context.WithCancel(ctx)
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			if err := sub.Close(); err != nil {
				logger.Log.Warn("pubsub close", zap.Int64("conversation_id", conversationID), zap.Error(err))
			}
		})
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}
				var view domain.MessageView
				if err := json.Unmarshal([]byte(m.Payload), &view); err != nil {
					logger.Log.Error("pubsub payload unmarshal",
						zap.Int64("conversation_id", conversationID), zap.Error(err))
					continue
				}
				handler(view)
			case <-subCtx.Done():
				unsubscribe()
				return
			}
		}
	}()

	return unsubscribe, nil
}

// Close release the underlying client connection
func (r *RedisPubSub) Close() error {
	return r.client.Close()
}
