package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"social_chat_service/internal/chat/domain"
	"social_chat_service/internal/chat/repository"
	"social_chat_service/pkg/logger"
)

const (
	// defaultHistoryLimit page size when the caller does not ask for one
	defaultHistoryLimit = 50
	// maxHistoryLimit hard cap on a single history page
	maxHistoryLimit = 200
)

// MessageUseCase coordinates the send path and the history read path.
// Sends from HTTP and from websocket sessions both go through Send.
type MessageUseCase struct {
	participantRepo repository.ParticipantRepository
	msgRepo         repository.MessageRepository
	memberRepo      repository.MemberRepository
	broadcaster     Broadcaster
	eventWriter     *kafka.Writer
}

// NewMessageUseCase init message use case. eventWriter may be nil when no
// kafka feed is configured.
func NewMessageUseCase(
	participantRepo repository.ParticipantRepository,
	msgRepo repository.MessageRepository,
	memberRepo repository.MemberRepository,
	broadcaster Broadcaster,
	eventWriter *kafka.Writer,
) *MessageUseCase {
	return &MessageUseCase{
		participantRepo: participantRepo,
		msgRepo:         msgRepo,
		memberRepo:      memberRepo,
		broadcaster:     broadcaster,
		eventWriter:     eventWriter,
	}
}

// Send validate, persist, advance the sender's watermark and fan out.
// Persistence is authoritative: broadcast and event-feed failures are logged
// and never surfaced, the persisted message is returned regardless.
func (uc *MessageUseCase) Send(ctx context.Context, conversationID, senderID int64, rawContent string) (*domain.MessageView, error) {
	isMember, err := uc.participantRepo.IsParticipant(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, domain.ErrNotParticipant
	}

	content := strings.TrimSpace(rawContent)
	if content == "" {
		return nil, domain.ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > domain.MaxMessageLength {
		return nil, domain.ErrMessageTooLong
	}

	msg, err := uc.msgRepo.Append(ctx, conversationID, senderID, content)
	if err != nil {
		return nil, err
	}

	// Sending implies having read up to and including your own message.
	if err := uc.participantRepo.SetLastRead(ctx, conversationID, senderID, msg.CreatedAt); err != nil {
		logger.Log.Error("advance sender watermark",
			zap.Int64("conversation_id", conversationID), zap.Int64("sender_id", senderID), zap.Error(err))
	}

	views, err := uc.serialize(ctx, []domain.Message{*msg})
	if err != nil {
		return nil, err
	}
	view := views[0]

	if uc.broadcaster != nil {
		if err := uc.broadcaster.Publish(ctx, conversationID, view); err != nil {
			logger.Log.Error("broadcast publish",
				zap.Int64("conversation_id", conversationID), zap.Int64("message_id", view.ID), zap.Error(err))
		}
	}
	uc.emitEvent(ctx, view)

	return &view, nil
}

// ListMessages history page for a participant, oldest to newest. Viewing
// implies reading: the requester's watermark moves to now.
func (uc *MessageUseCase) ListMessages(ctx context.Context, conversationID, requesterID int64, limit int, before *time.Time) ([]domain.MessageView, error) {
	isMember, err := uc.participantRepo.IsParticipant(ctx, conversationID, requesterID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, domain.ErrNotParticipant
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	messages, err := uc.msgRepo.FindMessagesBefore(ctx, conversationID, limit, before)
	if err != nil {
		return nil, err
	}

	if err := uc.participantRepo.SetLastRead(ctx, conversationID, requesterID, time.Now()); err != nil {
		logger.Log.Error("advance reader watermark",
			zap.Int64("conversation_id", conversationID), zap.Int64("user_id", requesterID), zap.Error(err))
	}

	return uc.serialize(ctx, messages)
}

// MarkRead move the member's watermark to now
func (uc *MessageUseCase) MarkRead(ctx context.Context, conversationID, userID int64) error {
	isMember, err := uc.participantRepo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return domain.ErrNotParticipant
	}
	return uc.participantRepo.SetLastRead(ctx, conversationID, userID, time.Now())
}

// serialize resolve senders with one batched directory lookup, no per-message
// traversal
func (uc *MessageUseCase) serialize(ctx context.Context, messages []domain.Message) ([]domain.MessageView, error) {
	senderIDs := make([]int64, 0, len(messages))
	seen := make(map[int64]struct{}, len(messages))
	for _, msg := range messages {
		if _, ok := seen[msg.SenderID]; ok {
			continue
		}
		seen[msg.SenderID] = struct{}{}
		senderIDs = append(senderIDs, msg.SenderID)
	}

	members, err := uc.memberRepo.FindByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}

	views := make([]domain.MessageView, 0, len(messages))
	for _, msg := range messages {
		sender := domain.Sender{ID: msg.SenderID}
		if m, ok := members[msg.SenderID]; ok {
			sender.Username = m.Username
			sender.FullName = m.FullName()
			sender.Avatar = m.AvatarURL
		}
		views = append(views, domain.MessageView{
			ID:             msg.ID,
			ConversationID: msg.ConversationID,
			Sender:         sender,
			Content:        msg.Content,
			CreatedAt:      msg.CreatedAt,
			Edited:         msg.Edited,
			Deleted:        msg.Deleted,
		})
	}
	return views, nil
}

// emitEvent best-effort copy of the message onto the kafka feed for
// downstream notification and analytics consumers
func (uc *MessageUseCase) emitEvent(ctx context.Context, view domain.MessageView) {
	if uc.eventWriter == nil {
		return
	}

	data, err := json.Marshal(view)
	if err != nil {
		logger.Log.Error("event encode", zap.Int64("message_id", view.ID), zap.Error(err))
		return
	}
	err = uc.eventWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(view.ConversationID, 10)),
		Value: data,
	})
	if err != nil {
		logger.Log.Error("event write",
			zap.Int64("conversation_id", view.ConversationID), zap.Int64("message_id", view.ID), zap.Error(err))
	}
}
