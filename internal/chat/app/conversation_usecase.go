package app

import (
	"context"
	"strings"

	"social_chat_service/internal/chat/domain"
	"social_chat_service/internal/chat/repository"
	"social_chat_service/pkg"
)

// ConversationUseCase creates and finds conversations and owns participant
// bootstrap. Direct (1:1) conversations are deduplicated per unordered pair.
type ConversationUseCase struct {
	convRepo        repository.ConversationRepository
	participantRepo repository.ParticipantRepository
	memberRepo      repository.MemberRepository
	msgRepo         repository.MessageRepository
}

// NewConversationUseCase init conversation use case
func NewConversationUseCase(
	convRepo repository.ConversationRepository,
	participantRepo repository.ParticipantRepository,
	memberRepo repository.MemberRepository,
	msgRepo repository.MessageRepository,
) *ConversationUseCase {
	return &ConversationUseCase{
		convRepo:        convRepo,
		participantRepo: participantRepo,
		memberRepo:      memberRepo,
		msgRepo:         msgRepo,
	}
}

// FindOrCreateDirect return the direct conversation for the pair, creating it
// when absent. created reports whether this call made it.
func (uc *ConversationUseCase) FindOrCreateDirect(ctx context.Context, userA, userB int64) (*domain.Conversation, bool, error) {
	if userA == userB {
		return nil, false, domain.ErrInvalidParticipants
	}

	active, err := uc.memberRepo.FindActiveByIDs(ctx, []int64{userA, userB})
	if err != nil {
		return nil, false, err
	}
	if len(active) != 2 {
		return nil, false, domain.ErrInvalidParticipants
	}

	return uc.convRepo.FindOrCreateDirect(ctx, userA, userB)
}

// StartDirectByUsername resolve an active member by username
// (case-insensitive) and find-or-create the direct conversation with them
func (uc *ConversationUseCase) StartDirectByUsername(ctx context.Context, requesterID int64, username string) (*domain.Conversation, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, false, domain.ErrInvalidParticipants
	}

	target, err := uc.memberRepo.FindActiveByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	if target == nil || target.ID == requesterID {
		return nil, false, domain.ErrInvalidParticipants
	}

	return uc.FindOrCreateDirect(ctx, requesterID, target.ID)
}

// CreateGroup create a group conversation. Set semantics: the creator is
// always included, duplicates collapse, and every id must be an active member.
func (uc *ConversationUseCase) CreateGroup(ctx context.Context, creatorID int64, otherIDs []int64, title string) (*domain.Conversation, error) {
	memberIDs := pkg.Dedup(append([]int64{creatorID}, otherIDs...))
	if len(memberIDs) < 2 {
		return nil, domain.ErrInvalidParticipants
	}

	active, err := uc.memberRepo.FindActiveByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	if len(active) != len(memberIDs) {
		return nil, domain.ErrInvalidParticipants
	}

	return uc.convRepo.CreateGroup(ctx, strings.TrimSpace(title), memberIDs)
}

// AddParticipants idempotent bulk insert, existing pairs are silently kept
func (uc *ConversationUseCase) AddParticipants(ctx context.Context, conversationID int64, userIDs []int64) error {
	if _, err := uc.convRepo.FindByID(ctx, conversationID); err != nil {
		return err
	}
	return uc.convRepo.AddParticipants(ctx, conversationID, pkg.Dedup(userIDs))
}

// ListForUser the requester's conversations with participants, last message
// and unread count, most recently active first
func (uc *ConversationUseCase) ListForUser(ctx context.Context, userID int64) ([]domain.ConversationSummary, error) {
	convs, err := uc.convRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summary := domain.ConversationSummary{Conversation: conv}

		participantIDs, err := uc.participantRepo.ListParticipants(ctx, conv.ID)
		if err != nil {
			return nil, err
		}
		members, err := uc.memberRepo.FindByIDs(ctx, participantIDs)
		if err != nil {
			return nil, err
		}
		for _, id := range participantIDs {
			sender := domain.Sender{ID: id}
			if m, ok := members[id]; ok {
				sender.Username = m.Username
				sender.FullName = m.FullName()
				sender.Avatar = m.AvatarURL
			}
			summary.Participants = append(summary.Participants, sender)
		}

		last, err := uc.msgRepo.FindLast(ctx, conv.ID)
		if err != nil {
			return nil, err
		}
		if last != nil {
			sender := domain.Sender{ID: last.SenderID}
			if m, ok := members[last.SenderID]; ok {
				sender.Username = m.Username
				sender.FullName = m.FullName()
				sender.Avatar = m.AvatarURL
			}
			summary.LastMessage = &domain.MessageView{
				ID:             last.ID,
				ConversationID: last.ConversationID,
				Sender:         sender,
				Content:        last.Content,
				CreatedAt:      last.CreatedAt,
				Edited:         last.Edited,
				Deleted:        last.Deleted,
			}
		}

		unread, err := uc.participantRepo.CountUnreadSince(ctx, conv.ID, userID)
		if err != nil {
			return nil, err
		}
		summary.UnreadCount = unread

		summaries = append(summaries, summary)
	}
	return summaries, nil
}
