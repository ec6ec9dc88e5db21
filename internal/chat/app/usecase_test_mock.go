package app

import (
	"context"
	"time"

	"social_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

// MockConversationRepository Mock ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

// FindByID mock find conversation by id
func (m *MockConversationRepository) FindByID(ctx context.Context, conversationID int64) (*domain.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindOrCreateDirect mock direct conversation find-or-create
func (m *MockConversationRepository) FindOrCreateDirect(ctx context.Context, userA, userB int64) (*domain.Conversation, bool, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

// CreateGroup mock create group conversation
func (m *MockConversationRepository) CreateGroup(ctx context.Context, title string, memberIDs []int64) (*domain.Conversation, error) {
	args := m.Called(ctx, title, memberIDs)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// AddParticipants mock bulk participant insert
func (m *MockConversationRepository) AddParticipants(ctx context.Context, conversationID int64, userIDs []int64) error {
	args := m.Called(ctx, conversationID, userIDs)
	return args.Error(0)
}

// ListForUser mock list conversations for a member
func (m *MockConversationRepository) ListForUser(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockParticipantRepository Mock ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

// IsParticipant mock membership check
func (m *MockParticipantRepository) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Bool(0), args.Error(1)
}

// ListParticipants mock participant id listing
func (m *MockParticipantRepository) ListParticipants(ctx context.Context, conversationID int64) ([]int64, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).([]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

// SetLastRead mock watermark advance
func (m *MockParticipantRepository) SetLastRead(ctx context.Context, conversationID, userID int64, ts time.Time) error {
	args := m.Called(ctx, conversationID, userID, ts)
	return args.Error(0)
}

// CountUnreadSince mock unread count
func (m *MockParticipantRepository) CountUnreadSince(ctx context.Context, conversationID, userID int64) (int, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Int(0), args.Error(1)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Append mock message insert
func (m *MockMessageRepository) Append(ctx context.Context, conversationID, senderID int64, content string) (*domain.Message, error) {
	args := m.Called(ctx, conversationID, senderID, content)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindMessagesBefore mock history page
func (m *MockMessageRepository) FindMessagesBefore(ctx context.Context, conversationID int64, limit int, before *time.Time) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID, limit, before)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindLast mock newest message lookup
func (m *MockMessageRepository) FindLast(ctx context.Context, conversationID int64) (*domain.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMemberRepository Mock MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

// AutoMigrate mock member table migration
func (m *MockMemberRepository) AutoMigrate() error {
	args := m.Called()
	return args.Error(0)
}

// FindByIDs mock batched member lookup
func (m *MockMemberRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.Member, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).(map[int64]domain.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindActiveByIDs mock active member filter
func (m *MockMemberRepository) FindActiveByIDs(ctx context.Context, ids []int64) ([]domain.Member, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindActiveByUsername mock username lookup
func (m *MockMemberRepository) FindActiveByUsername(ctx context.Context, username string) (*domain.Member, error) {
	args := m.Called(ctx, username)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

// Create mock member insert
func (m *MockMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

// MockBroadcaster Mock Broadcaster
type MockBroadcaster struct {
	mock.Mock
}

// Publish mock fan-out publish
func (m *MockBroadcaster) Publish(ctx context.Context, conversationID int64, view domain.MessageView) error {
	args := m.Called(ctx, conversationID, view)
	return args.Error(0)
}

// Subscribe mock subscription
func (m *MockBroadcaster) Subscribe(ctx context.Context, conversationID int64, handler func(domain.MessageView)) (func(), error) {
	args := m.Called(ctx, conversationID, handler)
	if args.Get(0) != nil {
		return args.Get(0).(func()), args.Error(1)
	}
	return func() {}, args.Error(1)
}
