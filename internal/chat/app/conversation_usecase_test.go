package app

import (
	"context"
	"testing"
	"time"

	"social_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestConversationUseCase_FindOrCreateDirect(t *testing.T) {
	ctx := context.Background()

	mockConvRepo := new(MockConversationRepository)
	mockMemberRepo := new(MockMemberRepository)

	mockMemberRepo.On("FindActiveByIDs", ctx, []int64{1, 2}).Return([]domain.Member{
		{ID: 1, Username: "alice", IsActive: true},
		{ID: 2, Username: "bob", IsActive: true},
	}, nil)
	mockConvRepo.On("FindOrCreateDirect", ctx, int64(1), int64(2)).
		Return(&domain.Conversation{ID: 10, IsGroup: false}, true, nil)

	uc := NewConversationUseCase(mockConvRepo, new(MockParticipantRepository), mockMemberRepo, new(MockMessageRepository))
	conv, created, err := uc.FindOrCreateDirect(ctx, 1, 2)

	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(10), conv.ID)
	assert.False(t, conv.IsGroup)

	mockConvRepo.AssertExpectations(t)
	mockMemberRepo.AssertExpectations(t)
}

func TestConversationUseCase_FindOrCreateDirect_SelfPair(t *testing.T) {
	ctx := context.Background()

	uc := NewConversationUseCase(new(MockConversationRepository), new(MockParticipantRepository),
		new(MockMemberRepository), new(MockMessageRepository))
	_, _, err := uc.FindOrCreateDirect(ctx, 5, 5)

	assert.ErrorIs(t, err, domain.ErrInvalidParticipants)
}

func TestConversationUseCase_FindOrCreateDirect_InactiveMember(t *testing.T) {
	ctx := context.Background()

	mockMemberRepo := new(MockMemberRepository)
	// only one of the pair resolves as active
	mockMemberRepo.On("FindActiveByIDs", ctx, []int64{1, 2}).Return([]domain.Member{
		{ID: 1, Username: "alice", IsActive: true},
	}, nil)

	uc := NewConversationUseCase(new(MockConversationRepository), new(MockParticipantRepository),
		mockMemberRepo, new(MockMessageRepository))
	_, _, err := uc.FindOrCreateDirect(ctx, 1, 2)

	assert.ErrorIs(t, err, domain.ErrInvalidParticipants)
}

func TestConversationUseCase_StartDirectByUsername(t *testing.T) {
	ctx := context.Background()

	mockConvRepo := new(MockConversationRepository)
	mockMemberRepo := new(MockMemberRepository)

	mockMemberRepo.On("FindActiveByUsername", ctx, "bob").Return(&domain.Member{
		ID: 2, Username: "bob", IsActive: true,
	}, nil)
	mockMemberRepo.On("FindActiveByIDs", ctx, []int64{1, 2}).Return([]domain.Member{
		{ID: 1, IsActive: true}, {ID: 2, IsActive: true},
	}, nil)
	mockConvRepo.On("FindOrCreateDirect", ctx, int64(1), int64(2)).
		Return(&domain.Conversation{ID: 10}, false, nil)

	uc := NewConversationUseCase(mockConvRepo, new(MockParticipantRepository), mockMemberRepo, new(MockMessageRepository))
	conv, created, err := uc.StartDirectByUsername(ctx, 1, "  bob ")

	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(10), conv.ID)
}

func TestConversationUseCase_StartDirectByUsername_Self(t *testing.T) {
	ctx := context.Background()

	mockMemberRepo := new(MockMemberRepository)
	mockMemberRepo.On("FindActiveByUsername", ctx, "alice").Return(&domain.Member{
		ID: 1, Username: "alice", IsActive: true,
	}, nil)

	uc := NewConversationUseCase(new(MockConversationRepository), new(MockParticipantRepository),
		mockMemberRepo, new(MockMessageRepository))
	_, _, err := uc.StartDirectByUsername(ctx, 1, "alice")

	assert.ErrorIs(t, err, domain.ErrInvalidParticipants)
}

func TestConversationUseCase_CreateGroup(t *testing.T) {
	ctx := context.Background()

	mockConvRepo := new(MockConversationRepository)
	mockMemberRepo := new(MockMemberRepository)

	// the creator is added and duplicates collapse: {1} + [2, 2, 3] -> {1,2,3}
	mockMemberRepo.On("FindActiveByIDs", ctx, []int64{1, 2, 3}).Return([]domain.Member{
		{ID: 1, IsActive: true}, {ID: 2, IsActive: true}, {ID: 3, IsActive: true},
	}, nil)
	mockConvRepo.On("CreateGroup", ctx, "team", []int64{1, 2, 3}).
		Return(&domain.Conversation{ID: 20, Title: "team", IsGroup: true}, nil)

	uc := NewConversationUseCase(mockConvRepo, new(MockParticipantRepository), mockMemberRepo, new(MockMessageRepository))
	conv, err := uc.CreateGroup(ctx, 1, []int64{2, 2, 3}, " team ")

	assert.NoError(t, err)
	assert.True(t, conv.IsGroup)
	assert.Equal(t, "team", conv.Title)
	mockConvRepo.AssertExpectations(t)
}

func TestConversationUseCase_CreateGroup_OnlyCreator(t *testing.T) {
	ctx := context.Background()

	uc := NewConversationUseCase(new(MockConversationRepository), new(MockParticipantRepository),
		new(MockMemberRepository), new(MockMessageRepository))
	_, err := uc.CreateGroup(ctx, 1, []int64{1, 1}, "solo")

	assert.ErrorIs(t, err, domain.ErrInvalidParticipants)
}

func TestConversationUseCase_CreateGroup_InactiveMember(t *testing.T) {
	ctx := context.Background()

	mockMemberRepo := new(MockMemberRepository)
	mockMemberRepo.On("FindActiveByIDs", ctx, []int64{1, 2, 3}).Return([]domain.Member{
		{ID: 1, IsActive: true}, {ID: 2, IsActive: true},
	}, nil)

	uc := NewConversationUseCase(new(MockConversationRepository), new(MockParticipantRepository),
		mockMemberRepo, new(MockMessageRepository))
	_, err := uc.CreateGroup(ctx, 1, []int64{2, 3}, "team")

	assert.ErrorIs(t, err, domain.ErrInvalidParticipants)
}

func TestConversationUseCase_AddParticipants(t *testing.T) {
	ctx := context.Background()

	mockConvRepo := new(MockConversationRepository)
	mockConvRepo.On("FindByID", ctx, int64(10)).Return(&domain.Conversation{ID: 10, IsGroup: true}, nil)
	mockConvRepo.On("AddParticipants", ctx, int64(10), []int64{4, 5}).Return(nil)

	uc := NewConversationUseCase(mockConvRepo, new(MockParticipantRepository),
		new(MockMemberRepository), new(MockMessageRepository))
	err := uc.AddParticipants(ctx, 10, []int64{4, 5, 4})

	assert.NoError(t, err)
	mockConvRepo.AssertExpectations(t)
}

func TestConversationUseCase_AddParticipants_UnknownConversation(t *testing.T) {
	ctx := context.Background()

	mockConvRepo := new(MockConversationRepository)
	mockConvRepo.On("FindByID", ctx, int64(99)).Return(nil, domain.ErrConversationNotFound)

	uc := NewConversationUseCase(mockConvRepo, new(MockParticipantRepository),
		new(MockMemberRepository), new(MockMessageRepository))
	err := uc.AddParticipants(ctx, 99, []int64{4})

	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	mockConvRepo.AssertNotCalled(t, "AddParticipants", mock.Anything, mock.Anything, mock.Anything)
}

func TestConversationUseCase_ListForUser(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	mockConvRepo := new(MockConversationRepository)
	mockParticipantRepo := new(MockParticipantRepository)
	mockMemberRepo := new(MockMemberRepository)
	mockMsgRepo := new(MockMessageRepository)

	mockConvRepo.On("ListForUser", ctx, int64(1)).Return([]domain.Conversation{
		{ID: 10, IsGroup: false, CreatedAt: now},
	}, nil)
	mockParticipantRepo.On("ListParticipants", ctx, int64(10)).Return([]int64{1, 2}, nil)
	mockMemberRepo.On("FindByIDs", ctx, []int64{1, 2}).Return(map[int64]domain.Member{
		1: {ID: 1, Username: "alice"},
		2: {ID: 2, Username: "bob"},
	}, nil)
	mockMsgRepo.On("FindLast", ctx, int64(10)).Return(&domain.Message{
		ID: 5, ConversationID: 10, SenderID: 2, Content: "last one", CreatedAt: now,
	}, nil)
	mockParticipantRepo.On("CountUnreadSince", ctx, int64(10), int64(1)).Return(3, nil)

	uc := NewConversationUseCase(mockConvRepo, mockParticipantRepo, mockMemberRepo, mockMsgRepo)
	summaries, err := uc.ListForUser(ctx, 1)

	assert.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Len(t, summaries[0].Participants, 2)
	assert.Equal(t, "bob", summaries[0].LastMessage.Sender.Username)
	assert.Equal(t, "last one", summaries[0].LastMessage.Content)
	assert.Equal(t, 3, summaries[0].UnreadCount)
}

func TestConversationUseCase_ListForUser_EmptyConversation(t *testing.T) {
	ctx := context.Background()

	mockConvRepo := new(MockConversationRepository)
	mockParticipantRepo := new(MockParticipantRepository)
	mockMemberRepo := new(MockMemberRepository)
	mockMsgRepo := new(MockMessageRepository)

	mockConvRepo.On("ListForUser", ctx, int64(1)).Return([]domain.Conversation{{ID: 10}}, nil)
	mockParticipantRepo.On("ListParticipants", ctx, int64(10)).Return([]int64{1, 2}, nil)
	mockMemberRepo.On("FindByIDs", ctx, []int64{1, 2}).Return(map[int64]domain.Member{}, nil)
	mockMsgRepo.On("FindLast", ctx, int64(10)).Return(nil, nil)
	mockParticipantRepo.On("CountUnreadSince", ctx, int64(10), int64(1)).Return(0, nil)

	uc := NewConversationUseCase(mockConvRepo, mockParticipantRepo, mockMemberRepo, mockMsgRepo)
	summaries, err := uc.ListForUser(ctx, 1)

	assert.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Nil(t, summaries[0].LastMessage)
	assert.Zero(t, summaries[0].UnreadCount)
}
