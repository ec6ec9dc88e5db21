package app

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"social_chat_service/internal/chat/domain"
	"social_chat_service/pkg/logger"
	"social_chat_service/pkg/middlewares"
)

// ChatHTTPHandler REST surface over the conversation and message use cases
type ChatHTTPHandler struct {
	convUC    *ConversationUseCase
	messageUC *MessageUseCase
}

// NewChatHTTPHandler create ChatHTTPHandler
func NewChatHTTPHandler(convUC *ConversationUseCase, messageUC *MessageUseCase) *ChatHTTPHandler {
	return &ChatHTTPHandler{
		convUC:    convUC,
		messageUC: messageUC,
	}
}

type createConversationReq struct {
	ParticipantIDs []int64 `json:"participant_ids"`
	Title          string  `json:"title"`
	ForceNew       bool    `json:"force_new"`
}

type startConversationReq struct {
	Username string `json:"username"`
}

type sendMessageReq struct {
	Content string `json:"content"`
}

// CreateConversation create or dedup a conversation
// @Summary Create a conversation
// @Description Two-party requests return the existing direct conversation when one exists
// @Tags Chat
// @Accept json
// @Param payload body createConversationReq true "participants"
// @Success 200 {object} domain.Conversation
// @Success 201 {object} domain.Conversation
// @Failure 400 {string} string "invalid participants"
// @Router /conversations [post]
func (h *ChatHTTPHandler) CreateConversation(c *fiber.Ctx) error {
	memberID, err := requestMemberID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member"})
	}

	var req createConversationReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	others := make([]int64, 0, len(req.ParticipantIDs))
	for _, id := range req.ParticipantIDs {
		if id != memberID {
			others = append(others, id)
		}
	}
	if len(others) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "add at least one other user"})
	}

	if len(others) == 1 && !req.ForceNew {
		conv, created, err := h.convUC.FindOrCreateDirect(c.Context(), memberID, others[0])
		if err != nil {
			return chatError(c, err)
		}
		status := fiber.StatusOK
		if created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(conv)
	}

	conv, err := h.convUC.CreateGroup(c.Context(), memberID, others, req.Title)
	if err != nil {
		return chatError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conv)
}

// StartConversation find-or-create a direct conversation by username
// @Summary Start a direct conversation
// @Tags Chat
// @Accept json
// @Param payload body startConversationReq true "target username"
// @Success 200 {object} domain.Conversation
// @Success 201 {object} domain.Conversation
// @Failure 400 {string} string "unknown username"
// @Router /conversations/start [post]
func (h *ChatHTTPHandler) StartConversation(c *fiber.Ctx) error {
	memberID, err := requestMemberID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member"})
	}

	var req startConversationReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	conv, created, err := h.convUC.StartDirectByUsername(c.Context(), memberID, req.Username)
	if err != nil {
		return chatError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(conv)
}

// ListConversations the requester's conversations, most recently active first
// @Summary List conversations
// @Tags Chat
// @Success 200 {array} domain.ConversationSummary
// @Router /conversations [get]
func (h *ChatHTTPHandler) ListConversations(c *fiber.Ctx) error {
	memberID, err := requestMemberID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member"})
	}

	summaries, err := h.convUC.ListForUser(c.Context(), memberID)
	if err != nil {
		return chatError(c, err)
	}
	return c.JSON(summaries)
}

// ListMessages history page, oldest to newest
// @Summary List conversation messages
// @Tags Chat
// @Param id path int true "conversation id"
// @Param limit query int false "page size, clamped to 1..200, default 50"
// @Param before query string false "RFC3339 timestamp, only older messages"
// @Success 200 {array} domain.MessageView
// @Failure 403 {string} string "not a participant"
// @Router /conversations/{id}/messages [get]
func (h *ChatHTTPHandler) ListMessages(c *fiber.Ctx) error {
	memberID, err := requestMemberID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member"})
	}

	conversationID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid conversation id"})
	}

	// non-numeric limit falls back to the default, unparsable before is
	// ignored, neither is an error
	limit, _ := strconv.Atoi(c.Query("limit"))
	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			before = &ts
		} else {
			logger.Log.Debug("ignoring unparsable before", zap.String("before", raw))
		}
	}

	views, err := h.messageUC.ListMessages(c.Context(), conversationID, memberID, limit, before)
	if err != nil {
		return chatError(c, err)
	}
	if views == nil {
		views = []domain.MessageView{}
	}
	return c.JSON(views)
}

// SendMessage persist and fan out a message
// @Summary Send a message
// @Tags Chat
// @Accept json
// @Param id path int true "conversation id"
// @Param payload body sendMessageReq true "message content"
// @Success 201 {object} domain.MessageView
// @Failure 400 {string} string "empty or too long content"
// @Failure 403 {string} string "not a participant"
// @Router /conversations/{id}/messages [post]
func (h *ChatHTTPHandler) SendMessage(c *fiber.Ctx) error {
	memberID, err := requestMemberID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member"})
	}

	conversationID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid conversation id"})
	}

	var req sendMessageReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	view, err := h.messageUC.Send(c.Context(), conversationID, memberID, req.Content)
	if err != nil {
		return chatError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// MarkRead move the requester's read watermark to now
// @Summary Mark a conversation read
// @Tags Chat
// @Param id path int true "conversation id"
// @Success 200 {string} string "marked read"
// @Failure 403 {string} string "not a participant"
// @Router /conversations/{id}/mark-read [post]
func (h *ChatHTTPHandler) MarkRead(c *fiber.Ctx) error {
	memberID, err := requestMemberID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member"})
	}

	conversationID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid conversation id"})
	}

	if err := h.messageUC.MarkRead(c.Context(), conversationID, memberID); err != nil {
		return chatError(c, err)
	}
	return c.JSON(fiber.Map{"detail": "marked conversation as read"})
}

func requestMemberID(c *fiber.Ctx) (int64, error) {
	tokenMember, _ := c.Locals(middlewares.TokenMemberID).(string)
	return strconv.ParseInt(tokenMember, 10, 64)
}

func chatError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotParticipant):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrMessageTooLong),
		errors.Is(err, domain.ErrInvalidParticipants):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrConversationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		logger.Log.Error("chat handler", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
