package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"social_chat_service/internal/chat/domain"
	"social_chat_service/internal/chat/repository"
	"social_chat_service/pkg/logger"
	"social_chat_service/pkg/middlewares"
)

// ChatWebsocketHandler per-connection gateway: authenticate, bind to one
// conversation topic, accept send_message frames, push bus deliveries.
//
// Membership is checked once at connect time. A member removed from the
// conversation while the session is open keeps receiving until disconnect,
// an accepted staleness window.
type ChatWebsocketHandler struct {
	participantRepo repository.ParticipantRepository
	messageUC       *MessageUseCase
	broadcaster     Broadcaster
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	participantRepo repository.ParticipantRepository,
	messageUC *MessageUseCase,
	broadcaster Broadcaster,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		participantRepo: participantRepo,
		messageUC:       messageUC,
		broadcaster:     broadcaster,
	}
}

// HandleConnection websocket session entry point
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	tokenMember, _ := conn.Locals(middlewares.TokenMemberID).(string)
	memberID, err := strconv.ParseInt(tokenMember, 10, 64)
	if err != nil {
		closeWebSocketConnection(conn, domain.CloseUnauthenticated, "unauthenticated")
		return
	}

	conversationID, err := strconv.ParseInt(conn.Params("conversation_id"), 10, 64)
	if err != nil {
		closeWebSocketConnection(conn, domain.CloseBadConversation, "bad conversation id")
		return
	}

	isMember, err := h.participantRepo.IsParticipant(ctx, conversationID, memberID)
	if err != nil {
		logger.Log.Error("websocket membership check",
			zap.Int64("conversation_id", conversationID), zap.Int64("member_id", memberID), zap.Error(err))
		closeWebSocketConnection(conn, websocket.CloseInternalServerErr, "membership check failed")
		return
	}
	if !isMember {
		closeWebSocketConnection(conn, domain.CloseForbidden, "not a participant")
		return
	}

	logger.Log.Info("websocket session open",
		zap.Int64("conversation_id", conversationID), zap.Int64("member_id", memberID))

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	// The bus delivery goroutine and the ping goroutine both write to the
	// connection, serialize them.
	var writeMu sync.Mutex
	writeFrame := func(mt int, data []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(mt, data)
	}

	// client close is surfaced as a read error, the handler only logs
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	conn.SetPongHandler(func(appData string) error {
		return nil
	})

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	unsubscribe, err := h.broadcaster.Subscribe(ctxClose, conversationID, func(view domain.MessageView) {
		envelope := domain.WSEnvelope{Type: "message", Message: view}
		data, err := json.Marshal(envelope)
		if err != nil {
			logger.Log.Errorf("envelope marshal error:", err)
			return
		}
		if err := writeFrame(websocket.TextMessage, data); err != nil {
			logger.Log.Errorf("write message error:", err)
		}
	})
	if err != nil {
		logger.Log.Error("websocket subscribe",
			zap.Int64("conversation_id", conversationID), zap.Error(err))
		closeWebSocketConnection(conn, websocket.CloseInternalServerErr, "subscribe failed")
		cancel()
		return
	}

	defer func() {
		ticker.Stop()
		unsubscribe()
		cancel()
		logger.Log.Info("websocket session close",
			zap.Int64("conversation_id", conversationID), zap.Int64("member_id", memberID))
		conn.Close()
	}()

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := writeFrame(websocket.PingMessage, []byte("ping")); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("Connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		h.execWebsocketAction(ctx, conversationID, memberID, mt, message)
	}
}

// execWebsocketAction dispatch an inbound frame. Anything that is not a
// well-formed send_message is dropped without a reply, the session is already
// authorized and gets no protocol feedback for probing.
func (h *ChatWebsocketHandler) execWebsocketAction(ctx context.Context, conversationID, memberID int64, mt int, msg []byte) {
	if mt != websocket.TextMessage {
		return
	}

	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		logger.Log.Debug("websocket frame dropped", zap.String("reason", "bad json"))
		return
	}

	if req.Action != string(domain.SendMessage) {
		logger.Log.Debug("websocket frame dropped", zap.String("action", req.Action))
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		return
	}

	if _, err := h.messageUC.Send(ctx, conversationID, memberID, req.Content); err != nil {
		logger.Log.Error("websocket send",
			zap.Int64("conversation_id", conversationID), zap.Int64("member_id", memberID), zap.Error(err))
	}
}

func closeWebSocketConnection(conn *websocket.Conn, code int, reason string) {
	if err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason)); err != nil {
		logger.Log.Errorf("Failed to send CloseMessage: %v", err)
	}
	conn.Close()
}
