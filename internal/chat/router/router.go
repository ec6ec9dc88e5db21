package router

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"

	"social_chat_service/internal/chat/app"
	"social_chat_service/pkg/logger"
	"social_chat_service/pkg/middlewares"
)

// RegisterRoutes register chat REST and websocket routes
func RegisterRoutes(r *fiber.App, chatWebsocket *app.ChatWebsocketHandler, chatHTTP *app.ChatHTTPHandler) {
	r.Get("/swagger/*", swagger.HandlerDefault)
	r.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("chat service start!")
	})
	r.Post("/debug", debugLogFlag)

	r.Use(middlewares.JWTMiddleware())

	r.Get("/ws/:conversation_id", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))

	conversations := r.Group("/conversations")
	conversations.Get("/", chatHTTP.ListConversations)
	conversations.Post("/", chatHTTP.CreateConversation)
	conversations.Post("/start", chatHTTP.StartConversation)
	conversations.Get("/:id/messages", chatHTTP.ListMessages)
	conversations.Post("/:id/messages", chatHTTP.SendMessage)
	conversations.Post("/:id/mark-read", chatHTTP.MarkRead)
}

// debugLogFlag toggle debug log flag
// @Summary Toggle Debug Log Flag
// @Description Enable or disable debug logging
// @Tags Shared
// @Param status query bool true "Debug status"
// @Success 200 {string} string "debug mode updated"
// @Failure 400 {string} string "Invalid status value"
// @Router /debug [post]
func debugLogFlag(c *fiber.Ctx) error {
	status, err := strconv.ParseBool(c.Query("status"))
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	logger.Log.SetDebugMode(status)
	return c.SendString(fmt.Sprintf("debug mode is : %t", status))
}
