package handlers

import (
	"github.com/gofiber/fiber/v2"

	"streamrelay/pkg/chat"
	"streamrelay/pkg/models"
)

type ChatHandler struct {
	hub *chat.Hub
}

func NewChat(hub *chat.Hub) *ChatHandler {
	return &ChatHandler{hub: hub}
}

// Status handles GET /chat/status.
func (h *ChatHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"clients":      h.hub.ClientCount(),
		"participants": h.hub.ParticipantCount(),
	})
}

// History handles GET /chat/history with the same snapshot a joining
// WebSocket client receives.
func (h *ChatHandler) History(c *fiber.Ctx) error {
	events := h.hub.History()
	if events == nil {
		events = []*models.ChatEvent{}
	}
	return c.JSON(events)
}
