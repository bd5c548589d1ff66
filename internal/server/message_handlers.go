package server

import (
	"sapp/internal/models"
	"sapp/internal/service"

	"github.com/gofiber/fiber/v2"
)

type messageRequest struct {
	ReceiverID uint   `json:"receiver_id"`
	Content    string `json:"content"`
}

// SendMessage sends a direct message from the caller (protected)
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req messageRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	msg, err := s.messageService.SendMessage(c.UserContext(), service.SendMessageInput{
		SenderID:   currentUserID(c),
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg.Summary())
}

// GetConversation returns the caller's messages with another user, oldest first (protected)
func (s *Server) GetConversation(c *fiber.Ctx) error {
	otherID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)
	msgs, err := s.messageService.GetConversation(c.UserContext(), currentUserID(c), otherID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SummarizeMessages(msgs))
}
