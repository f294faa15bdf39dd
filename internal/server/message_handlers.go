package server

import (
	"accessdesk/internal/models"
	"accessdesk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPeers handles GET /messages/peers
func (s *Server) GetPeers(c *fiber.Ctx) error {
	actor := actorFromLocals(c)

	peers, err := s.messagingSvc.ListPeers(c.UserContext(), actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(peers)
}

// GetInbox handles GET /messages/inbox
func (s *Server) GetInbox(c *fiber.Ctx) error {
	actor := actorFromLocals(c)

	messages, err := s.messagingSvc.ListInbox(c.UserContext(), actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(messages)
}

// GetSent handles GET /messages/sent
func (s *Server) GetSent(c *fiber.Ctx) error {
	actor := actorFromLocals(c)

	messages, err := s.messagingSvc.ListSent(c.UserContext(), actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(messages)
}

// GetUnreadCount handles GET /messages/unread-count
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	actor := actorFromLocals(c)

	count, err := s.messagingSvc.UnreadCount(c.UserContext(), actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"unread_count": count})
}

// SendMessage handles POST /messages/send
func (s *Server) SendMessage(c *fiber.Ctx) error {
	actor := actorFromLocals(c)

	var req struct {
		RecipientSubjectID string `json:"recipient_subject_id"`
		Subject            string `json:"subject"`
		Body               string `json:"body"`
		ReplyToMessageID   *uint  `json:"reply_to_message_id,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidOperationError("Invalid request body"))
	}

	message, err := s.messagingSvc.Send(c.UserContext(), service.SendMessageInput{
		RecipientSubjectID: req.RecipientSubjectID,
		Subject:            req.Subject,
		Body:               req.Body,
		ReplyToMessageID:   req.ReplyToMessageID,
	}, actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// MarkMessageRead handles POST /messages/:id/read
func (s *Server) MarkMessageRead(c *fiber.Ctx) error {
	actor := actorFromLocals(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidOperationError("Invalid message id"))
	}

	message, err := s.messagingSvc.MarkRead(c.UserContext(), uint(id), actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(message)
}

// MarkAllMessagesRead handles POST /messages/read-all
func (s *Server) MarkAllMessagesRead(c *fiber.Ctx) error {
	actor := actorFromLocals(c)

	updated, err := s.messagingSvc.MarkAllRead(c.UserContext(), actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"marked_read": updated})
}
