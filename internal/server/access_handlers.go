package server

import (
	"strings"

	"accessdesk/internal/models"
	"accessdesk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SyncAccount handles POST /auth/sync
//
// Called by the frontend after every successful login to upsert the
// account record and return the current access profile.
func (s *Server) SyncAccount(c *fiber.Ctx) error {
	var req struct {
		SubjectID     string  `json:"subject_id"`
		Email         *string `json:"email,omitempty"`
		FullName      *string `json:"full_name,omitempty"`
		RequestedRole string  `json:"requested_role,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidOperationError("Invalid request body"))
	}

	req.SubjectID = strings.TrimSpace(req.SubjectID)
	if req.SubjectID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidOperationError("subject_id is required"))
	}

	requested := models.RoleViewer
	if req.RequestedRole != "" {
		role, err := models.ParseRole(req.RequestedRole)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewInvalidOperationError(err.Error()))
		}
		requested = role
	}

	profile, err := s.accessService.Sync(c.UserContext(), service.SyncInput{
		SubjectID:     req.SubjectID,
		Email:         req.Email,
		FullName:      req.FullName,
		RequestedRole: requested,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(profile)
}
