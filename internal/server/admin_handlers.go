package server

import (
	"strings"

	"accessdesk/internal/models"
	"accessdesk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPendingAccounts handles GET /admin/accounts/pending
func (s *Server) GetPendingAccounts(c *fiber.Ctx) error {
	accounts, err := s.accessService.ListPending(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(accounts)
}

// GetAllAccounts handles GET /admin/accounts
func (s *Server) GetAllAccounts(c *fiber.Ctx) error {
	accounts, err := s.accessService.ListAll(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(accounts)
}

// CreateAccount handles POST /admin/accounts
//
// The created account is approved immediately with the given role, so the
// subject can act as soon as it first signs in.
func (s *Server) CreateAccount(c *fiber.Ctx) error {
	actor := actorFromLocals(c)

	var req struct {
		SubjectID string  `json:"subject_id"`
		Email     *string `json:"email,omitempty"`
		FullName  *string `json:"full_name,omitempty"`
		Role      string  `json:"role"`
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

	role := models.RoleViewer
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewInvalidOperationError(err.Error()))
		}
		role = parsed
	}

	profile, err := s.accessService.CreateAsAdmin(c.UserContext(), service.CreateAccountInput{
		SubjectID:    req.SubjectID,
		Email:        req.Email,
		FullName:     req.FullName,
		ApprovedRole: role,
	}, actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(profile)
}

// ApproveAccount handles POST /admin/accounts/:subjectId/approve
func (s *Server) ApproveAccount(c *fiber.Ctx) error {
	actor := actorFromLocals(c)
	subjectID := c.Params("subjectId")

	var req struct {
		ApprovedRole *string `json:"approved_role,omitempty"`
	}
	// An empty body means "approve with the requested role".
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewInvalidOperationError("Invalid request body"))
		}
	}

	var approvedRole *models.Role
	if req.ApprovedRole != nil && *req.ApprovedRole != "" {
		parsed, err := models.ParseRole(*req.ApprovedRole)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewInvalidOperationError(err.Error()))
		}
		approvedRole = &parsed
	}

	profile, err := s.accessService.Approve(c.UserContext(), subjectID, approvedRole, actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(profile)
}

// RejectAccount handles POST /admin/accounts/:subjectId/reject
func (s *Server) RejectAccount(c *fiber.Ctx) error {
	actor := actorFromLocals(c)
	subjectID := c.Params("subjectId")

	var req struct {
		Reason *string `json:"reason,omitempty"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewInvalidOperationError("Invalid request body"))
		}
	}

	profile, err := s.accessService.Reject(c.UserContext(), subjectID, req.Reason, actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(profile)
}

// DeleteAccount handles DELETE /admin/accounts/:subjectId
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	actor := actorFromLocals(c)
	subjectID := c.Params("subjectId")

	result, err := s.accessService.Delete(c.UserContext(), subjectID, actor)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(result)
}
