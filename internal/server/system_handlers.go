package server

import (
	"accessdesk/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListRoles handles GET /roles
//
// Returns every assignable role with its permission strings so frontends can
// build role pickers without hardcoding the table.
func (s *Server) ListRoles(c *fiber.Ctx) error {
	roles := make([]fiber.Map, 0, len(models.Roles))
	for _, role := range models.Roles {
		roles = append(roles, fiber.Map{
			"role":        role,
			"permissions": models.PermissionsForRole(role),
		})
	}
	return c.JSON(fiber.Map{"roles": roles})
}
