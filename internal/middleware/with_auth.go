package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/eduquery-api/internal/models"
	"github.com/noah-isme/eduquery-api/internal/utils"
)

// AuthRoleAny accepts any authenticated account.
const AuthRoleAny = "any"

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role string
}

// WithAuth guards a single handler inside a group that is already behind JWTProtected.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}

	return func(c *fiber.Ctx) error {
		if c.Locals("user_id") == nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}
		if role == AuthRoleAny {
			return handler(c)
		}

		current := normalizeRoleValue(c.Locals("user_role"))
		if current != role {
			message := "insufficient permissions"
			if role == models.RoleAdmin {
				message = "admin access required"
			}
			return utils.Fail(c, fiber.StatusForbidden, message, nil)
		}
		return handler(c)
	}
}
