package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/eduquery-api/internal/models"
	"github.com/noah-isme/eduquery-api/internal/utils"
)

// RequireRole rejects requests whose authenticated role is not listed. It runs after JWTProtected,
// which stores the account role under the "user_role" local.
func RequireRole(roles ...string) fiber.Handler {
	allowed := roleSet(roles)
	message := forbiddenMessage(allowed)

	return func(c *fiber.Ctx) error {
		if !allowed[normalizeRoleValue(c.Locals("user_role"))] {
			return utils.SendError(c, fiber.StatusForbidden, message)
		}
		return c.Next()
	}
}

func roleSet(roles []string) map[string]bool {
	set := make(map[string]bool, len(roles))
	for _, role := range roles {
		if role = normalizeRoleValue(role); role != "" {
			set[role] = true
		}
	}
	return set
}

func forbiddenMessage(allowed map[string]bool) string {
	if len(allowed) == 1 && allowed[models.RoleAdmin] {
		return "admin access required"
	}
	return "insufficient role"
}

func normalizeRoleValue(value interface{}) string {
	role, _ := value.(string)
	return strings.ToLower(strings.TrimSpace(role))
}
