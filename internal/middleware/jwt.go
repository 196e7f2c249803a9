package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/eduquery-api/internal/models"
	"github.com/noah-isme/eduquery-api/internal/service"
	"github.com/noah-isme/eduquery-api/internal/utils"
)

// AccountLookup resolves the account a verified token was issued to.
type AccountLookup interface {
	LookupAccount(ctx context.Context, id uint) (models.User, error)
}

// JWTProtected returns a middleware that validates JWT bearer tokens. When accounts is set the
// subject must still exist and its role is taken from the store rather than the token.
func JWTProtected(secret string, accounts AccountLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		}, jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return utils.SendError(c, fiber.StatusUnauthorized, "token expired")
			}
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		userID := extractUserIDFromClaims(claims)
		if userID == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}

		role := extractUserRoleFromClaims(claims)
		username, _ := claims["username"].(string)

		if accounts != nil {
			user, err := accounts.LookupAccount(c.UserContext(), *userID)
			if err != nil {
				if errors.Is(err, service.ErrAccountNotFound) {
					return utils.SendError(c, fiber.StatusUnauthorized, "account no longer exists")
				}
				return utils.SendError(c, fiber.StatusInternalServerError, "failed to verify account")
			}
			role = user.Role()
			username = user.Username
		}

		c.Locals("user_id", *userID)
		c.Locals("user_role", role)
		c.Locals("username", username)

		return c.Next()
	}
}

func extractUserIDFromClaims(claims jwt.MapClaims) *uint {
	keys := []string{"sub", "user_id", "id"}
	for _, key := range keys {
		if value, ok := claims[key]; ok {
			if normalized, err := normalizeUserID(value); err == nil && normalized > 0 {
				return &normalized
			}
		}
	}

	return nil
}

func normalizeUserID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}

func extractUserRoleFromClaims(claims jwt.MapClaims) string {
	if role, ok := claims["role"].(string); ok {
		return strings.ToLower(strings.TrimSpace(role))
	}
	if isAdmin, ok := claims["is_admin"].(bool); ok && isAdmin {
		return models.RoleAdmin
	}
	return models.RoleUser
}
