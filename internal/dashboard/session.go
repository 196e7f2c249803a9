package dashboard

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/eduquery-api/internal/models"
)

// SessionCookie stores the bearer token between page loads.
const SessionCookie = "eduquery_session"

// ErrMalformedToken is returned when a token payload cannot be read.
var ErrMalformedToken = errors.New("malformed token")

// SessionUser is the account profile carried in the token payload.
type SessionUser struct {
	ID       uint
	Username string
	Role     string
}

// Session is the signed-in state of one browser. It is created on login, read before
// every protected call and destroyed on logout or expiry.
type Session struct {
	Token     string
	User      SessionUser
	ExpiresAt time.Time
}

// Admin reports whether the session holds the administrator role.
func (s Session) Admin() bool {
	return s.User.Role == models.RoleAdmin
}

// Valid reports whether the session still has a token that has not expired at now.
func (s Session) Valid(now time.Time) bool {
	return s.Token != "" && now.Before(s.ExpiresAt)
}

// ParseSession reads the token payload without verifying the signature. The API verifies
// every call; the expiry read here only avoids sending requests that are bound to fail.
func ParseSession(token string) (Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return Session{}, fmt.Errorf("%w: missing exp", ErrMalformedToken)
	}
	subject, err := claims.GetSubject()
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	id, err := strconv.ParseUint(subject, 10, 64)
	if err != nil {
		return Session{}, fmt.Errorf("%w: invalid sub", ErrMalformedToken)
	}

	user := SessionUser{ID: uint(id), Role: models.RoleUser}
	if username, ok := claims["username"].(string); ok {
		user.Username = username
	}
	if role, ok := claims["role"].(string); ok && role != "" {
		user.Role = role
	} else if isAdmin, ok := claims["is_admin"].(bool); ok && isAdmin {
		user.Role = models.RoleAdmin
	}

	return Session{Token: token, User: user, ExpiresAt: exp.Time}, nil
}

// LoadSession reads the session cookie. Expired or unreadable cookies yield no session.
func LoadSession(c *fiber.Ctx, now time.Time) (Session, bool) {
	token := c.Cookies(SessionCookie)
	if token == "" {
		return Session{}, false
	}
	session, err := ParseSession(token)
	if err != nil || !session.Valid(now) {
		return Session{}, false
	}
	return session, true
}

// StoreSession persists the session in an HTTP-only cookie that expires with the token.
func StoreSession(c *fiber.Ctx, session Session) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSession destroys the session cookie.
func ClearSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
