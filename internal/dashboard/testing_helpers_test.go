package dashboard

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, id uint, username, role string, expires time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(id), 10),
		"username": username,
		"role":     role,
		"is_admin": role == "admin",
		"iat":      time.Now().Unix(),
		"exp":      expires.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("dashboard-secret"))
	require.NoError(t, err)
	return token
}

func testSession(t *testing.T, role string) Session {
	t.Helper()
	session, err := ParseSession(signedToken(t, 1, "tester", role, time.Now().Add(time.Hour)))
	require.NoError(t, err)
	return session
}
