package dashboard

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestParseSessionReadsPayload(t *testing.T) {
	expires := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	session, err := ParseSession(signedToken(t, 42, "admin", "admin", expires))
	require.NoError(t, err)

	require.Equal(t, uint(42), session.User.ID)
	require.Equal(t, "admin", session.User.Username)
	require.True(t, session.Admin())
	require.True(t, session.ExpiresAt.Equal(expires))
	require.True(t, session.Valid(time.Now()))
	require.False(t, session.Valid(expires.Add(time.Second)))
}

func TestParseSessionFallsBackToAdminFlag(t *testing.T) {
	claims := jwt.MapClaims{"sub": "5", "is_admin": true, "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("x"))
	require.NoError(t, err)

	session, err := ParseSession(token)
	require.NoError(t, err)
	require.True(t, session.Admin())
}

func TestParseSessionRejectsMalformedTokens(t *testing.T) {
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := ParseSession(token)
		require.ErrorIs(t, err, ErrMalformedToken, token)
	}

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"}).SignedString([]byte("x"))
	require.NoError(t, err)
	_, err = ParseSession(noExp)
	require.ErrorIs(t, err, ErrMalformedToken)
}

func TestZeroSessionIsInvalid(t *testing.T) {
	require.False(t, Session{}.Valid(time.Now()))
}
