package authapi

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipebox/internal/common"
)

func makeToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	})
	raw, err := token.SignedString([]byte("irrelevant"))
	require.NoError(t, err)
	return raw
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := makeToken(t, "u-1", exp)

	got, err := TokenExpiry(raw)
	require.NoError(t, err)
	require.True(t, got.Equal(exp))
}

func TestTokenSubject(t *testing.T) {
	raw := makeToken(t, "u-1", time.Now().Add(time.Hour))

	sub, err := TokenSubject(raw)
	require.NoError(t, err)
	require.Equal(t, "u-1", sub)
}

func TestSessionFromToken_DerivesUserFromSubject(t *testing.T) {
	c := &HTTPClient{}
	raw := makeToken(t, "u-7", time.Now().Add(time.Hour))

	sess := c.sessionFromToken(&tokenResponse{AccessToken: raw, ExpiresIn: 3600})
	require.NotNil(t, sess.User)
	require.Equal(t, "u-7", sess.User.ID)

	// An explicit user object always wins over the claim.
	sess = c.sessionFromToken(&tokenResponse{
		AccessToken: raw,
		ExpiresIn:   3600,
		User:        &Identity{ID: "u-8", Email: "u8@example.com"},
	})
	require.Equal(t, "u-8", sess.User.ID)
}

func TestToken_Garbage(t *testing.T) {
	_, err := TokenExpiry("not-a-jwt")
	require.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = TokenSubject("not-a-jwt")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestSessionExpired(t *testing.T) {
	var nilSess *Session
	require.True(t, nilSess.Expired(0))

	live := &Session{ExpiresAt: time.Now().Add(time.Hour)}
	require.False(t, live.Expired(30*time.Second))

	stale := &Session{ExpiresAt: time.Now().Add(10 * time.Second)}
	require.True(t, stale.Expired(30*time.Second))

	// Zero expiry means the service never told us; treat as non-expiring.
	unknown := &Session{}
	require.False(t, unknown.Expired(30*time.Second))
}
