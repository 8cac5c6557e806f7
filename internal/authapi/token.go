package authapi

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/recipebox/recipebox/internal/common"
)

// The client holds no signing secret, so tokens are only introspected, never
// verified. Verification is the service's job; we just need exp and sub.

// TokenExpiry extracts the expiry time from an access token.
func TokenExpiry(raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, common.ErrInvalidToken
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, common.ErrInvalidToken
	}
	return exp.Time, nil
}

// TokenSubject extracts the user id (sub claim) from an access token.
func TokenSubject(raw string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return "", common.ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", common.ErrInvalidToken
	}
	return sub, nil
}
