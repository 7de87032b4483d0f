package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IsJWT reports whether token parses as a JWT. The signature is not checked.
func IsJWT(token string) bool {
	_, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	return err == nil
}

// TokenExpiry reads the exp claim of a JWT access token without verifying
// its signature. ok is false when the token is not a JWT or has no exp.
func TokenExpiry(token string) (expiresAt time.Time, ok bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
