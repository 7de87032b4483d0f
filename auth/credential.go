package auth

import (
	"errors"
	"net/http"
	"strings"
)

// HeaderAuthorization is the header the access token travels in.
const HeaderAuthorization = "Authorization"

const bearerPrefix = "Bearer "

var (
	// ErrNoSession is returned when an operation needs a stored credential and there is none.
	ErrNoSession = errors.New("no active session; please log in first")
	// ErrSessionExpired means the stored session could not be renewed.
	ErrSessionExpired = errors.New("session expired; please log in again")
	// ErrInvalidCredentials reports unusable login or registration input.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRefreshRejected means the backend refused the refresh token itself,
	// as opposed to failing to answer.
	ErrRefreshRejected = errors.New("refresh token rejected")
)

// Credential is the access/refresh token pair of a session.
type Credential struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// IsEstablished reports whether both tokens are present.
func (c Credential) IsEstablished() bool {
	return !isBlank(c.AccessToken) && !isBlank(c.RefreshToken)
}

// BearerValue formats a token for the Authorization header.
func BearerValue(token string) string {
	return bearerPrefix + token
}

// BearerToken extracts the token a request was sent with. It returns an
// empty string when the request carries no bearer header.
func BearerToken(req *http.Request) string {
	if req == nil {
		return ""
	}
	value := req.Header.Get(HeaderAuthorization)
	if len(value) < len(bearerPrefix) || !strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(value[len(bearerPrefix):])
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
