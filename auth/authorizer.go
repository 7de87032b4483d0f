package auth

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// Authorizer stamps outgoing requests with the current access token.
type Authorizer struct {
	store CredentialStore
}

// NewAuthorizer creates an Authorizer reading from store.
func NewAuthorizer(store CredentialStore) *Authorizer {
	return &Authorizer{store: store}
}

// Authorize sets "Authorization: Bearer <token>" when a non-blank access
// token is stored. Requests without a stored token pass through unchanged;
// a failing store read is logged and never fails the request.
func (a *Authorizer) Authorize(req *http.Request) {
	cred, err := a.store.Get(req.Context())
	if err != nil {
		log.Warn().Err(err).Str("url", req.URL.String()).Msg("Failed to read credential, sending request unauthenticated")
		return
	}
	if isBlank(cred.AccessToken) {
		return
	}
	req.Header.Set(HeaderAuthorization, BearerValue(cred.AccessToken))
}
