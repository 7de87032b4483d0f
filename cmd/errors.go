package cmd

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/eka-dev/ftracker/auth"
	"github.com/eka-dev/ftracker/client"
	"github.com/eka-dev/ftracker/pkg/clierr"
)

const (
	msgNotLoggedIn   = "You are not logged in. Run 'ftracker login' first."
	msgSessionEnded  = "Your session has ended. Please log in again."
	msgTimeout       = "Request timed out. Please try again."
	msgNetwork       = "Network error occurred"
	msgUnexpectedErr = "An unexpected error occurred"
)

// userError maps err onto the clierr type that decides its message and exit
// code. A 401 that reaches this point means the session could not be renewed.
func userError(err error) error {
	var cliErr *clierr.Error
	var apiErr *client.APIError
	var urlErr *url.Error

	switch {
	case err == nil:
		return nil
	case errors.As(err, &cliErr):
		return err
	case errors.Is(err, auth.ErrInvalidCredentials):
		return clierr.New(clierr.Validation, err.Error(), err)
	case errors.Is(err, auth.ErrNoSession):
		return clierr.New(clierr.Unauthorized, msgNotLoggedIn, err)
	case errors.Is(err, auth.ErrSessionExpired), errors.Is(err, client.ErrUnauthorized):
		return clierr.New(clierr.Unauthorized, msgSessionEnded, err)
	case errors.As(err, &apiErr):
		return backendError(apiErr, err)
	case client.IsTimeout(err):
		return clierr.New(clierr.Network, msgTimeout, err)
	case errors.As(err, &urlErr):
		return clierr.New(clierr.Network, msgNetwork, err)
	}
	return clierr.New(clierr.Internal, msgUnexpectedErr+": "+err.Error(), err)
}

// credentialError is userError for login and registration, where a 401 is a
// wrong password rather than a lost session.
func credentialError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return backendError(apiErr, err)
	}
	return userError(err)
}

// backendError keeps the backend's message verbatim.
func backendError(apiErr *client.APIError, err error) error {
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized:
		return clierr.New(clierr.Unauthorized, apiErr.Message, err)
	case apiErr.StatusCode == http.StatusNotFound:
		return clierr.New(clierr.NotFound, apiErr.Message, err)
	case apiErr.StatusCode >= http.StatusInternalServerError:
		return clierr.New(clierr.Server, apiErr.Message, err)
	}
	return clierr.New(clierr.Validation, apiErr.Message, err)
}

func validationError(err error) error {
	return clierr.New(clierr.Validation, err.Error(), err)
}
