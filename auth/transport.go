package auth

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// HeaderRequestID correlates client logs with backend logs.
const HeaderRequestID = "X-Request-ID"

// DefaultMaxRetries is the number of replays allowed per original request.
const DefaultMaxRetries = 1

// Transport is an http.RoundTripper that authorizes every request and
// replays it once the Refresher has renewed a rejected token.
type Transport struct {
	Base       http.RoundTripper // defaults to http.DefaultTransport
	Authorizer *Authorizer
	Refresher  *Refresher
	MaxRetries int // defaults to DefaultMaxRetries
}

// NewTransport wires an Authorizer and a Refresher over base.
func NewTransport(base http.RoundTripper, store CredentialStore, gateway Gateway, options ...RefresherOption) *Transport {
	return &Transport{
		Base:       base,
		Authorizer: NewAuthorizer(store),
		Refresher:  NewRefresher(store, gateway, options...),
		MaxRetries: DefaultMaxRetries,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if out.Header.Get(HeaderRequestID) == "" {
		out.Header.Set(HeaderRequestID, uuid.NewString())
	}
	if t.Authorizer != nil {
		t.Authorizer.Authorize(out)
	}

	resp, err := t.send(out)
	if err != nil {
		return nil, err
	}

	for attempt := 0; resp.StatusCode == http.StatusUnauthorized && t.Refresher != nil && attempt < t.maxRetries(); attempt++ {
		retry, authErr := t.Refresher.Authenticate(req.Context(), resp)
		if retry == nil {
			if authErr != nil {
				log.Warn().Err(authErr).Str("url", req.URL.String()).Msg("Not replaying unauthorized request")
			}
			return resp, nil
		}

		closeResponseBody(resp)
		log.Debug().Str("method", retry.Method).Str("url", retry.URL.String()).Int("attempt", attempt+1).Msg("Replaying request with renewed token")
		resp, err = t.send(retry)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (t *Transport) send(req *http.Request) (*http.Response, error) {
	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.Request == nil {
		resp.Request = req
	}
	return resp, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) maxRetries() int {
	if t.MaxRetries > 0 {
		return t.MaxRetries
	}
	return DefaultMaxRetries
}

func closeResponseBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, resp.Body, 64*1024)
	_ = resp.Body.Close()
}
