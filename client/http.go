package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultMaxAttempts is the number of tries for idempotent requests.
const DefaultMaxAttempts = 3

// retryBackoff is the delay before the first retry; it doubles each time.
var retryBackoff = 1 * time.Second

func resolve(base *url.URL, path string) string {
	return base.ResolveReference(&url.URL{Path: path}).String()
}

func parseBaseURL(raw string) (*url.URL, error) {
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", raw)
	}
	if base.Path == "" || base.Path[len(base.Path)-1] != '/' {
		base.Path += "/"
	}
	return base, nil
}

func createRequest(ctx context.Context, method, urlStr string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		log.Error().Err(err).Str("method", method).Str("url", urlStr).Msg("Failed to create request")
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// sendRequest sends req, retrying idempotent requests on transport errors and
// 5xx responses with exponential backoff. The last response is returned as is,
// whatever its status.
func sendRequest(hc *http.Client, req *http.Request, maxAttempts int) (*http.Response, error) {
	if maxAttempts < 1 || !idempotent(req.Method) {
		maxAttempts = 1
	}
	backoff := retryBackoff

	var resp *http.Response
	var err error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			if werr := sleepCtx(req.Context(), backoff); werr != nil {
				return nil, werr
			}
			backoff *= 2
			if req, err = rewindRequest(req); err != nil {
				return nil, err
			}
		}

		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("attempt", i+1).Msg("Sending HTTP request")
		resp, err = hc.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				break
			}
			log.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", maxAttempts).Msg("Request failed, retrying...")
			continue
		}

		if resp.StatusCode >= 500 && i < maxAttempts-1 {
			log.Warn().Int("status", resp.StatusCode).Int("attempt", i+1).Int("max_attempts", maxAttempts).Msg("Server error, retrying...")
			closeResponseBody(resp)
			continue
		}
		break
	}

	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}
	return resp, nil
}

func rewindRequest(req *http.Request) (*http.Request, error) {
	next := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return next, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	next.Body = body
	return next, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read response body")
		return nil, err
	}
	return body, nil
}

func closeResponseBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, resp.Body, 1024*1024)
	_ = resp.Body.Close()
}

// call performs one API request and decodes the envelope. Non-2xx responses
// become *APIError.
func call[T any](ctx context.Context, hc *http.Client, maxAttempts int, method, urlStr string, payload any) (envelope[T], error) {
	var env envelope[T]

	req, err := createRequest(ctx, method, urlStr, payload)
	if err != nil {
		return env, err
	}
	resp, err := sendRequest(hc, req, maxAttempts)
	if err != nil {
		return env, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return env, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp.StatusCode, body)
		log.Error().Int("status", resp.StatusCode).Str("url", urlStr).Str("message", apiErr.Message).Msg("HTTP request failed with non-successful status")
		return env, apiErr
	}

	if err := json.Unmarshal(body, &env); err != nil {
		log.Error().Err(err).Str("body_preview", string(body[:min(len(body), 200)])).Msg("Failed to parse response JSON")
		return env, fmt.Errorf("failed to parse response: %w", err)
	}
	return env, nil
}
