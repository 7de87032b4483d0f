package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/eka-dev/ftracker/pkg/pool"
	"github.com/rs/zerolog/log"
)

const transactionsPath = "api/v1/transactions"

// TransactionClient manages transactions through an authorizing http.Client.
type TransactionClient struct {
	baseURL     *url.URL
	http        *http.Client
	maxAttempts int
	limiter     *RateLimiter
}

// NewTransactionClient creates a TransactionClient. httpClient is expected to
// carry an auth.Transport.
func NewTransactionClient(baseURL string, httpClient *http.Client, maxAttempts int, limiter *RateLimiter) (*TransactionClient, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &TransactionClient{baseURL: base, http: httpClient, maxAttempts: maxAttempts, limiter: limiter}, nil
}

func (c *TransactionClient) itemURL(id string) string {
	return resolve(c.baseURL, transactionsPath+"/"+url.PathEscape(id))
}

// List returns the transactions of view and of the period before it.
func (c *TransactionClient) List(ctx context.Context, view ViewOption) (TransactionResponse, error) {
	if view == "" {
		view = DefaultView
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return TransactionResponse{}, err
	}
	u := resolve(c.baseURL, transactionsPath) + "?" + url.Values{"view": {string(view)}}.Encode()
	env, err := call[TransactionResponse](ctx, c.http, c.maxAttempts, http.MethodGet, u, nil)
	if err != nil {
		return TransactionResponse{}, fmt.Errorf("failed to list transactions: %w", err)
	}
	log.Info().Str("view", string(view)).Int("current", len(env.Data.Current)).Int("last", len(env.Data.Last)).Msg("Fetched transactions")
	return env.Data, nil
}

func (c *TransactionClient) Get(ctx context.Context, id string) (Transaction, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Transaction{}, err
	}
	env, err := call[Transaction](ctx, c.http, c.maxAttempts, http.MethodGet, c.itemURL(id), nil)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}
	return env.Data, nil
}

// Create adds a transaction and returns the backend's message.
func (c *TransactionClient) Create(ctx context.Context, in TransactionInput) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	env, err := call[any](ctx, c.http, c.maxAttempts, http.MethodPost, resolve(c.baseURL, transactionsPath), in.request())
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}
	return env.Message, nil
}

// Update replaces a transaction and returns the backend's message.
func (c *TransactionClient) Update(ctx context.Context, id string, in TransactionInput) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	env, err := call[any](ctx, c.http, c.maxAttempts, http.MethodPut, c.itemURL(id), in.request())
	if err != nil {
		return "", fmt.Errorf("failed to update transaction %s: %w", id, err)
	}
	return env.Message, nil
}

// Delete removes a transaction and returns the backend's message.
func (c *TransactionClient) Delete(ctx context.Context, id string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	env, err := call[any](ctx, c.http, c.maxAttempts, http.MethodDelete, c.itemURL(id), nil)
	if err != nil {
		return "", fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	return env.Message, nil
}

// DeleteMany deletes ids with up to workers concurrent requests. onDone, when
// set, is called once per id after its request finished; it may be called
// from several goroutines at once.
func (c *TransactionClient) DeleteMany(ctx context.Context, ids []string, workers int, onDone func(id string, err error)) []error {
	if workers < 1 {
		workers = 1
	}
	return pool.Run(ctx, ids, workers, func(ctx context.Context, id string) error {
		_, err := c.Delete(ctx, id)
		if onDone != nil {
			onDone(id, err)
		}
		return err
	})
}
