package client

import (
	"net/http"
	"time"

	"github.com/eka-dev/ftracker/auth"
)

// Config holds the settings needed to build a Client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RefreshTimeout    time.Duration
	MaxAttempts       int
	RequestsPerSecond float64
	// Base is the underlying transport; http.DefaultTransport when nil.
	Base http.RoundTripper
}

// Client bundles the identity gateway and the authorized transaction API.
type Client struct {
	Auth         *AuthClient
	Transactions *TransactionClient
	Transport    *auth.Transport
}

// New wires the request pipeline: transaction calls go through an
// auth.Transport backed by store, identity calls go straight to the network.
func New(cfg Config, store auth.CredentialStore) (*Client, error) {
	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport
	}

	gateway, err := NewAuthClient(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout, Transport: base})
	if err != nil {
		return nil, err
	}

	transport := auth.NewTransport(base, store, gateway, auth.WithRefreshTimeout(cfg.RefreshTimeout))
	transactions, err := NewTransactionClient(
		cfg.BaseURL,
		&http.Client{Timeout: cfg.Timeout, Transport: transport},
		cfg.MaxAttempts,
		NewRateLimiter(cfg.RequestsPerSecond, 1),
	)
	if err != nil {
		return nil, err
	}

	return &Client{Auth: gateway, Transactions: transactions, Transport: transport}, nil
}
