// Package propertydata fetches raw property records for an address from a
// configurable HTTP API, optionally through a cache.
package propertydata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/denisok6893-rgb/renovation-advisor/internal/config"
)

// ErrNotFound means the provider has no record for the address.
var ErrNotFound = errors.New("property record not found")

// Lookuper returns the raw JSON record for an address.
type Lookuper interface {
	Lookup(ctx context.Context, address string) ([]byte, error)
}

type Client struct {
	http       *resty.Client
	lookupPath string
}

func NewClient(cfg config.PropertyDataConfig) *Client {
	timeout := config.Duration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		header := cfg.APIKeyHeader
		if header == "" {
			header = "X-API-Key"
		}
		rc.SetHeader(header, cfg.APIKey)
	}

	path := cfg.LookupPath
	if path == "" {
		path = "/property/lookup"
	}
	return &Client{http: rc, lookupPath: "/" + strings.TrimLeft(path, "/")}
}

func (c *Client) Lookup(ctx context.Context, address string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("address", address).
		Get(c.lookupPath)
	if err != nil {
		return nil, fmt.Errorf("property lookup: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, ErrNotFound
	case !resp.IsSuccess():
		return nil, fmt.Errorf("property lookup: unexpected status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// NormalizeAddress trims the address and collapses internal whitespace.
func NormalizeAddress(address string) string {
	return strings.Join(strings.Fields(address), " ")
}
