package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/damdeez/newsie/internal/domain"
)

// Client fetches normalized responses from one configured provider.
type Client struct {
	cfg     Provider
	adapter Adapter
	apiKey  string
	http    HTTPClient
	now     func() time.Time
}

// NewClient resolves the adapter for cfg from the default adapter registry.
// An empty apiKey is sent as-is.
func NewClient(cfg Provider, apiKey string, client HTTPClient) (*Client, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	adapter, err := DefaultAdapterRegistry().AdapterFor(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, adapter: adapter, apiKey: apiKey, http: client, now: time.Now}, nil
}

// WithClock overrides the clock used for date-bounded searches.
func (c *Client) WithClock(now func() time.Time) *Client {
	if now != nil {
		c.now = now
	}
	return c
}

// Provider returns the provider entry this client talks to.
func (c *Client) Provider() Provider { return c.cfg }

// Everything runs a keyword search over recent articles.
func (c *Client) Everything(ctx context.Context, p domain.QueryParams) (*domain.Response, error) {
	return c.do(ctx, c.adapter.Everything(c.cfg, c.apiKey, p, c.now()))
}

// TopHeadlines fetches the top headlines for p.Country.
func (c *Client) TopHeadlines(ctx context.Context, p domain.QueryParams) (*domain.Response, error) {
	return c.do(ctx, c.adapter.TopHeadlines(c.cfg, c.apiKey, p))
}

func (c *Client) do(ctx context.Context, req Request) (*domain.Response, error) {
	resp, err := c.http.Get(ctx, req.URL, req.Headers)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransportError{Err: err}
	}
	if resp == nil {
		return nil, &TransportError{Err: fmt.Errorf("no response from %s", c.cfg.ID)}
	}
	return c.adapter.Decode(resp.StatusCode(), resp.Body())
}
