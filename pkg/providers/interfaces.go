package providers

import (
	"time"

	"github.com/damdeez/newsie/internal/domain"
	"github.com/damdeez/newsie/pkg/httpclient"
)

// Request is a fully built outbound GET.
type Request struct {
	URL     string
	Headers map[string]string
}

// Adapter translates between newsie's canonical model and one provider's wire format.
// Concrete implementations live in provider-specific files (e.g., newsapi.go).
type Adapter interface {
	Type() string
	Everything(cfg Provider, apiKey string, p domain.QueryParams, now time.Time) Request
	TopHeadlines(cfg Provider, apiKey string, p domain.QueryParams) Request
	Decode(statusCode int, body []byte) (*domain.Response, error)
}

// AdapterRegistry resolves the adapter implementation for a given provider config.
type AdapterRegistry interface {
	AdapterFor(cfg Provider) (Adapter, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within providers.
type HTTPClient = httpclient.Client
