// Package httpclient is the outbound HTTP boundary shared by provider fetches,
// page enrichment and webhook publishing.
package httpclient

import "context"

// Response is what callers read back from a GET.
type Response interface {
	Body() []byte
	StatusCode() int
	// Header returns the first value of the named response header, or "".
	Header(name string) string
}

// Client performs context-bound GET requests; a cancelled ctx aborts the call.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
