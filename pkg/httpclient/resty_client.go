package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent identifies newsie on outbound requests.
const DefaultUserAgent = "newsie/1.0 (+https://github.com/damdeez/newsie)"

// RestyClient is the resty-backed Client.
type RestyClient struct {
	client *resty.Client
}

func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: NewRestyHTTPClient(timeout)}
}

// NewRestyHTTPClient returns the shared resty setup (timeout, user agent, no
// retries) for callers that need verbs other than GET.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	c.SetRetryCount(0)
	c.SetHeader("User-Agent", DefaultUserAgent)
	return c
}

func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, err
	}
	return restyResponse{resp: resp}, nil
}

type restyResponse struct {
	resp *resty.Response
}

func (r restyResponse) Body() []byte              { return r.resp.Body() }
func (r restyResponse) StatusCode() int           { return r.resp.StatusCode() }
func (r restyResponse) Header(name string) string { return r.resp.Header().Get(name) }
