package invidious

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// Response is the raw outcome of one HTTP GET against an instance.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport issues a single GET. Implementations must not retry; the client
// owns the fallback policy.
type Transport interface {
	Get(ctx context.Context, rawURL string) (*Response, error)
}

// RestyTransport is the production Transport.
type RestyTransport struct {
	client *resty.Client
}

// NewRestyTransport builds a transport with retries disabled. timeout is an
// upper bound on top of the per-attempt context deadline.
func NewRestyTransport(userAgent string, timeout time.Duration) *RestyTransport {
	client := resty.New().
		SetHeader("Accept", "application/json").
		SetTimeout(timeout).
		SetRetryCount(0)
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	return &RestyTransport{client: client}
}

// Get implements Transport.
func (t *RestyTransport) Get(ctx context.Context, rawURL string) (*Response, error) {
	resp, err := t.client.R().
		SetContext(ctx).
		Get(rawURL)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}
