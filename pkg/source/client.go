package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a thin JSON-over-HTTP client shared by fetchers
type Client struct {
	client    *http.Client
	userAgent string
}

// NewClient creates a client with the given per-request timeout
func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: userAgent,
	}
}

// request describes one call made on behalf of a service
type request struct {
	service string // service name for errors
	target  string // human readable identifier, e.g. repo or handle
	method  string
	url     string
	headers map[string]string
	body    any
}

// getJSON performs a GET request and decodes JSON response into out
func (c *Client) getJSON(ctx context.Context, r request, out any) error {
	r.method = http.MethodGet
	return c.doJSON(ctx, r, out)
}

// postJSON sends body as JSON and decodes JSON response into out
func (c *Client) postJSON(ctx context.Context, r request, out any) error {
	r.method = http.MethodPost
	return c.doJSON(ctx, r, out)
}

func (c *Client) doJSON(ctx context.Context, r request, out any) error {
	if r.headers == nil {
		r.headers = map[string]string{}
	}
	r.headers["Accept"] = "application/json"
	body, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return &UpstreamDataError{Service: r.service, Target: r.target, Reason: "decode response", Err: err}
	}
	return nil
}

// do performs the request and returns response body for 2xx responses
func (c *Client) do(ctx context.Context, r request) (io.ReadCloser, error) {
	var payload io.Reader = http.NoBody
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("marshal request for %s %s: %w", r.service, r.target, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, payload)
	if err != nil {
		return nil, &TransportError{Service: r.service, Target: r.target, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Service: r.service, Target: r.target, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, &TransportError{Service: r.service, Target: r.target, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	return resp.Body, nil
}
