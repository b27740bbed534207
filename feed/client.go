package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultTimeout = 10 * time.Second

// MaxBodyBytes caps how much of an upstream response is read.
const MaxBodyBytes = 1 << 20

// Client fetches the daily totals from one upstream URL.
type Client struct {
	url        string
	httpClient *http.Client
	timeout    time.Duration
}

func NewClient(url string, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{url: url, httpClient: httpClient, timeout: timeout}
}

func (c *Client) Fetch(ctx context.Context) (RawSample, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", c.url, err)
	}
	defer resp.Body.Close()
	body := io.LimitReader(resp.Body, MaxBodyBytes)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, body)
		return nil, newStatusError(c.url, resp.StatusCode)
	}
	return DecodeRawSample(body)
}
