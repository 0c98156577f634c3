package wallabag

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driven"
)

// Ensure HTTPTransport implements the interface.
var _ driven.Transport = (*HTTPTransport)(nil)

// MaxBodyBytes bounds how much of a response body is read.
const MaxBodyBytes = 8 << 20

// userAgent identifies API calls.
const userAgent = "wallapocket"

// HTTPTransport performs single request/response cycles.
type HTTPTransport struct {
	client  *http.Client
	maxBody int64
}

// NewHTTPTransport creates a transport. A nil client means http.DefaultClient.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{
		client:  client,
		maxBody: MaxBodyBytes,
	}
}

// Send executes req and returns the raw body of a 2xx response.
func (t *HTTPTransport) Send(ctx context.Context, req driven.Request) ([]byte, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", req.Method, req.URL, err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", userAgent)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, &domain.NetworkError{Op: req.Method, URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody))
	if err != nil {
		return nil, &domain.NetworkError{Op: "read " + req.Method, URL: req.URL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.TransportError{Status: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}
