package driven

import (
	"context"
	"net/http"
)

// Request is a single HTTP exchange to perform.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Transport executes one request/response cycle against a remote host.
//
// Implementations return the raw body for 2xx responses, a
// *domain.TransportError for any other status and a *domain.NetworkError for
// connection-level failures. They never interpret the payload.
type Transport interface {
	Send(ctx context.Context, req Request) ([]byte, error)
}
