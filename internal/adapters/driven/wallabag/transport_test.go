package wallabag

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
	"github.com/custodia-labs/wallapocket/internal/core/ports/driven"
)

func TestHTTPTransport_Send(t *testing.T) {
	tests := map[string]struct {
		handler    http.HandlerFunc
		wantBody   string
		wantStatus int
	}{
		"success_returns_raw_body": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"id":1}`))
			},
			wantBody: `{"id":1}`,
		},
		"no_content": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			},
			wantBody: "",
		},
		"unauthorized": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			},
			wantStatus: http.StatusUnauthorized,
		},
		"server_error": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			transport := NewHTTPTransport(server.Client())
			body, err := transport.Send(context.Background(), driven.Request{
				Method: http.MethodGet,
				URL:    server.URL + "/api/entries.json",
			})

			if tt.wantStatus != 0 {
				require.Error(t, err)
				var te *domain.TransportError
				require.True(t, errors.As(err, &te))
				assert.Equal(t, tt.wantStatus, te.Status)
				assert.NotEmpty(t, te.Body)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestHTTPTransport_SendsHeadersAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/entries/7.json", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))

		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"archive":1}`, string(data))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer tok")
	header.Set("Content-Type", "application/json")

	_, err := NewHTTPTransport(server.Client()).Send(context.Background(), driven.Request{
		Method: http.MethodPatch,
		URL:    server.URL + "/api/entries/7.json",
		Header: header,
		Body:   []byte(`{"archive":1}`),
	})

	require.NoError(t, err)
}

func TestHTTPTransport_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	}))
	url := server.URL
	server.Close()

	_, err := NewHTTPTransport(nil).Send(context.Background(), driven.Request{
		Method: http.MethodGet,
		URL:    url + "/api/entries.json",
	})

	require.Error(t, err)
	assert.True(t, domain.IsNetwork(err))
	assert.Equal(t, 0, domain.StatusCode(err))
}

func TestHTTPTransport_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPTransport(server.Client()).Send(ctx, driven.Request{Method: http.MethodGet, URL: server.URL})

	require.Error(t, err)
	assert.True(t, domain.IsNetwork(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPTransport_BodyIsBounded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.Client())
	transport.maxBody = 10

	body, err := transport.Send(context.Background(), driven.Request{Method: http.MethodGet, URL: server.URL})

	require.NoError(t, err)
	assert.Len(t, body, 10)
}

func TestNewHTTPClient_RecordsRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderRetryAfter, "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewHTTPClient(domain.HTTPSettings{RequestsPerSecond: 0, Timeout: 5 * time.Second})
	before := time.Now()

	_, err := NewHTTPTransport(client).Send(context.Background(), driven.Request{Method: http.MethodGet, URL: server.URL})

	assert.Equal(t, http.StatusTooManyRequests, domain.StatusCode(err))
	limiter := client.Transport.(*throttledRoundTripper).limiter
	retryAt := limiter.RetryAt(strings.TrimPrefix(server.URL, "http://"))
	assert.True(t, retryAt.After(before.Add(110*time.Second)), "retryAt=%v", retryAt)
}

func TestNewHTTPClient_BackoffIsPerHost(t *testing.T) {
	limited := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderRetryAfter, "600")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer limited.Close()
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer healthy.Close()

	transport := NewHTTPTransport(NewHTTPClient(domain.HTTPSettings{Timeout: 5 * time.Second}))

	_, err := transport.Send(context.Background(), driven.Request{Method: http.MethodGet, URL: limited.URL})
	require.Equal(t, http.StatusTooManyRequests, domain.StatusCode(err))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	body, err := transport.Send(ctx, driven.Request{Method: http.MethodGet, URL: healthy.URL})

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1}`, string(body))

	// The limited host is still held back
	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	_, err = transport.Send(short, driven.Request{Method: http.MethodGet, URL: limited.URL})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
