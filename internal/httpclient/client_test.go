package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestDo_Success(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	var logs bytes.Buffer
	client := New(DefaultConfig(), testLogger(&logs))
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL+"/api/webhooks/1/secret", http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, logs.String(), "outbound request")
	assert.Contains(t, logs.String(), "status=200")
	assert.NotContains(t, logs.String(), "secret")
}

func TestDo_NoRetryOn500(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(DefaultConfig(), testLogger(io.Discard))
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_Timeout(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	defer close(release)

	client := New(Config{Timeout: 20 * time.Millisecond}, testLogger(io.Discard))
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	_, err = client.Do(req) //nolint:bodyclose // request fails
	require.Error(t, err)
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("dial refused")
}

func TestDo_TransportErrorLogged(t *testing.T) {
	t.Parallel()
	var logs bytes.Buffer
	client := NewWithTransport(DefaultConfig(), failingTransport{}, testLogger(&logs))

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://example.invalid/x", http.NoBody)
	require.NoError(t, err)

	_, err = client.Do(req) //nolint:bodyclose // request fails
	require.Error(t, err)
	assert.Contains(t, logs.String(), "outbound request failed")
	assert.Contains(t, logs.String(), "dial refused")
}

func TestRedact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"discord", "https://discord.com/api/v9/webhooks/123/abc-DEF?wait=true", "https://discord.com/api/v9/webhooks/123/***"},
		{"slack", "https://hooks.slack.com/services/T000/B000/XXXX", "https://hooks.slack.com/services/T000/B000/***"},
		{"telegram", "https://api.telegram.org/bot123:ABC/sendPhoto", "https://api.telegram.org/bot***/sendPhoto"},
		{"plain", "http://localhost:8080/health", "http://localhost:8080/health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			u, err := url.Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Redact(u))
		})
	}

	assert.Empty(t, Redact(nil))
}
