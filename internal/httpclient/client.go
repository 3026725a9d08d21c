package httpclient

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vadimtrunov/PlexAnnouncer/internal/config"
)

// redacted replaces secrets in logged URLs.
const redacted = "***"

// Config holds timeout configuration for outbound requests.
type Config struct {
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
	}
}

// New creates an http.Client shared by every destination.
// Each request is logged at debug level with webhook secrets masked.
// Failed deliveries are not retried.
func New(cfg Config, logger *slog.Logger) *http.Client {
	return NewWithTransport(cfg, http.DefaultTransport, logger)
}

// NewWithTransport is like New but wraps the given transport.
func NewWithTransport(cfg Config, next http.RoundTripper, logger *slog.Logger) *http.Client {
	if logger == nil {
		logger = slog.Default()
	}
	if next == nil {
		next = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &loggingTransport{next: next, logger: logger},
	}
}

type loggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := config.LoggerFromContext(req.Context(), t.logger)
	start := time.Now()

	resp, err := t.next.RoundTrip(req)

	attrs := []any{
		slog.String("method", req.Method),
		slog.String("url", Redact(req.URL)),
		slog.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		logger.Debug("outbound request failed", append(attrs, slog.String("error", err.Error()))...)
		return nil, err
	}
	logger.Debug("outbound request", append(attrs, slog.Int("status", resp.StatusCode))...)
	return resp, nil
}

// Redact renders u without its query and with webhook and bot tokens masked.
func Redact(u *url.URL) string {
	if u == nil {
		return ""
	}
	segments := strings.Split(u.EscapedPath(), "/")
	for i, seg := range segments {
		switch {
		case strings.HasPrefix(seg, "bot") && strings.Contains(seg, ":"):
			// Telegram: /bot<id>:<secret>/method
			segments[i] = "bot" + redacted
		case i >= 2 && segments[i-2] == "webhooks":
			// Discord: /api/webhooks/<id>/<token>
			segments[i] = redacted
		case u.Host == "hooks.slack.com" && i == len(segments)-1 && i > 1:
			// Slack: /services/<team>/<channel>/<secret>
			segments[i] = redacted
		}
	}

	out := url.URL{Scheme: u.Scheme, Host: u.Host}
	return out.String() + strings.Join(segments, "/")
}
