package notification

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/vadimtrunov/PlexAnnouncer/internal/config"
)

// DefaultMaxBodySize limits the webhook request body to 20 MB (metadata plus thumbnail).
const DefaultMaxBodySize = 20 << 20

// WebhookHandler handles incoming Plex webhook requests.
// Plex does not inspect responses, so everything except malformed bodies
// is answered with an empty 200.
type WebhookHandler struct {
	service     *Service
	maxBodySize int64
	logger      *slog.Logger
}

// NewWebhookHandler creates an HTTP handler for Plex webhooks.
// maxBodySize <= 0 selects DefaultMaxBodySize.
func NewWebhookHandler(service *Service, maxBodySize int64, logger *slog.Logger) *WebhookHandler {
	if service == nil {
		panic("notification.NewWebhookHandler: service must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	return &WebhookHandler{
		service:     service,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// ServeHTTP handles POST /{token} requests.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logger := h.logger.With(slog.String("request_id", uuid.NewString()))
	ctx := config.ContextWithLogger(r.Context(), logger)

	logger.Info("inbound request", slog.String("content_type", r.Header.Get("Content-Type")))

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	req, err := DecodeRequest(r)
	if err != nil {
		h.handleDecodeError(w, logger, err)
		return
	}

	switch req.Kind {
	case KindIgnored:
		logger.Info("request ignored: invalid content type, possibly not from plex",
			slog.String("content_type", req.ContentType),
		)
	case KindCustom:
		if err := h.service.NotifyCustom(ctx, req.Text); err != nil {
			logger.Debug("custom announcement incomplete")
		}
	case KindWebhook:
		logger.Info("received plex webhook",
			slog.String("event", req.Event.EventName()),
			slog.Int("items", len(req.Event.Metadata)),
			slog.Bool("thumbnail", req.Attachment != nil),
		)
		if err := h.service.HandleEvent(ctx, req.Event, req.Attachment); err != nil {
			logger.Debug("webhook handled with failures")
		}
	}

	w.WriteHeader(http.StatusOK)
}

// handleDecodeError answers 413 for oversized bodies, 400 for malformed
// bodies and an empty 200 for everything else.
func (h *WebhookHandler) handleDecodeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		logger.Warn("request rejected: body too large", slog.Int64("limit", tooLarge.Limit))
		http.Error(w, "request entity too large", http.StatusRequestEntityTooLarge)
		return
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) && decodeErr.Structural {
		logger.Error("request rejected: malformed body", slog.String("error", err.Error()))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	logger.Warn("request ignored", slog.String("error", err.Error()))
	w.WriteHeader(http.StatusOK)
}
