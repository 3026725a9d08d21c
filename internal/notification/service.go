package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vadimtrunov/PlexAnnouncer/internal/config"
	"github.com/vadimtrunov/PlexAnnouncer/internal/core"
	"github.com/vadimtrunov/PlexAnnouncer/internal/mediaserver/plex"
)

// Service turns Plex events into announcements and delivers them to every destination.
// It holds no mutable state after construction and is safe for concurrent use.
type Service struct {
	destinations []core.Destination
	links        *plex.Links
	libraries    map[string]struct{}
	thumbnails   core.ThumbnailSource
	logger       *slog.Logger
}

// NewService creates a notification service.
// links is required; an empty allowedLibraries list admits every library.
func NewService(
	destinations []core.Destination,
	links *plex.Links,
	allowedLibraries []string,
	logger *slog.Logger,
) *Service {
	if links == nil {
		panic("notification.NewService: links must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	libraries := make(map[string]struct{}, len(allowedLibraries))
	for _, lib := range allowedLibraries {
		libraries[lib] = struct{}{}
	}
	return &Service{
		destinations: destinations,
		links:        links,
		libraries:    libraries,
		logger:       logger,
	}
}

// SetDefaultThumbnail configures the image attached to custom announcements.
// Call before the service starts handling requests.
func (s *Service) SetDefaultThumbnail(src core.ThumbnailSource) {
	s.thumbnails = src
}

// HandleEvent dispatches a decoded webhook event. Items are processed in order;
// a failing item does not stop its siblings. Every failure is logged once where
// it occurs. The returned error joins them all, or is nil.
func (s *Service) HandleEvent(ctx context.Context, ev *plex.Event, thumb *core.Attachment) error {
	logger := config.LoggerFromContext(ctx, s.logger)

	if ev == nil || ev.Event == nil {
		logger.Info("request ignored: no event type, possibly not from plex")
		return nil
	}

	name := ev.EventName()
	if name != plex.EventLibraryNew {
		logger.Debug("request ignored: unhandled event type", slog.String("event", name))
		return nil
	}

	if len(ev.Metadata) == 0 {
		logger.Warn("library.new event without metadata")
		return nil
	}

	var errs []error
	for i := range ev.Metadata {
		if err := s.dispatchItem(ctx, &ev.Metadata[i], thumb); err != nil {
			// Send failures were already logged per destination.
			var dispatchErr *DispatchError
			if errors.As(err, &dispatchErr) {
				logger.Error("failed to handle library.new item",
					slog.Int("index", i),
					slog.String("error", err.Error()),
				)
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifyCustom broadcasts a free-text announcement. Blank text is ignored.
func (s *Service) NotifyCustom(ctx context.Context, text string) error {
	logger := config.LoggerFromContext(ctx, s.logger)

	a := formatCustom(s.links, text, s.defaultThumbnail(ctx))
	if a.Description == "" {
		logger.Info("custom announcement ignored: empty text")
		return nil
	}

	logger.Info("sending custom announcement", slog.Int("destinations", len(s.destinations)))
	return s.broadcast(ctx, a)
}

// IsAllowed reports whether items from the given library are announced.
func (s *Service) IsAllowed(library string) bool {
	if len(s.libraries) == 0 {
		return true
	}
	_, ok := s.libraries[library]
	return ok
}

// dispatchItem formats and sends one item. Panics are converted to a DispatchError.
func (s *Service) dispatchItem(ctx context.Context, item *plex.MediaItem, thumb *core.Attachment) (err error) {
	logger := config.LoggerFromContext(ctx, s.logger).With(
		slog.String("type", item.Type.String()),
		slog.String("key", item.Key),
	)

	defer func() {
		if r := recover(); r != nil {
			err = &DispatchError{Key: item.Key, Type: item.Type.String(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if !s.IsAllowed(item.Library()) {
		logger.Info("ignoring library.new item", slog.String("library", item.Library()))
		return nil
	}

	format := formatterFor(item.Type)
	if format == nil {
		logger.Warn("unknown media type, no announcement sent")
		return nil
	}
	if item.Type == plex.MediaTypeTrack {
		logger.Warn("track announcements are incomplete: only title, link and cover are sent")
	}

	a, err := format(s.links, item, thumb)
	if err != nil {
		return &DispatchError{Key: item.Key, Type: item.Type.String(), Err: err}
	}

	logger.Info("sending new item announcement",
		slog.String("title", a.Title),
		slog.Int("destinations", len(s.destinations)),
	)
	return s.broadcast(ctx, a)
}

// broadcast sends a to every destination and joins the failures.
func (s *Service) broadcast(ctx context.Context, a *core.Announcement) error {
	logger := config.LoggerFromContext(ctx, s.logger)

	if len(s.destinations) == 0 {
		logger.Warn("no destinations configured, announcement will not be sent",
			slog.String("title", a.Title),
		)
		return nil
	}

	var errs []error
	for _, dst := range s.destinations {
		if err := sendOne(ctx, dst, a); err != nil {
			logger.Error("failed to send announcement",
				slog.String("destination", dst.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// sendOne calls dst.Send, turning failures and panics into a SendError.
func sendOne(ctx context.Context, dst core.Destination, a *core.Announcement) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &SendError{Destination: dst.Name(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := dst.Send(ctx, a); err != nil {
		return &SendError{Destination: dst.Name(), Err: err}
	}
	return nil
}

// defaultThumbnail loads the configured default image, or returns nil.
func (s *Service) defaultThumbnail(ctx context.Context) *core.Attachment {
	if s.thumbnails == nil {
		return nil
	}
	att, err := s.thumbnails.Thumbnail(ctx)
	if err != nil {
		config.LoggerFromContext(ctx, s.logger).Warn("default thumbnail unavailable",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return att
}
