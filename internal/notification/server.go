package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// shutdownTimeout bounds how long in-flight deliveries may run after a stop signal.
const shutdownTimeout = 5 * time.Second

// ErrServerStarted is returned by Start when the server is already running.
var ErrServerStarted = errors.New("webhook server already started")

// Server accepts Plex webhooks on POST /{token} and serves /health.
type Server struct {
	srv     *http.Server
	started atomic.Bool
	ready   chan struct{}
	logger  *slog.Logger

	mu sync.RWMutex
	ln net.Listener
}

// NewServer creates a webhook server for the given port.
func NewServer(port int, token string, handler *WebhookHandler, logger *slog.Logger) *Server {
	if handler == nil {
		panic("notification.NewServer: handler must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           Routes(token, handler),
			ReadHeaderTimeout: 10 * time.Second,
			// Plex uploads the poster with the payload; deliveries run inside the request.
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		ready:  make(chan struct{}),
		logger: logger,
	}
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr is the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Start binds the port and serves until ctx is canceled, then drains
// in-flight requests for up to shutdownTimeout.
func (s *Server) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrServerStarted
	}

	ln, err := s.bind(ctx)
	if err != nil {
		s.started.Store(false)
		return err
	}
	addr := slog.String("addr", ln.Addr().String())
	s.logger.Info("listening for plex webhooks", addr)

	stopped := make(chan struct{})
	defer close(stopped)
	go s.shutdownOnCancel(ctx, stopped, addr)

	if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve webhooks: %w", err)
	}
	return nil
}

func (s *Server) bind(ctx context.Context) (net.Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", s.srv.Addr, err)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	close(s.ready)
	return ln, nil
}

// shutdownOnCancel stops the HTTP server when ctx ends. It returns early
// if Serve exits on its own.
func (s *Server) shutdownOnCancel(ctx context.Context, stopped <-chan struct{}, addr slog.Attr) {
	select {
	case <-stopped:
		return
	case <-ctx.Done():
	}

	s.logger.Info("stopping webhook listener", addr)
	//nolint:contextcheck // ctx is already done
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(drainCtx); err != nil {
		s.logger.Warn("webhook listener did not drain in time", addr, slog.String("error", err.Error()))
	}
}

// Routes returns the router serving the webhook and the health endpoint.
func Routes(token string, handler http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Method(http.MethodPost, "/"+token, handler)
	r.Get("/health", healthHandler)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}
