package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/haukened/weave-edge/internal/edge/common/clock"
	"github.com/haukened/weave-edge/internal/edge/common/log"
)

// HTTPTransport serves the edge handler behind a chi router.
type HTTPTransport struct {
	addr   string
	clock  clock.Clock
	logger log.Logger

	mu       sync.RWMutex
	server   *http.Server
	listener net.Listener
	running  bool
	done     chan struct{}
}

func NewHTTPTransport(addr string, clk clock.Clock, logger log.Logger) *HTTPTransport {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &HTTPTransport{addr: addr, clock: clk, logger: logger}
}

// Router builds the route tree: the health probe plus every other path
// delegated to handler.
func (t *HTTPTransport) Router(handler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		t.accessLog,
		middleware.Recoverer,
	)
	r.Get(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle("/*", handler)
	return r
}

// Start binds the listener synchronously so address errors surface here.
// Requests inherit ctx values but not its cancellation; Stop drains them.
func (t *HTTPTransport) Start(ctx context.Context, handler http.Handler) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return fmt.Errorf("HTTP transport already running")
	}

	ln, err := net.Listen("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", t.addr, err)
	}

	t.listener = ln
	t.server = &http.Server{
		Handler:           t.Router(handler),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	t.done = make(chan struct{})
	t.running = true

	go t.serve(t.server, ln, t.done)

	t.logger.Info(map[string]any{
		"transport": "http",
		"address":   ln.Addr().String(),
	}, "HTTP transport started")
	return nil
}

func (t *HTTPTransport) serve(srv *http.Server, ln net.Listener, done chan struct{}) {
	defer close(done)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		t.logger.Error(map[string]any{"error": err}, "HTTP server stopped unexpectedly")
	}
}

// Stop shuts the server down gracefully. Calling it when stopped is a no-op.
func (t *HTTPTransport) Stop(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return nil
	}
	t.running = false

	err := t.server.Shutdown(ctx)
	if err != nil {
		t.logger.Warn(map[string]any{"error": err}, "Graceful shutdown incomplete, closing")
		_ = t.server.Close()
	}
	<-t.done

	t.logger.Info(map[string]any{
		"transport": "http",
		"address":   t.listener.Addr().String(),
	}, "HTTP transport stopped")
	return err
}

// Address returns the bound address, or the configured one before Start.
func (t *HTTPTransport) Address() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.listener != nil {
		return t.listener.Addr().String()
	}
	return t.addr
}

// accessLog writes one structured line per request.
func (t *HTTPTransport) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := t.clock.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			t.logger.Info(map[string]any{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"remote":     r.RemoteAddr,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   t.clock.Since(start),
			}, "HTTP request")
		}()
		next.ServeHTTP(ww, r)
	})
}

var _ ServerTransport = (*HTTPTransport)(nil)
