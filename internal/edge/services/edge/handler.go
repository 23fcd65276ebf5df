// Package edge serves origin responses, rendering live counters into HTML.
package edge

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/haukened/weave-edge/internal/edge/common/log"
)

// HTMLContentType is set on every rendered response.
const HTMLContentType = "text/html; charset=utf-8"

type Handler struct {
	origin   Origin
	stats    StatsProvider
	renderer Renderer
	logger   log.Logger
}

type HandlerOptions struct {
	Origin   Origin
	Stats    StatsProvider
	Renderer Renderer
	Logger   log.Logger
}

func NewHandler(opts HandlerOptions) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Handler{
		origin:   opts.Origin,
		stats:    opts.Stats,
		renderer: opts.Renderer,
		logger:   logger,
	}
}

// IsHTML reports whether a Content-Type header denotes an HTML document.
func IsHTML(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text/html")
}

// ServeHTTP fetches the origin response and passes it through untouched
// unless it is HTML. HTML bodies are rendered with the current stats, which
// are only read once the content type is known.
//
// HEAD requests are fetched from the origin as GET so the rendered length,
// and with it Content-Length, matches what a GET would return.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	originReq := r
	if r.Method == http.MethodHead {
		originReq = r.Clone(ctx)
		originReq.Method = http.MethodGet
	}

	resp, err := h.origin.Fetch(ctx, originReq)
	if err != nil {
		h.logger.Error(map[string]any{
			"path":  r.URL.Path,
			"error": err,
		}, "Origin fetch failed")
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if !IsHTML(resp.Header.Get("Content-Type")) {
		h.passthrough(w, r, resp)
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		h.logger.Error(map[string]any{
			"path":  r.URL.Path,
			"error": err,
		}, "Failed to read origin body")
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	rec := h.stats.Fetch(ctx)
	out := h.renderer.Render(string(body), rec)

	copyHeader(w.Header(), resp.Header)
	w.Header().Set("Content-Type", HTMLContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(resp.StatusCode)

	h.logger.Debug(map[string]any{
		"path":       r.URL.Path,
		"status":     resp.StatusCode,
		"stats_keys": rec.Len(),
		"bytes_in":   len(body),
		"bytes_out":  len(out),
	}, "Rendered page")

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, out); err != nil {
		h.logger.Debug(map[string]any{"path": r.URL.Path, "error": err}, "Client write failed")
	}
}

// passthrough streams the origin response unchanged.
func (h *Handler) passthrough(w http.ResponseWriter, r *http.Request, resp *http.Response) {
	copyHeader(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Debug(map[string]any{"path": r.URL.Path, "error": err}, "Passthrough copy failed")
	}
}

func copyHeader(dst, src http.Header) {
	for k, vv := range src {
		dst[k] = append([]string(nil), vv...)
	}
}
