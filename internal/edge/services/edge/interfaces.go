package edge

import (
	"context"
	"net/http"

	"github.com/haukened/weave-edge/internal/edge/domain"
)

// Origin fetches the unmodified response for a request.
type Origin interface {
	Fetch(ctx context.Context, r *http.Request) (*http.Response, error)
}

// StatsProvider supplies the counters for one render. It never fails.
type StatsProvider interface {
	Fetch(ctx context.Context) domain.StatsRecord
}

// Renderer fills counter markers in an HTML document.
type Renderer interface {
	Render(html string, rec domain.StatsRecord) string
}
