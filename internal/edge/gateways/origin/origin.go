// Package origin fetches the unmodified page or asset a request maps to.
// The edge handler decides afterwards whether the body gets rendered.
package origin

import (
	"context"
	"net/http"
)

// Origin returns the upstream response for r. The caller owns the body.
type Origin interface {
	Fetch(ctx context.Context, r *http.Request) (*http.Response, error)
}

// Kind names an Origin implementation in configuration.
type Kind string

const (
	KindDir  Kind = "dir"
	KindHTTP Kind = "http"
)
