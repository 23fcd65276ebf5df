// Package transport exposes the edge handler over HTTP.
package transport

import (
	"context"
	"net/http"
)

// ServerTransport is the lifecycle contract main drives.
type ServerTransport interface {
	// Start binds the listener and begins serving handler in the background.
	Start(ctx context.Context, handler http.Handler) error

	// Stop drains in-flight requests until ctx expires.
	Stop(ctx context.Context) error

	// Address returns the bound address once started.
	Address() string
}

// HealthPath answers liveness probes without touching the origin.
const HealthPath = "/_edge/healthz"
