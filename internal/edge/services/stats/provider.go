// Package stats loads the live counter record for a page render.
//
// Retrieval never fails from the caller's point of view: a missing store,
// a missing key, a read error or an undecodable document all produce the
// empty record, so the page still renders with placeholders.
package stats

import (
	"context"
	"errors"

	"github.com/haukened/weave-edge/internal/edge/common/log"
	"github.com/haukened/weave-edge/internal/edge/domain"
	"github.com/haukened/weave-edge/internal/edge/repos/statsstore"
)

// DefaultKey is where the landing page counters live.
const DefaultKey = "hyperweave"

// Store is the read side of the key-value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

type Provider struct {
	store  Store
	key    string
	logger log.Logger
}

type ProviderOptions struct {
	// Store may be nil when no database is configured.
	Store  Store
	Key    string
	Logger log.Logger
}

func NewProvider(opts ProviderOptions) *Provider {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Provider{store: opts.Store, key: key, logger: logger}
}

// Fetch returns the current record, or the empty record on any failure.
func (p *Provider) Fetch(ctx context.Context) domain.StatsRecord {
	if p.store == nil {
		p.logger.Warn(map[string]any{"key": p.key}, "Stats store not available")
		return domain.EmptyStats()
	}

	data, err := p.store.Get(ctx, p.key)
	if errors.Is(err, statsstore.ErrNotFound) {
		p.logger.Debug(map[string]any{"key": p.key}, "No stats record stored")
		return domain.EmptyStats()
	}
	if err != nil {
		p.logger.Error(map[string]any{"key": p.key, "error": err}, "Failed to read stats")
		return domain.EmptyStats()
	}

	rec, err := domain.DecodeStats(data)
	if err != nil {
		p.logger.Error(map[string]any{"key": p.key, "error": err, "size": len(data)}, "Failed to decode stats")
		return domain.EmptyStats()
	}
	return rec
}
