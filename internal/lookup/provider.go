package lookup

import (
	"context"
	"strings"

	"rx-vendas/internal/entity"
	"rx-vendas/internal/logger"
	"rx-vendas/internal/metrics"

	"go.uber.org/zap"
)

const DefaultLimit = 5

// Directory resolves a name filter into references, in backend order.
type Directory interface {
	Find(ctx context.Context, kind entity.Kind, name string) ([]entity.Reference, error)
}

// Provider answers search-as-you-type queries. It never caches and never
// returns an error: failures are logged and become an empty list.
type Provider struct {
	dir   Directory
	limit int
	stats *metrics.Lookup
}

func NewProvider(dir Directory, limit int, stats *metrics.Lookup) *Provider {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if stats == nil {
		stats = &metrics.Lookup{}
	}
	return &Provider{dir: dir, limit: limit, stats: stats}
}

func (p *Provider) Search(ctx context.Context, kind entity.Kind, query string) []entity.Reference {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	p.stats.Searches.Inc()

	refs, err := p.dir.Find(ctx, kind, query)
	if err != nil {
		p.stats.Failures.Inc()
		logger.FromCtx(ctx).Warn("lookup failed",
			zap.String("kind", string(kind)),
			zap.String("query", query),
			zap.Error(err),
		)
		return []entity.Reference{}
	}

	if len(refs) > p.limit {
		refs = refs[:p.limit]
	}
	return refs
}

func (p *Provider) Stats() *metrics.Lookup {
	return p.stats
}
