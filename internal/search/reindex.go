package search

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/repo"
)

const reindexBatch = 200

// Reindex copies every published product from the database into the index.
func Reindex(ctx context.Context, r *repo.GormRepo, p *Products) (int, error) {
	if err := p.EnsureIndex(ctx); err != nil {
		return 0, err
	}

	done := 0
	for offset := 0; ; offset += reindexBatch {
		_, items, err := r.ListProducts(ctx, repo.ProductFilter{}, offset, reindexBatch)
		if err != nil {
			return done, err
		}
		if len(items) == 0 {
			return done, nil
		}
		n, err := p.BulkIndex(ctx, items)
		done += n
		if err != nil {
			return done, err
		}
		if len(items) < reindexBatch {
			return done, nil
		}
	}
}
