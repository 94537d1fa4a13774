package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	TopicCart   = "cart_events"
	TopicOrder  = "order_events"
	TopicReview = "review_events"

	publishTimeout = 5 * time.Second
)

// Publisher delivers domain events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// CatalogCache is a read-through cache for catalog responses.
type CatalogCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Invalidate(ctx context.Context) error
}

type ProductSearcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.ProductListing, error)
}

// publish is fire-and-log: a failed event never fails the operation that produced it.
func publish(ctx context.Context, p Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(pctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", topic, "type", event["type"], "error", err)
	}
}

func invalidate(ctx context.Context, c CatalogCache) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx); err != nil {
		logging.FromContext(ctx).Warn("cache_invalidate_error", "error", err)
	}
}
