package variation

import (
	"context"
	"fmt"
	"time"
)

// Cache stores serialized storefront views.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Publisher emits change events.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Indexer keeps the search index in step with saved variations.
type Indexer interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc any) error
}

func ViewCacheKey(productID int64) string {
	return fmt.Sprintf("variations:view:%d", productID)
}
