package variation

import (
	"context"

	"github.com/fekuna/omnipos-variation-service/internal/model"
)

type Repository interface {
	// FindByProduct returns every persisted row for the product. Rows whose
	// option_ids cannot be decoded are returned with Malformed set.
	FindByProduct(ctx context.Context, productID int64) ([]model.Variation, error)

	// ApplySavePlan runs all deletes, updates and creates of one grid save
	// in a single transaction.
	ApplySavePlan(ctx context.Context, plan *SavePlan) error
}
