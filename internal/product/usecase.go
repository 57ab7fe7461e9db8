package product

import (
	"context"

	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/fekuna/omnipos-variation-service/internal/variation"
)

type UseCase interface {
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	GetDraft(ctx context.Context, id int64) (*variation.Draft, error)
	SaveVariationTypes(ctx context.Context, id int64, draft variation.Draft) (*model.Product, error)
}
