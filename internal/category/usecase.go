package category

import (
	"context"

	"github.com/fekuna/omnipos-variation-service/internal/category/dto"
	"github.com/fekuna/omnipos-variation-service/internal/model"
)

type UseCase interface {
	ListPaths(ctx context.Context, filters *dto.CategoryFilters) ([]model.CategoryPath, error)
}
