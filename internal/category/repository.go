package category

import (
	"context"

	"github.com/fekuna/omnipos-variation-service/internal/category/dto"
	"github.com/fekuna/omnipos-variation-service/internal/model"
)

type Repository interface {
	FindAll(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, error)
}
