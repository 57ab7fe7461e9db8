package usecase

import (
	"context"

	"github.com/fekuna/omnipos-variation-service/internal/auth"
	"github.com/fekuna/omnipos-variation-service/internal/category"
	"github.com/fekuna/omnipos-variation-service/internal/category/dto"
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/fekuna/omnipos-variation-service/pkg/logger"
	"go.uber.org/zap"
)

type categoryUseCase struct {
	repo   category.Repository
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *categoryUseCase) ListPaths(ctx context.Context, filters *dto.CategoryFilters) ([]model.CategoryPath, error) {
	if filters.MerchantID == "" {
		filters.MerchantID = auth.GetMerchantID(ctx)
	}
	categories, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, err
	}
	paths := category.FlattenTree(categories)
	uc.logger.Debug("flattened category tree",
		zap.String("merchant_id", filters.MerchantID),
		zap.Int("count", len(paths)),
	)
	return paths, nil
}
