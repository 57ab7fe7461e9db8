package usecase

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/auth"
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/fekuna/omnipos-variation-service/internal/product"
	"github.com/fekuna/omnipos-variation-service/internal/variation"
	"github.com/fekuna/omnipos-variation-service/pkg/logger"
	"go.uber.org/zap"
)

type productUseCase struct {
	repo   product.Repository
	cache  variation.Cache
	logger logger.ZapLogger
}

// NewProductUseCase builds the product usecase. cache may be nil.
func NewProductUseCase(repo product.Repository, cache variation.Cache, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

func (uc *productUseCase) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccess(ctx, p.MerchantID) {
		return nil, apperror.ErrForbidden
	}
	return p, nil
}

func (uc *productUseCase) GetDraft(ctx context.Context, id int64) (*variation.Draft, error) {
	p, err := uc.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	d := variation.DraftFromTypes(p.VariationTypes)
	return &d, nil
}

func (uc *productUseCase) SaveVariationTypes(ctx context.Context, id int64, draft variation.Draft) (*model.Product, error) {
	if _, err := uc.GetProduct(ctx, id); err != nil {
		return nil, err
	}

	types, err := draft.Clean()
	if err != nil {
		return nil, err
	}

	if err := uc.repo.SaveTypes(ctx, id, types); err != nil {
		if !errors.Is(err, apperror.ErrValidation) {
			uc.logger.Error("failed to save variation types", zap.Int64("product_id", id), zap.Error(err))
		}
		return nil, err
	}

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := variation.ValidateTypes(p.VariationTypes); err != nil {
		uc.logger.Warn("variation types share option ids", zap.Int64("product_id", id), zap.Error(err))
	}

	// Invalidate Cache
	uc.invalidateView(ctx, id)

	uc.logger.Info("variation types saved",
		zap.Int64("product_id", id),
		zap.Int("types", len(p.VariationTypes)),
		zap.Int("combinations", variation.CombinationCount(p.VariationTypes)),
	)
	return p, nil
}

func (uc *productUseCase) invalidateView(ctx context.Context, id int64) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, variation.ViewCacheKey(id)); err != nil {
		uc.logger.Warn("failed to invalidate storefront view", zap.Int64("product_id", id), zap.Error(err))
	}
}
