package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/auth"
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/fekuna/omnipos-variation-service/internal/product"
	"github.com/fekuna/omnipos-variation-service/internal/variation"
	"github.com/fekuna/omnipos-variation-service/pkg/cache"
	"github.com/fekuna/omnipos-variation-service/pkg/logger"
	"github.com/fekuna/omnipos-variation-service/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Config struct {
	PlaceholderImage string
	CacheTTL         time.Duration
}

type variationUseCase struct {
	products  product.UseCase
	repo      variation.Repository
	cache     variation.Cache
	publisher variation.Publisher
	es        variation.Indexer
	cfg       Config
	logger    logger.ZapLogger

	// now is replaced in tests.
	now func() time.Time
}

// NewVariationUseCase wires the variation engine to storage. cache, publisher
// and es are optional and may be nil.
func NewVariationUseCase(
	products product.UseCase,
	repo variation.Repository,
	cache variation.Cache,
	publisher variation.Publisher,
	es variation.Indexer,
	cfg Config,
	log logger.ZapLogger,
) variation.UseCase {
	return &variationUseCase{
		products:  products,
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		es:        es,
		cfg:       cfg,
		logger:    log,
		now:       time.Now,
	}
}

// loadVariations reads the product's rows and reports the undecodable ones.
func (uc *variationUseCase) loadVariations(ctx context.Context, productID int64) ([]model.Variation, error) {
	rows, err := uc.repo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	for _, v := range rows {
		if v.Malformed {
			metrics.MalformedRowsTotal.Inc()
			uc.logger.Warn("skipping variation with malformed option_ids",
				zap.Int64("product_id", productID),
				zap.Int64("variation_id", v.ID),
				zap.ByteString("option_ids", v.RawOptionIDs),
				zap.Error(v.DecodeErr),
			)
		}
	}
	return rows, nil
}

func (uc *variationUseCase) GetGrid(ctx context.Context, productID int64) (*variation.Grid, error) {
	p, err := uc.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	rows, err := uc.loadVariations(ctx, productID)
	if err != nil {
		return nil, err
	}
	return variation.Reconcile(p.VariationTypes, rows), nil
}

func (uc *variationUseCase) SaveGrid(ctx context.Context, productID int64, raw []variation.RawRow) (*variation.SaveResult, error) {
	p, err := uc.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	submitted, err := variation.ParseSubmission(raw)
	if err != nil {
		metrics.RecordSave("validation", 0, 0, 0)
		return nil, err
	}

	existing, err := uc.loadVariations(ctx, productID)
	if err != nil {
		return nil, err
	}

	plan, err := variation.PlanSave(productID, p.VariationTypes, existing, submitted)
	if err != nil {
		metrics.RecordSave("validation", 0, 0, 0)
		return nil, err
	}
	for _, d := range plan.Dropped {
		uc.logger.Debug("dropping unreachable combination",
			zap.Int64("product_id", productID),
			zap.Stringer("option_ids", d.OptionIDs),
		)
	}

	if !plan.IsEmpty() {
		if err := uc.repo.ApplySavePlan(ctx, plan); err != nil {
			metrics.RecordSave("failure", 0, 0, 0)
			uc.logger.Error("failed to save variations", zap.Int64("product_id", productID), zap.Error(err))
			if !errors.Is(err, apperror.ErrPersistence) {
				err = &apperror.PersistenceError{ProductID: productID, Op: "save variations", Err: err}
			}
			return nil, err
		}
	}
	metrics.RecordSave("ok", len(plan.Create), len(plan.Update), len(plan.Delete))

	saved, err := uc.loadVariations(ctx, productID)
	if err != nil {
		return nil, err
	}

	if !plan.IsEmpty() {
		// Dropped before returning so the next storefront read sees this save.
		uc.InvalidateView(ctx, productID)
		go uc.publishSaved(context.Background(), plan)
		go uc.syncToElastic(context.Background(), p, saved)
	}

	uc.logger.Info("variations saved",
		zap.Int64("product_id", productID),
		zap.Int("created", len(plan.Create)),
		zap.Int("updated", len(plan.Update)),
		zap.Int("deleted", len(plan.Delete)),
		zap.Int("dropped", len(plan.Dropped)),
	)

	return &variation.SaveResult{
		Grid:      variation.Reconcile(p.VariationTypes, saved),
		Created:   len(plan.Create),
		Updated:   len(plan.Update),
		Deleted:   len(plan.Delete),
		Unchanged: plan.Unchanged,
		Unsaved:   plan.Unsaved,
		Dropped:   len(plan.Dropped),
	}, nil
}

func (uc *variationUseCase) publishSaved(ctx context.Context, plan *variation.SavePlan) {
	if uc.publisher == nil {
		return
	}
	event := variation.SavedEvent{
		EventID:   uuid.New().String(),
		EventType: variation.EventVariationsSaved,
		ProductID: plan.ProductID,
		Created:   len(plan.Create),
		Updated:   len(plan.Update),
		Deleted:   plan.Delete,
		Timestamp: uc.now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		uc.logger.Error("failed to encode event", zap.Error(err))
		return
	}
	if err := uc.publisher.Publish(ctx, strconv.FormatInt(plan.ProductID, 10), data); err != nil {
		uc.logger.Error("failed to publish event",
			zap.String("event_type", event.EventType),
			zap.Int64("product_id", plan.ProductID),
			zap.Error(err),
		)
	}
}

func (uc *variationUseCase) syncToElastic(ctx context.Context, p *model.Product, rows []model.Variation) {
	if uc.es == nil {
		return
	}
	_ = uc.es.CreateIndex(ctx, variation.SummaryIndex, variation.SummaryMapping)

	doc := variation.Summarize(p, rows, uc.now().UTC())
	if err := uc.es.Index(ctx, variation.SummaryIndex, strconv.FormatInt(p.ID, 10), doc); err != nil {
		uc.logger.Error("failed to index variation summary", zap.Int64("product_id", p.ID), zap.Error(err))
	}
}

// GetStorefrontView loads the product page data, going through the view cache
// when one is configured. Cache failures fall back to the database.
func (uc *variationUseCase) GetStorefrontView(ctx context.Context, productID int64) (*variation.StorefrontView, error) {
	key := variation.ViewCacheKey(productID)
	if uc.cache != nil {
		data, err := uc.cache.Get(ctx, key)
		switch {
		case err == nil:
			var view variation.StorefrontView
			if err := json.Unmarshal(data, &view); err == nil {
				if !auth.CanAccess(ctx, view.Product.MerchantID) {
					return nil, apperror.ErrForbidden
				}
				return &view, nil
			}
			uc.logger.Warn("discarding undecodable cached view", zap.Int64("product_id", productID))
		case !errors.Is(err, cache.ErrMiss):
			uc.logger.Warn("view cache read failed", zap.Int64("product_id", productID), zap.Error(err))
		}
	}

	p, err := uc.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	rows, err := uc.loadVariations(ctx, productID)
	if err != nil {
		return nil, err
	}

	// Malformed rows never match; they are left out so the cached copy cannot
	// resurrect them with an empty option set.
	view := &variation.StorefrontView{Product: *p, Variations: make([]model.Variation, 0, len(rows))}
	for _, v := range rows {
		if !v.Malformed {
			view.Variations = append(view.Variations, v)
		}
	}

	if uc.cache != nil {
		if data, err := json.Marshal(view); err == nil {
			if err := uc.cache.Set(ctx, key, data, uc.cfg.CacheTTL); err != nil {
				uc.logger.Warn("view cache write failed", zap.Int64("product_id", productID), zap.Error(err))
			}
		}
	}
	return view, nil
}

func (uc *variationUseCase) Resolve(ctx context.Context, productID int64, sel variation.Selection) (*variation.Resolution, error) {
	view, err := uc.GetStorefrontView(ctx, productID)
	if err != nil {
		return nil, err
	}
	res := variation.Resolve(&view.Product, view.Variations, sel, variation.Options{
		PlaceholderImage: uc.cfg.PlaceholderImage,
	})
	metrics.RecordResolution(res.Matched)
	if len(res.StaleOptionIDs) > 0 {
		uc.logger.Debug("ignored stale selection",
			zap.Int64("product_id", productID),
			zap.Int64s("option_ids", res.StaleOptionIDs),
		)
	}
	return res, nil
}

func (uc *variationUseCase) BuildLineItem(ctx context.Context, productID int64, sel variation.Selection, qty int64) (variation.LineItem, error) {
	res, err := uc.Resolve(ctx, productID, sel)
	if err != nil {
		return variation.LineItem{}, err
	}
	return variation.NewLineItem(res, qty)
}

// InvalidateView drops the cached storefront view of each product.
func (uc *variationUseCase) InvalidateView(ctx context.Context, productIDs ...int64) {
	if uc.cache == nil || len(productIDs) == 0 {
		return
	}
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = variation.ViewCacheKey(id)
	}
	if err := uc.cache.Delete(ctx, keys...); err != nil {
		uc.logger.Warn("failed to invalidate storefront view", zap.Int64s("product_ids", productIDs), zap.Error(err))
	}
}
