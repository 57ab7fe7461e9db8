package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/auth"
	"github.com/fekuna/omnipos-variation-service/internal/inventory"
	"github.com/fekuna/omnipos-variation-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/fekuna/omnipos-variation-service/pkg/logger"
	"github.com/fekuna/omnipos-variation-service/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

// ViewInvalidator drops cached storefront views after stock changes.
type ViewInvalidator interface {
	InvalidateView(ctx context.Context, productIDs ...int64)
}

type inventoryUseCase struct {
	repo   inventory.Repository
	locker Locker
	views  ViewInvalidator
	logger logger.ZapLogger

	lockRetries int
	lockWait    time.Duration
}

// NewInventoryUseCase builds the stock usecase. locker and views may be nil.
func NewInventoryUseCase(repo inventory.Repository, locker Locker, views ViewInvalidator, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:        repo,
		locker:      locker,
		views:       views,
		logger:      log,
		lockRetries: 3,
		lockWait:    100 * time.Millisecond,
	}
}

func validateReservation(input *dto.ReserveStockInput) error {
	verr := &apperror.ValidationError{}
	if input.OrderID == "" {
		verr.Add("order_id", "validation.required", map[string]any{"Field": "order_id"})
	}
	if len(input.Items) == 0 {
		verr.Add("items", "validation.required", map[string]any{"Field": "items"})
	}
	for i, it := range input.Items {
		if it.ProductID <= 0 {
			verr.Add(fmt.Sprintf("items[%d].product_id", i), "validation.required", map[string]any{"Field": "product_id"})
		}
		if it.Quantity <= 0 {
			verr.Add(fmt.Sprintf("items[%d].quantity", i), "validation.negative", map[string]any{"Field": "quantity"})
		}
	}
	return verr.OrNil()
}

func (uc *inventoryUseCase) ReserveStock(ctx context.Context, input *dto.ReserveStockInput) (*dto.ReserveStockResponse, error) {
	if err := validateReservation(input); err != nil {
		metrics.StockReservationsTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	// 0. Acquire Lock
	if uc.locker != nil {
		lockKey := fmt.Sprintf("lock:stock:order:%s", input.OrderID)
		lockValue := uuid.New().String()

		acquired := false
		for i := 0; i < uc.lockRetries; i++ {
			ok, err := uc.locker.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
			if err != nil {
				uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
			}
			if ok {
				acquired = true
				break
			}
			time.Sleep(uc.lockWait)
		}
		if !acquired {
			metrics.StockReservationsTotal.WithLabelValues("busy").Inc()
			return nil, apperror.ErrBusy
		}
		defer func() {
			if err := uc.locker.ReleaseLock(context.Background(), lockKey, lockValue); err != nil {
				uc.logger.Warn("failed to release lock", zap.String("key", lockKey), zap.Error(err))
			}
		}()
	}

	// 1. Reserve
	movements, err := uc.repo.ReserveStock(ctx, input)
	switch {
	case errors.Is(err, inventory.ErrAlreadyReserved):
		metrics.StockReservationsTotal.WithLabelValues("duplicate").Inc()
		uc.logger.Info("order already reserved", zap.String("order_id", input.OrderID))
		return &dto.ReserveStockResponse{Duplicate: true}, nil
	case errors.Is(err, apperror.ErrOutOfStock):
		metrics.StockReservationsTotal.WithLabelValues("out_of_stock").Inc()
		uc.logger.Warn("insufficient stock for order", zap.String("order_id", input.OrderID), zap.Error(err))
		return nil, err
	case err != nil:
		metrics.StockReservationsTotal.WithLabelValues("failure").Inc()
		uc.logger.Error("failed to reserve stock", zap.String("order_id", input.OrderID), zap.Error(err))
		return nil, err
	}
	metrics.StockReservationsTotal.WithLabelValues("ok").Inc()

	// 2. Invalidate storefront views of touched products
	if uc.views != nil {
		seen := make(map[int64]bool, len(movements))
		var ids []int64
		for _, m := range movements {
			if !seen[m.ProductID] {
				seen[m.ProductID] = true
				ids = append(ids, m.ProductID)
			}
		}
		uc.views.InvalidateView(ctx, ids...)
	}

	uc.logger.Info("stock reserved",
		zap.String("order_id", input.OrderID),
		zap.Int("lines", len(movements)),
	)
	return &dto.ReserveStockResponse{Movements: movements}, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	if filters.MerchantID == "" {
		filters.MerchantID = auth.GetMerchantID(ctx)
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	return uc.repo.ListMovements(ctx, filters)
}
