package inventory

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-variation-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-variation-service/internal/model"
)

// ErrAlreadyReserved is returned when an order's stock was reserved before.
var ErrAlreadyReserved = errors.New("order already reserved")

type Repository interface {
	// ReserveStock decrements stock for every item in one transaction and
	// logs a movement per item. Any shortage aborts the whole order.
	ReserveStock(ctx context.Context, input *dto.ReserveStockInput) ([]model.StockMovement, error)

	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
