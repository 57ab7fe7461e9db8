package inventory

import (
	"context"

	"github.com/fekuna/omnipos-variation-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-variation-service/internal/model"
)

type UseCase interface {
	ReserveStock(ctx context.Context, input *dto.ReserveStockInput) (*dto.ReserveStockResponse, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
