package dto

import "github.com/fekuna/omnipos-variation-service/internal/model"

type MovementFilters struct {
	MerchantID string
	ProductID  int64
	Page       int
	PageSize   int
}

// ReserveStockInput reserves stock for every item of one order, all or none.
type ReserveStockInput struct {
	MerchantID string        `json:"merchant_id"`
	OrderID    string        `json:"order_id"`
	Items      []ReserveItem `json:"items"`
}

// ReserveItem names a configured product by its option set. An empty set, or
// one with no persisted variation, draws on the product's base quantity.
type ReserveItem struct {
	ProductID int64           `json:"product_id"`
	OptionIDs model.OptionIDs `json:"option_ids"`
	Quantity  int64           `json:"quantity"`
}

type ReserveStockResponse struct {
	Movements []model.StockMovement `json:"movements"`
	Duplicate bool                  `json:"duplicate"`
}

type ListMovementsResponse struct {
	Movements []model.StockMovement `json:"movements"`
	Total     int                   `json:"total"`
	Page      int                   `json:"page"`
	PageSize  int                   `json:"page_size"`
}
