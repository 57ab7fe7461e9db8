package model

import "time"

const (
	MovementSale = "sale"

	ReferenceOrder = "order"
)

// StockMovement audits one stock change. Before and after are nil when the
// reserved variation has unbounded stock.
type StockMovement struct {
	ID             string    `db:"id" json:"id"`
	MerchantID     string    `db:"merchant_id" json:"merchant_id"`
	ProductID      int64     `db:"product_id" json:"product_id"`
	VariationID    *int64    `db:"variation_id" json:"variation_id"`
	OptionKey      string    `db:"option_key" json:"option_key"`
	MovementType   string    `db:"movement_type" json:"movement_type"`
	QuantityChange int64     `db:"quantity_change" json:"quantity_change"`
	QuantityBefore *int64    `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  *int64    `db:"quantity_after" json:"quantity_after"`
	ReferenceType  *string   `db:"reference_type" json:"reference_type"`
	ReferenceID    *string   `db:"reference_id" json:"reference_id"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
