package variation

import (
	"fmt"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/shopspring/decimal"
)

// LineKey identifies a cart line: the product plus the canonical option set.
// Two selections of the same options in any order share a key.
type LineKey struct {
	ProductID int64
	OptionKey string
}

func (k LineKey) String() string {
	return fmt.Sprintf("%d:%s", k.ProductID, k.OptionKey)
}

// LineItem is the unit the cart persists per configured product.
type LineItem struct {
	ProductID   int64           `json:"product_id"`
	VariationID *int64          `json:"variation_id"`
	OptionIDs   model.OptionIDs `json:"option_ids"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Stock       model.Stock     `json:"stock"`
	Quantity    int64           `json:"quantity"`
}

func (l LineItem) Key() LineKey {
	return LineKey{ProductID: l.ProductID, OptionKey: l.OptionIDs.Key()}
}

func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// NewLineItem turns a resolution into a cart line for qty units.
func NewLineItem(res *Resolution, qty int64) (LineItem, error) {
	if qty <= 0 {
		return LineItem{}, apperror.NewValidationError("quantity", "validation.negative", nil)
	}
	if !res.Stock.CanFulfil(qty) {
		return LineItem{}, fmt.Errorf("product %d %s: %w", res.ProductID, res.OptionIDs, apperror.ErrOutOfStock)
	}
	var variationID *int64
	if res.VariationID != nil {
		id := *res.VariationID
		variationID = &id
	}
	return LineItem{
		ProductID:   res.ProductID,
		VariationID: variationID,
		OptionIDs:   res.OptionIDs,
		UnitPrice:   res.Price,
		Stock:       res.Stock,
		Quantity:    qty,
	}, nil
}

// AddToLines merges item into lines, accumulating quantity onto an existing
// line with the same key. The combined quantity must still be in stock.
func AddToLines(lines []LineItem, item LineItem) ([]LineItem, error) {
	key := item.Key()
	for i := range lines {
		if lines[i].Key() != key {
			continue
		}
		total := lines[i].Quantity + item.Quantity
		if !item.Stock.CanFulfil(total) {
			return lines, fmt.Errorf("line %s: %w", key, apperror.ErrOutOfStock)
		}
		out := append([]LineItem(nil), lines...)
		out[i].Quantity = total
		out[i].UnitPrice = item.UnitPrice
		out[i].Stock = item.Stock
		return out, nil
	}
	return append(append([]LineItem(nil), lines...), item), nil
}
