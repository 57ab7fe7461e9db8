package model

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is read-only input to the variation engine: base price, base stock
// and the ordered list of variation types.
type Product struct {
	BaseModel
	MerchantID     string          `db:"merchant_id" json:"merchant_id"`
	CategoryID     *int64          `db:"category_id" json:"category_id"`
	Name           string          `db:"name" json:"name"`
	BasePrice      decimal.Decimal `db:"base_price" json:"base_price"`
	Quantity       int64           `db:"quantity" json:"quantity"`
	Images         pq.StringArray  `db:"images" json:"images"`
	VariationTypes []VariationType `db:"-" json:"variation_types"`
}

type VariationType struct {
	BaseModel
	ProductID int64             `db:"product_id" json:"product_id"`
	Name      string            `db:"name" json:"name"`
	Kind      VariationKind     `db:"kind" json:"kind"`
	Position  int               `db:"position" json:"position"`
	Options   []VariationOption `db:"-" json:"options"`
}

// OptionIDs returns the type's option ids in display order.
func (t *VariationType) OptionIDs() []int64 {
	ids := make([]int64, len(t.Options))
	for i, o := range t.Options {
		ids[i] = o.ID
	}
	return ids
}

// Option looks an option up by id within this type.
func (t *VariationType) Option(id int64) (*VariationOption, bool) {
	for i := range t.Options {
		if t.Options[i].ID == id {
			return &t.Options[i], true
		}
	}
	return nil, false
}

type VariationOption struct {
	BaseModel
	TypeID   int64          `db:"type_id" json:"type_id"`
	Name     string         `db:"name" json:"name"`
	Position int            `db:"position" json:"position"`
	Images   pq.StringArray `db:"images" json:"images"`
}
