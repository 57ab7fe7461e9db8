package variation

import (
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// shirt is a product with Color (Red=1, Blue=2) and Size (S=10, L=11).
func shirt() *model.Product {
	return &model.Product{
		BaseModel:  model.BaseModel{ID: 42},
		MerchantID: "m-1",
		Name:       "Shirt",
		BasePrice:  decimal.RequireFromString("10.00"),
		Quantity:   5,
		Images:     pq.StringArray{"shirt.jpg"},
		VariationTypes: []model.VariationType{
			{
				BaseModel: model.BaseModel{ID: 1},
				Name:      "Color",
				Kind:      model.KindImageSwatch,
				Options: []model.VariationOption{
					{BaseModel: model.BaseModel{ID: 1}, TypeID: 1, Name: "Red", Images: pq.StringArray{"red.jpg"}},
					{BaseModel: model.BaseModel{ID: 2}, TypeID: 1, Name: "Blue"},
				},
			},
			{
				BaseModel: model.BaseModel{ID: 2},
				Name:      "Size",
				Kind:      model.KindDropdown,
				Options: []model.VariationOption{
					{BaseModel: model.BaseModel{ID: 10}, TypeID: 2, Name: "S"},
					{BaseModel: model.BaseModel{ID: 11}, TypeID: 2, Name: "L"},
				},
			},
		},
	}
}

func qty(n int64) *int64 { return &n }

func price(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func persisted(id int64, p string, q *int64, ids ...int64) model.Variation {
	set := model.NewOptionIDs(ids...)
	return model.Variation{
		BaseModel: model.BaseModel{ID: id},
		ProductID: 42,
		OptionIDs: set,
		OptionKey: set.Key(),
		Price:     price(p),
		Quantity:  q,
	}
}

func malformed(id int64) model.Variation {
	return model.Variation{
		BaseModel:    model.BaseModel{ID: id},
		ProductID:    42,
		RawOptionIDs: []byte(`not json`),
		Malformed:    true,
	}
}

// saved holds the rows {Red,S}=15.00/3 and {Blue,L}=18.00/0.
func saved() []model.Variation {
	return []model.Variation{
		persisted(100, "15.00", qty(3), 1, 10),
		persisted(101, "18.00", qty(0), 2, 11),
	}
}
