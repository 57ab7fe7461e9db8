package variation

import (
	"time"

	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/shopspring/decimal"
)

const EventVariationsSaved = "VariationsSaved"

// SavedEvent is published after a grid save commits.
type SavedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	ProductID int64     `json:"product_id"`
	Created   int       `json:"created"`
	Updated   int       `json:"updated"`
	Deleted   []int64   `json:"deleted"`
	Timestamp time.Time `json:"timestamp"`
}

// SaveResult reports what a grid save did, with the grid as it now stands.
type SaveResult struct {
	Grid      *Grid `json:"grid"`
	Created   int   `json:"created"`
	Updated   int   `json:"updated"`
	Deleted   int   `json:"deleted"`
	Unchanged int   `json:"unchanged"`
	Unsaved   int   `json:"unsaved"`
	Dropped   int   `json:"dropped"`
}

// StorefrontView is everything the product page needs to resolve selections
// client side. It is what the view cache stores.
type StorefrontView struct {
	Product    model.Product     `json:"product"`
	Variations []model.Variation `json:"variations"`
}

// Summary is the search document for a product's variations.
type Summary struct {
	ProductID      int64           `json:"product_id"`
	MerchantID     string          `json:"merchant_id"`
	Name           string          `json:"name"`
	VariationCount int             `json:"variation_count"`
	MinPrice       decimal.Decimal `json:"min_price"`
	MaxPrice       decimal.Decimal `json:"max_price"`
	InStock        bool            `json:"in_stock"`
	OptionNames    []string        `json:"option_names"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

const SummaryIndex = "product_variations"

const SummaryMapping = `{
	"mappings": {
		"properties": {
			"product_id": { "type": "long" },
			"merchant_id": { "type": "keyword" },
			"name": { "type": "text" },
			"variation_count": { "type": "integer" },
			"min_price": { "type": "double" },
			"max_price": { "type": "double" },
			"in_stock": { "type": "boolean" },
			"option_names": { "type": "keyword" },
			"updated_at": { "type": "date" }
		}
	}
}`

// Summarize builds the search document. Unpriced rows take the base price, and
// the base price stays in range while some combination has no row.
func Summarize(p *model.Product, variations []model.Variation, now time.Time) Summary {
	s := Summary{
		ProductID:  p.ID,
		MerchantID: p.MerchantID,
		Name:       p.Name,
		UpdatedAt:  now,
	}
	for _, t := range p.VariationTypes {
		for _, o := range t.Options {
			s.OptionNames = append(s.OptionNames, o.Name)
		}
	}

	var prices []decimal.Decimal
	for _, v := range variations {
		if v.Malformed {
			continue
		}
		s.VariationCount++
		price := p.BasePrice
		if v.Price.Valid {
			price = v.Price.Decimal
		}
		prices = append(prices, price)
		if model.StockOf(v.Quantity).Purchasable() {
			s.InStock = true
		}
	}
	if s.VariationCount < CombinationCount(p.VariationTypes) || len(prices) == 0 {
		prices = append(prices, p.BasePrice)
		s.InStock = s.InStock || p.Quantity > 0
	}
	s.MinPrice = decimal.Min(prices[0], prices[1:]...)
	s.MaxPrice = decimal.Max(prices[0], prices[1:]...)
	return s
}
