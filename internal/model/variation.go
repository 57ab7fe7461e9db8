package model

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// Variation is one purchasable combination with its price and stock override.
// A NULL price means "not yet priced"; a NULL quantity means unbounded stock.
type Variation struct {
	BaseModel
	ProductID    int64               `db:"product_id" json:"product_id"`
	RawOptionIDs []byte              `db:"option_ids" json:"-"`
	OptionKey    string              `db:"option_key" json:"-"`
	Price        decimal.NullDecimal `db:"price" json:"price"`
	Quantity     *int64              `db:"quantity" json:"quantity"`

	OptionIDs OptionIDs `db:"-" json:"option_ids"`
	// Malformed marks a row whose stored option_ids could not be decoded. Such
	// rows never match a selection and are cleaned up on the next grid save.
	Malformed bool `db:"-" json:"-"`
	// DecodeErr is why a Malformed row failed to decode.
	DecodeErr error `db:"-" json:"-"`
}

// DecodeOptionIDs fills OptionIDs from the stored column value.
func (v *Variation) DecodeOptionIDs() error {
	ids, err := DecodeOptionIDs(v.RawOptionIDs)
	if err != nil {
		v.OptionIDs = nil
		v.Malformed = true
		v.DecodeErr = err
		return err
	}
	v.OptionIDs = ids
	v.OptionKey = ids.Key()
	v.Malformed = false
	v.DecodeErr = nil
	return nil
}

// Stock is the availability derived from a quantity override.
type Stock struct {
	Unbounded bool
	Available int64
}

func UnboundedStock() Stock { return Stock{Unbounded: true} }

func StockOf(quantity *int64) Stock {
	if quantity == nil {
		return UnboundedStock()
	}
	return Stock{Available: *quantity}
}

// Purchasable reports whether at least one unit can be added to a cart.
func (s Stock) Purchasable() bool {
	return s.Unbounded || s.Available > 0
}

func (s Stock) CanFulfil(n int64) bool {
	if n <= 0 {
		return false
	}
	return s.Unbounded || s.Available >= n
}

func (s Stock) MarshalJSON() ([]byte, error) {
	if s.Unbounded {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(s.Available, 10)), nil
}

func (s *Stock) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = UnboundedStock()
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = Stock{Available: n}
	return nil
}
