package variation

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/shopspring/decimal"
)

// Selection maps variation type id to the chosen option id.
type Selection map[int64]int64

// ParseSelection reads options[<type_id>]=<option_id> query parameters.
// Malformed keys or values are ignored; the first value of a key wins.
func ParseSelection(q url.Values) Selection {
	sel := make(Selection)
	for key, values := range q {
		if !strings.HasPrefix(key, "options[") || !strings.HasSuffix(key, "]") || len(values) == 0 {
			continue
		}
		typeID, err := strconv.ParseInt(key[len("options["):len(key)-1], 10, 64)
		if err != nil {
			continue
		}
		optionID, err := strconv.ParseInt(strings.TrimSpace(values[0]), 10, 64)
		if err != nil {
			continue
		}
		sel[typeID] = optionID
	}
	return sel
}

// Values renders the selection back into query form.
func (s Selection) Values() url.Values {
	q := make(url.Values, len(s))
	for typeID, optionID := range s {
		q.Set("options["+strconv.FormatInt(typeID, 10)+"]", strconv.FormatInt(optionID, 10))
	}
	return q
}

type Options struct {
	PlaceholderImage string
}

// Resolution is the effective price, stock and identity of one selection.
type Resolution struct {
	ProductID int64 `json:"product_id"`
	// Selection is the completed selection after default fill.
	Selection   Selection       `json:"selection"`
	OptionIDs   model.OptionIDs `json:"option_ids"`
	VariationID *int64          `json:"variation_id"`
	Matched     bool            `json:"matched"`
	Price       decimal.Decimal `json:"price"`
	Stock       model.Stock     `json:"stock"`
	Purchasable bool            `json:"purchasable"`
	Images      []string        `json:"images"`
	// StaleOptionIDs lists submitted option ids that did not belong to their
	// type and were replaced by the type's default.
	StaleOptionIDs []int64 `json:"stale_option_ids,omitempty"`
}

// Key is the cart identity of the resolved selection.
func (r *Resolution) Key() LineKey {
	return LineKey{ProductID: r.ProductID, OptionKey: r.OptionIDs.Key()}
}

// Complete fills every type that has options: a valid choice is kept, an
// absent or stale one becomes the type's first option. Entries for unknown
// types are discarded.
func Complete(types []model.VariationType, sel Selection) (Selection, []int64) {
	out := make(Selection, len(types))
	var stale []int64
	for i := range types {
		t := &types[i]
		if len(t.Options) == 0 {
			continue
		}
		chosen, ok := sel[t.ID]
		if ok {
			if _, valid := t.Option(chosen); valid {
				out[t.ID] = chosen
				continue
			}
			stale = append(stale, chosen)
		}
		out[t.ID] = t.Options[0].ID
	}
	return out, stale
}

// Match returns the persisted variation whose option set equals ids. Malformed
// rows and the empty set never match.
func Match(variations []model.Variation, ids model.OptionIDs) (*model.Variation, bool) {
	if ids.Len() == 0 {
		return nil, false
	}
	for i := range variations {
		v := &variations[i]
		if v.Malformed {
			continue
		}
		if v.OptionIDs.Equal(ids) {
			return v, true
		}
	}
	return nil, false
}

// Resolve prices a selection against a product and its persisted variations.
// A selection that matches no row falls back to the product's base price and
// base quantity; that is a normal outcome, not an error.
func Resolve(p *model.Product, variations []model.Variation, sel Selection, opts Options) *Resolution {
	full, stale := Complete(p.VariationTypes, sel)

	ids := make([]int64, 0, len(full))
	for _, optionID := range full {
		ids = append(ids, optionID)
	}
	set := model.NewOptionIDs(ids...)

	res := &Resolution{
		ProductID:      p.ID,
		Selection:      full,
		OptionIDs:      set,
		Price:          p.BasePrice,
		Stock:          model.Stock{Available: p.Quantity},
		StaleOptionIDs: stale,
	}

	if v, ok := Match(variations, set); ok {
		id := v.ID
		res.VariationID = &id
		res.Matched = true
		if v.Price.Valid {
			res.Price = v.Price.Decimal
		}
		res.Stock = model.StockOf(v.Quantity)
	}

	res.Purchasable = res.Stock.Purchasable()
	res.Images = Gallery(p, full, opts.PlaceholderImage)
	return res
}

// Gallery picks the images of the first type, in type order, whose selected
// option carries images. Otherwise product images, otherwise the placeholder.
func Gallery(p *model.Product, full Selection, placeholder string) []string {
	for i := range p.VariationTypes {
		t := &p.VariationTypes[i]
		if !t.Kind.SupportsImages() {
			continue
		}
		optionID, ok := full[t.ID]
		if !ok {
			continue
		}
		if o, ok := t.Option(optionID); ok && len(o.Images) > 0 {
			return append([]string(nil), o.Images...)
		}
	}
	if len(p.Images) > 0 {
		return append([]string(nil), p.Images...)
	}
	if placeholder == "" {
		return []string{}
	}
	return []string{placeholder}
}
