package dto

import (
	"github.com/fekuna/omnipos-variation-service/internal/variation"
)

// SaveGridRequest is the full grid posted by the admin. option_ids in each row
// may be a JSON array or a JSON string holding one.
type SaveGridRequest struct {
	Variations []variation.RawRow `json:"variations"`
}

type StorefrontResponse struct {
	View       *variation.StorefrontView `json:"view"`
	Resolution *variation.Resolution     `json:"resolution"`
}

// LineItemRequest asks for a cart line for a selection. When Lines is set the
// new line is merged into it and the merged cart is returned.
type LineItemRequest struct {
	ProductID int64                `json:"product_id"`
	Options   variation.Selection  `json:"options"`
	Quantity  int64                `json:"quantity"`
	Lines     []variation.LineItem `json:"lines,omitempty"`
}

type LineItemResponse struct {
	Item  variation.LineItem   `json:"item"`
	Lines []variation.LineItem `json:"lines,omitempty"`
}

type ResolveRequest struct {
	ProductID int64               `json:"product_id"`
	Options   variation.Selection `json:"options"`
}

type ResolveResponse struct {
	Resolution *variation.Resolution `json:"resolution"`
}
