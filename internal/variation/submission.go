package variation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/shopspring/decimal"
)

// RawRow is one grid line as it arrives from the admin form. Price and
// quantity are kept raw so a bad value can be reported against its field
// instead of failing the whole body.
type RawRow struct {
	ID        *int64          `json:"id"`
	OptionIDs json.RawMessage `json:"option_ids"`
	Price     json.RawMessage `json:"price"`
	Quantity  json.RawMessage `json:"quantity"`
}

func rowField(i int, name string) string {
	return fmt.Sprintf("variations[%d].%s", i, name)
}

// ParseSubmission converts raw rows into SubmittedRows, collecting one field
// error per bad value. Empty strings and null mean "not provided".
func ParseSubmission(raw []RawRow) ([]SubmittedRow, error) {
	verr := &apperror.ValidationError{}
	rows := make([]SubmittedRow, 0, len(raw))

	for i, r := range raw {
		row := SubmittedRow{ID: r.ID}

		ids, err := model.DecodeOptionIDs([]byte(r.OptionIDs))
		if err != nil || ids.Len() == 0 {
			verr.Add(rowField(i, "option_ids"), "validation.invalid_option_ids", nil)
		} else {
			row.OptionIDs = ids
		}

		price, err := parsePrice(r.Price)
		switch {
		case err != nil:
			verr.Add(rowField(i, "price"), "validation.not_a_number", map[string]any{"Value": scalarText(r.Price)})
		case price.Valid && price.Decimal.IsNegative():
			verr.Add(rowField(i, "price"), "validation.negative", nil)
		default:
			row.Price = price
		}

		qty, err := parseQuantity(r.Quantity)
		switch {
		case err != nil:
			verr.Add(rowField(i, "quantity"), "validation.not_an_integer", map[string]any{"Value": scalarText(r.Quantity)})
		case qty != nil && *qty < 0:
			verr.Add(rowField(i, "quantity"), "validation.negative", nil)
		default:
			row.Quantity = qty
		}

		rows = append(rows, row)
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return rows, nil
}

// scalarText unwraps a JSON scalar for display in a message.
func scalarText(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if unq, err := strconv.Unquote(s); err == nil {
		return unq
	}
	return s
}

func isBlank(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null" || strings.TrimSpace(scalarText(raw)) == ""
}

// parsePrice accepts a JSON number or a numeric string.
func parsePrice(raw json.RawMessage) (decimal.NullDecimal, error) {
	if isBlank(raw) {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(scalarText(raw)))
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// parseQuantity accepts a JSON integer or an integer string.
func parseQuantity(raw json.RawMessage) (*int64, error) {
	if isBlank(raw) {
		return nil, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(scalarText(raw)), 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
