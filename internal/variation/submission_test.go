package variation

import (
	"encoding/json"
	"testing"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(ids, price, quantity string) RawRow {
	r := RawRow{OptionIDs: json.RawMessage(ids)}
	if price != "" {
		r.Price = json.RawMessage(price)
	}
	if quantity != "" {
		r.Quantity = json.RawMessage(quantity)
	}
	return r
}

func TestParseSubmission_NumbersAndNumericStrings(t *testing.T) {
	rows, err := ParseSubmission([]RawRow{
		raw(`[10,1]`, `"15.50"`, `"3"`),
		raw(`[2,11]`, `18`, `0`),
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, model.NewOptionIDs(1, 10), rows[0].OptionIDs)
	assert.True(t, rows[0].Price.Decimal.Equal(decimal.RequireFromString("15.5")))
	assert.Equal(t, int64(3), *rows[0].Quantity)

	assert.True(t, rows[1].Price.Decimal.Equal(decimal.NewFromInt(18)))
	assert.Equal(t, int64(0), *rows[1].Quantity)
}

func TestParseSubmission_BlankMeansNotProvided(t *testing.T) {
	rows, err := ParseSubmission([]RawRow{
		raw(`[1,10]`, `""`, `null`),
		raw(`[1,11]`, ``, ``),
		raw(`[2,10]`, `"  "`, `""`),
	})
	require.NoError(t, err)
	for _, r := range rows[:2] {
		assert.False(t, r.Price.Valid)
		assert.Nil(t, r.Quantity)
	}
	assert.Nil(t, rows[2].Quantity)
}

func TestParseSubmission_StringEncodedOptionIDs(t *testing.T) {
	rows, err := ParseSubmission([]RawRow{raw(`"[11,2]"`, `1`, `1`)})
	require.NoError(t, err)
	assert.Equal(t, model.NewOptionIDs(2, 11), rows[0].OptionIDs)
}

func TestParseSubmission_KeepsID(t *testing.T) {
	id := int64(100)
	r := raw(`[1,10]`, `1`, `1`)
	r.ID = &id

	rows, err := ParseSubmission([]RawRow{r})
	require.NoError(t, err)
	assert.Equal(t, &id, rows[0].ID)
}

func TestParseSubmission_CollectsFieldErrors(t *testing.T) {
	_, err := ParseSubmission([]RawRow{
		raw(`[1,10]`, `"abc"`, `"1.5"`),
		raw(`[]`, `"-1"`, `-2`),
		raw(`"x"`, `1`, `1`),
	})
	require.ErrorIs(t, err, apperror.ErrValidation)

	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)

	got := map[string]string{}
	for _, f := range verr.Fields {
		got[f.Field] = f.MessageID
	}
	assert.Equal(t, map[string]string{
		"variations[0].price":      "validation.not_a_number",
		"variations[0].quantity":   "validation.not_an_integer",
		"variations[1].option_ids": "validation.invalid_option_ids",
		"variations[1].price":      "validation.negative",
		"variations[1].quantity":   "validation.negative",
		"variations[2].option_ids": "validation.invalid_option_ids",
	}, got)

	assert.Equal(t, "abc", verr.Fields[0].Data["Value"])
}

func TestParseSubmission_Empty(t *testing.T) {
	rows, err := ParseSubmission(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
