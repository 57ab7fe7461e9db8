package variation

import (
	"net/url"
	"testing"

	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	q := url.Values{
		"options[1]":  {"2", "1"},
		"options[2]":  {" 11 "},
		"options[x]":  {"1"},
		"options[3]":  {"abc"},
		"options[4":   {"1"},
		"unrelated":   {"7"},
		"options[5]":  {},
		"options[-6]": {"9"},
	}

	assert.Equal(t, Selection{1: 2, 2: 11, -6: 9}, ParseSelection(q))
}

func TestSelection_ValuesRoundTrip(t *testing.T) {
	sel := Selection{1: 2, 2: 11}
	assert.Equal(t, sel, ParseSelection(sel.Values()))
}

func TestComplete(t *testing.T) {
	types := shirt().VariationTypes

	full, stale := Complete(types, nil)
	assert.Equal(t, Selection{1: 1, 2: 10}, full)
	assert.Empty(t, stale)

	full, stale = Complete(types, Selection{1: 2, 2: 99, 77: 5})
	assert.Equal(t, Selection{1: 2, 2: 10}, full)
	assert.Equal(t, []int64{99}, stale)
}

func TestResolve_MatchedRow(t *testing.T) {
	res := Resolve(shirt(), saved(), Selection{1: 1, 2: 10}, Options{})

	assert.True(t, res.Matched)
	require.NotNil(t, res.VariationID)
	assert.Equal(t, int64(100), *res.VariationID)
	assert.True(t, res.Price.Equal(decimal.RequireFromString("15")))
	assert.Equal(t, model.Stock{Available: 3}, res.Stock)
	assert.True(t, res.Purchasable)
	assert.Equal(t, []string{"red.jpg"}, res.Images)
	assert.Equal(t, LineKey{ProductID: 42, OptionKey: "1,10"}, res.Key())
}

func TestResolve_SoldOutRow(t *testing.T) {
	res := Resolve(shirt(), saved(), Selection{1: 2, 2: 11}, Options{})

	assert.True(t, res.Matched)
	assert.True(t, res.Price.Equal(decimal.RequireFromString("18")))
	assert.False(t, res.Purchasable)
	assert.Equal(t, []string{"shirt.jpg"}, res.Images, "Blue has no images")
}

func TestResolve_FallsBackToBase(t *testing.T) {
	res := Resolve(shirt(), saved(), Selection{1: 1, 2: 11}, Options{})

	assert.False(t, res.Matched)
	assert.Nil(t, res.VariationID)
	assert.True(t, res.Price.Equal(decimal.RequireFromString("10")))
	assert.Equal(t, model.Stock{Available: 5}, res.Stock)
	assert.True(t, res.Purchasable)
	assert.Equal(t, model.NewOptionIDs(1, 11), res.OptionIDs)
}

func TestResolve_DefaultsAndStale(t *testing.T) {
	res := Resolve(shirt(), saved(), Selection{1: 99}, Options{})

	assert.Equal(t, Selection{1: 1, 2: 10}, res.Selection)
	assert.Equal(t, []int64{99}, res.StaleOptionIDs)
	assert.True(t, res.Matched)
	assert.Equal(t, int64(100), *res.VariationID)
}

func TestResolve_UnpricedRowKeepsBasePrice(t *testing.T) {
	rows := []model.Variation{persisted(300, "", nil, 1, 11)}

	res := Resolve(shirt(), rows, Selection{1: 1, 2: 11}, Options{})

	assert.True(t, res.Matched)
	assert.True(t, res.Price.Equal(decimal.RequireFromString("10")))
	assert.True(t, res.Stock.Unbounded)
	assert.True(t, res.Purchasable)
}

func TestResolve_MalformedRowNeverMatches(t *testing.T) {
	res := Resolve(shirt(), []model.Variation{malformed(200)}, nil, Options{})
	assert.False(t, res.Matched)
}

func TestResolve_ProductWithoutTypes(t *testing.T) {
	p := shirt()
	p.VariationTypes = nil

	res := Resolve(p, []model.Variation{{BaseModel: model.BaseModel{ID: 5}, OptionIDs: model.OptionIDs{}}}, nil, Options{})

	assert.False(t, res.Matched)
	assert.Empty(t, res.OptionIDs)
	assert.True(t, res.Price.Equal(p.BasePrice))
}

func TestGallery(t *testing.T) {
	p := shirt()
	assert.Equal(t, []string{"red.jpg"}, Gallery(p, Selection{1: 1, 2: 10}, "ph.png"))
	assert.Equal(t, []string{"shirt.jpg"}, Gallery(p, Selection{1: 2, 2: 10}, "ph.png"))

	p.Images = nil
	assert.Equal(t, []string{"ph.png"}, Gallery(p, Selection{1: 2}, "ph.png"))

	got := Gallery(p, Selection{1: 2}, "")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGallery_OnlyImageKinds(t *testing.T) {
	p := shirt()
	p.VariationTypes[0].Kind = model.KindDropdown
	p.VariationTypes[1].Options[0].Images = pq.StringArray{"small.jpg"}

	assert.Equal(t, []string{"shirt.jpg"}, Gallery(p, Selection{1: 1, 2: 10}, ""))
}

func TestGallery_ReturnsCopy(t *testing.T) {
	p := shirt()
	imgs := Gallery(p, Selection{1: 1}, "")
	imgs[0] = "changed"
	assert.Equal(t, "red.jpg", p.VariationTypes[0].Options[0].Images[0])
}
