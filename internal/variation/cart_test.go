package variation

import (
	"testing"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLineItem(t *testing.T) {
	res := Resolve(shirt(), saved(), Selection{1: 1, 2: 10}, Options{})

	item, err := NewLineItem(res, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(42), item.ProductID)
	assert.Equal(t, int64(100), *item.VariationID)
	assert.Equal(t, model.NewOptionIDs(1, 10), item.OptionIDs)
	assert.True(t, item.Subtotal().Equal(decimal.RequireFromString("30")))

	*res.VariationID = 1
	assert.Equal(t, int64(100), *item.VariationID, "line keeps its own copy")
}

func TestNewLineItem_Rejects(t *testing.T) {
	res := Resolve(shirt(), saved(), Selection{1: 1, 2: 10}, Options{})

	_, err := NewLineItem(res, 0)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = NewLineItem(res, 4)
	assert.ErrorIs(t, err, apperror.ErrOutOfStock)

	soldOut := Resolve(shirt(), saved(), Selection{1: 2, 2: 11}, Options{})
	_, err = NewLineItem(soldOut, 1)
	assert.ErrorIs(t, err, apperror.ErrOutOfStock)
}

func TestLineKey_SameSetSameLine(t *testing.T) {
	a := LineItem{ProductID: 42, OptionIDs: model.NewOptionIDs(10, 1)}
	b := LineItem{ProductID: 42, OptionIDs: model.NewOptionIDs(1, 10)}
	c := LineItem{ProductID: 43, OptionIDs: model.NewOptionIDs(1, 10)}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.Equal(t, "42:1,10", a.Key().String())
}

func TestAddToLines(t *testing.T) {
	res := Resolve(shirt(), saved(), Selection{1: 1, 2: 10}, Options{})
	first, err := NewLineItem(res, 2)
	require.NoError(t, err)

	lines, err := AddToLines(nil, first)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	one, err := NewLineItem(res, 1)
	require.NoError(t, err)
	merged, err := AddToLines(lines, one)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, int64(3), merged[0].Quantity)
	assert.Equal(t, int64(2), lines[0].Quantity, "input is not modified")

	_, err = AddToLines(merged, one)
	assert.ErrorIs(t, err, apperror.ErrOutOfStock)

	other := Resolve(shirt(), saved(), Selection{1: 1, 2: 11}, Options{})
	item, err := NewLineItem(other, 5)
	require.NoError(t, err)
	two, err := AddToLines(merged, item)
	require.NoError(t, err)
	assert.Len(t, two, 2)
	assert.Len(t, merged, 1)
}

func TestAddToLines_Unbounded(t *testing.T) {
	item := LineItem{ProductID: 1, OptionIDs: model.NewOptionIDs(3), Stock: model.UnboundedStock(), Quantity: 1000}

	lines, err := AddToLines([]LineItem{item}, item)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), lines[0].Quantity)
}
