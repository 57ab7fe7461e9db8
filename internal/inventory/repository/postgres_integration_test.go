//go:build integration

package repository_test

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/inventory"
	"github.com/fekuna/omnipos-variation-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-variation-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/fekuna/omnipos-variation-service/internal/testutil/pgtest"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedVariation(t *testing.T, db *sqlx.DB, productID int64, ids model.OptionIDs, qty *int64) int64 {
	t.Helper()
	var id int64
	err := db.QueryRowx(`
        INSERT INTO variations (product_id, option_ids, option_key, price, quantity)
        VALUES ($1, $2, $3, 12.50, $4)
        RETURNING id
    `, productID, ids, ids.Key(), qty).Scan(&id)
	require.NoError(t, err)
	return id
}

func quantityOf(t *testing.T, db *sqlx.DB, query string, id int64) *int64 {
	t.Helper()
	var q *int64
	require.NoError(t, db.Get(&q, query, id))
	return q
}

func TestReserveStock(t *testing.T) {
	db := pgtest.New(t)
	ctx := context.Background()
	repo := repository.NewPGRepository(db)

	productID := pgtest.SeedProduct(t, db, "m-1", "Shirt", "10.00", 5)
	four := int64(4)
	limited := seedVariation(t, db, productID, model.NewOptionIDs(1, 10), &four)
	unbounded := seedVariation(t, db, productID, model.NewOptionIDs(2, 10), nil)

	const variationQty = `SELECT quantity FROM variations WHERE id = $1`
	const productQty = `SELECT quantity FROM products WHERE id = $1`

	t.Run("decrements matched variation and merges lines", func(t *testing.T) {
		movements, err := repo.ReserveStock(ctx, &dto.ReserveStockInput{
			MerchantID: "m-1",
			OrderID:    "order-1",
			Items: []dto.ReserveItem{
				{ProductID: productID, OptionIDs: model.OptionIDs{10, 1}, Quantity: 1},
				{ProductID: productID, OptionIDs: model.OptionIDs{1, 10}, Quantity: 2},
			},
		})
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, int64(-3), movements[0].QuantityChange)
		assert.Equal(t, limited, *movements[0].VariationID)
		assert.Equal(t, int64(1), *quantityOf(t, db, variationQty, limited))
	})

	t.Run("same order twice is a no-op", func(t *testing.T) {
		_, err := repo.ReserveStock(ctx, &dto.ReserveStockInput{
			OrderID: "order-1",
			Items:   []dto.ReserveItem{{ProductID: productID, OptionIDs: model.OptionIDs{1, 10}, Quantity: 1}},
		})
		assert.ErrorIs(t, err, inventory.ErrAlreadyReserved)
		assert.Equal(t, int64(1), *quantityOf(t, db, variationQty, limited))
	})

	t.Run("out of stock rolls back every line", func(t *testing.T) {
		_, err := repo.ReserveStock(ctx, &dto.ReserveStockInput{
			OrderID: "order-2",
			Items: []dto.ReserveItem{
				{ProductID: productID, Quantity: 1},
				{ProductID: productID, OptionIDs: model.OptionIDs{1, 10}, Quantity: 2},
			},
		})
		assert.ErrorIs(t, err, apperror.ErrOutOfStock)
		assert.Equal(t, int64(5), *quantityOf(t, db, productQty, productID))
		assert.Equal(t, int64(1), *quantityOf(t, db, variationQty, limited))

		var n int
		require.NoError(t, db.Get(&n, `SELECT count(*) FROM stock_movements WHERE reference_id = 'order-2'`))
		assert.Zero(t, n)
	})

	t.Run("unbounded variation is never decremented", func(t *testing.T) {
		movements, err := repo.ReserveStock(ctx, &dto.ReserveStockInput{
			OrderID: "order-3",
			Items:   []dto.ReserveItem{{ProductID: productID, OptionIDs: model.OptionIDs{2, 10}, Quantity: 1000}},
		})
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Nil(t, movements[0].QuantityBefore)
		assert.Nil(t, quantityOf(t, db, variationQty, unbounded))
	})

	t.Run("unknown set falls back to product quantity", func(t *testing.T) {
		movements, err := repo.ReserveStock(ctx, &dto.ReserveStockInput{
			OrderID: "order-4",
			Items:   []dto.ReserveItem{{ProductID: productID, OptionIDs: model.OptionIDs{3, 11}, Quantity: 2}},
		})
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Nil(t, movements[0].VariationID)
		assert.Equal(t, int64(5), *movements[0].QuantityBefore)
		assert.Equal(t, int64(3), *quantityOf(t, db, productQty, productID))
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := repo.ReserveStock(ctx, &dto.ReserveStockInput{
			OrderID: "order-5",
			Items:   []dto.ReserveItem{{ProductID: 999999, Quantity: 1}},
		})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("movements are listed newest first", func(t *testing.T) {
		items, total, err := repo.ListMovements(ctx, &dto.MovementFilters{ProductID: productID, Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, items, 2)
		assert.Equal(t, "order-4", *items[0].ReferenceID)
		assert.Equal(t, model.MovementSale, items[0].MovementType)
	})
}
