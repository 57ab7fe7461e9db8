package repository

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/inventory"
	"github.com/fekuna/omnipos-variation-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

type stockLine struct {
	productID int64
	optionKey string
	quantity  int64
}

// mergeItems sums quantities of equal (product, option set) pairs and sorts
// them so concurrent reservations lock rows in the same order.
func mergeItems(items []dto.ReserveItem) []stockLine {
	type lineKey struct {
		productID int64
		optionKey string
	}
	idx := make(map[lineKey]int, len(items))
	lines := make([]stockLine, 0, len(items))
	for _, it := range items {
		key := model.NewOptionIDs(it.OptionIDs...).Key()
		k := lineKey{it.ProductID, key}
		if i, ok := idx[k]; ok {
			lines[i].quantity += it.Quantity
			continue
		}
		idx[k] = len(lines)
		lines = append(lines, stockLine{productID: it.ProductID, optionKey: key, quantity: it.Quantity})
	}
	slices.SortFunc(lines, func(a, b stockLine) int {
		return cmp.Or(cmp.Compare(a.productID, b.productID), strings.Compare(a.optionKey, b.optionKey))
	})
	return lines
}

type variationStock struct {
	ID       int64  `db:"id"`
	Quantity *int64 `db:"quantity"`
}

func (r *PGRepository) ReserveStock(ctx context.Context, input *dto.ReserveStockInput) ([]model.StockMovement, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var done bool
	err = tx.GetContext(ctx, &done, `
        SELECT EXISTS (SELECT 1 FROM stock_movements WHERE reference_type = $1 AND reference_id = $2)
    `, model.ReferenceOrder, input.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to check order: %w", err)
	}
	if done {
		return nil, inventory.ErrAlreadyReserved
	}

	refType, refID := model.ReferenceOrder, input.OrderID
	now := time.Now()
	var movements []model.StockMovement

	for _, line := range mergeItems(input.Items) {
		m := model.StockMovement{
			ID:             uuid.New().String(),
			MerchantID:     input.MerchantID,
			ProductID:      line.productID,
			OptionKey:      line.optionKey,
			MovementType:   model.MovementSale,
			QuantityChange: -line.quantity,
			ReferenceType:  &refType,
			ReferenceID:    &refID,
			Notes:          "Order Sale",
			CreatedAt:      now,
		}

		var v variationStock
		err := tx.GetContext(ctx, &v, `
            SELECT id, quantity FROM variations
            WHERE product_id = $1 AND option_key = $2
            FOR UPDATE
        `, line.productID, line.optionKey)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if err := reserveBase(ctx, tx, line, &m); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, fmt.Errorf("failed to lock variation: %w", err)
		default:
			id := v.ID
			m.VariationID = &id
			if v.Quantity != nil {
				if *v.Quantity < line.quantity {
					return nil, fmt.Errorf("product %d {%s}: %w", line.productID, line.optionKey, apperror.ErrOutOfStock)
				}
				before, after := *v.Quantity, *v.Quantity-line.quantity
				m.QuantityBefore, m.QuantityAfter = &before, &after
				_, err := tx.ExecContext(ctx, `
                    UPDATE variations SET quantity = $1, updated_at = NOW() WHERE id = $2
                `, after, v.ID)
				if err != nil {
					return nil, fmt.Errorf("failed to update variation stock: %w", err)
				}
			}
		}

		_, err = tx.NamedExecContext(ctx, `
            INSERT INTO stock_movements (
                id, merchant_id, product_id, variation_id, option_key,
                movement_type, quantity_change, quantity_before, quantity_after,
                reference_type, reference_id, notes, created_at
            )
            VALUES (
                :id, :merchant_id, :product_id, :variation_id, :option_key,
                :movement_type, :quantity_change, :quantity_before, :quantity_after,
                :reference_type, :reference_id, :notes, :created_at
            )
        `, m)
		if err != nil {
			return nil, fmt.Errorf("failed to log movement: %w", err)
		}
		movements = append(movements, m)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return movements, nil
}

// reserveBase draws on the product's own quantity for items that match no
// persisted variation.
func reserveBase(ctx context.Context, tx *sqlx.Tx, line stockLine, m *model.StockMovement) error {
	var qty int64
	err := tx.GetContext(ctx, &qty, `SELECT quantity FROM products WHERE id = $1 FOR UPDATE`, line.productID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NewNotFound("Product", line.productID)
	}
	if err != nil {
		return fmt.Errorf("failed to lock product: %w", err)
	}
	if qty < line.quantity {
		return fmt.Errorf("product %d: %w", line.productID, apperror.ErrOutOfStock)
	}

	after := qty - line.quantity
	m.QuantityBefore, m.QuantityAfter = &qty, &after
	_, err = tx.ExecContext(ctx, `UPDATE products SET quantity = $1, updated_at = NOW() WHERE id = $2`, after, line.productID)
	if err != nil {
		return fmt.Errorf("failed to update product stock: %w", err)
	}
	return nil
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	var items []model.StockMovement
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.MerchantID != "" {
		conditions = append(conditions, "merchant_id = :merchant_id")
		args["merchant_id"] = f.MerchantID
	}
	if f.ProductID != 0 {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM stock_movements" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			rows.Close()
			return nil, 0, err
		}
	}
	rows.Close()

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}
