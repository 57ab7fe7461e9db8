package repository

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/fekuna/omnipos-variation-service/internal/variation"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const selectVariations = `
        SELECT id, product_id, option_ids, option_key, price, quantity, created_at, updated_at
        FROM variations
        WHERE product_id = $1
        ORDER BY id
    `

func (r *PGRepository) FindByProduct(ctx context.Context, productID int64) ([]model.Variation, error) {
	var rows []model.Variation
	if err := r.DB.SelectContext(ctx, &rows, selectVariations, productID); err != nil {
		return nil, fmt.Errorf("failed to load variations: %w", err)
	}
	for i := range rows {
		// A row that fails to decode keeps Malformed and DecodeErr set;
		// callers log and skip it.
		_ = rows[i].DecodeOptionIDs()
	}
	return rows, nil
}

func (r *PGRepository) ApplySavePlan(ctx context.Context, plan *variation.SavePlan) error {
	fail := func(op string, err error) error {
		return &apperror.PersistenceError{ProductID: plan.ProductID, Op: op, Err: err}
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fail("begin", err)
	}
	defer tx.Rollback()

	// Deletes go first so a combination re-created in the same save does not
	// collide with the row it replaces on (product_id, option_key).
	if len(plan.Delete) > 0 {
		query, args, err := sqlx.In(`DELETE FROM variations WHERE product_id = ? AND id IN (?)`, plan.ProductID, plan.Delete)
		if err != nil {
			return fail("delete variations", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fail("delete variations", err)
		}
	}

	for _, v := range plan.Update {
		res, err := tx.ExecContext(ctx, `
            UPDATE variations
            SET price = $1, quantity = $2, updated_at = NOW()
            WHERE id = $3 AND product_id = $4
        `, v.Price, v.Quantity, v.ID, plan.ProductID)
		if err != nil {
			return fail("update variation", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fail("update variation", err)
		}
		if n == 0 {
			return fail("update variation", fmt.Errorf("variation %d no longer exists", v.ID))
		}
	}

	for i := range plan.Create {
		v := &plan.Create[i]
		err := tx.QueryRowxContext(ctx, `
            INSERT INTO variations (product_id, option_ids, option_key, price, quantity)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id, created_at, updated_at
        `, plan.ProductID, v.OptionIDs, v.OptionIDs.Key(), v.Price, v.Quantity).
			Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			return fail("create variation", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fail("commit", err)
	}
	return nil
}
