package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/fekuna/omnipos-variation-service/internal/variation"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	query := `
        SELECT id, merchant_id, category_id, name, base_price, quantity, images, created_at, updated_at
        FROM products
        WHERE id = $1
        LIMIT 1
    `
	if err := r.DB.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound("Product", id)
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	var types []model.VariationType
	err := r.DB.SelectContext(ctx, &types, `
        SELECT id, product_id, name, kind, position, created_at, updated_at
        FROM variation_types
        WHERE product_id = $1
        ORDER BY position, id
    `, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load variation types: %w", err)
	}

	var options []model.VariationOption
	err = r.DB.SelectContext(ctx, &options, `
        SELECT o.id, o.type_id, o.name, o.position, o.images, o.created_at, o.updated_at
        FROM variation_options o
        JOIN variation_types t ON t.id = o.type_id
        WHERE t.product_id = $1
        ORDER BY o.position, o.id
    `, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load variation options: %w", err)
	}

	byType := make(map[int64][]model.VariationOption, len(types))
	for _, o := range options {
		byType[o.TypeID] = append(byType[o.TypeID], o)
	}
	for i := range types {
		types[i].Options = byType[types[i].ID]
	}
	p.VariationTypes = types

	return &p, nil
}

type optionOwner struct {
	ID     int64 `db:"id"`
	TypeID int64 `db:"type_id"`
}

func (r *PGRepository) SaveTypes(ctx context.Context, productID int64, types []variation.TypeInput) error {
	fail := func(op string, err error) error {
		return &apperror.PersistenceError{ProductID: productID, Op: op, Err: err}
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fail("begin", err)
	}
	defer tx.Rollback()

	// Lock the product's types so two saves of the same form serialize.
	var typeIDs []int64
	err = tx.SelectContext(ctx, &typeIDs, `SELECT id FROM variation_types WHERE product_id = $1 FOR UPDATE`, productID)
	if err != nil {
		return fail("lock variation types", err)
	}
	ownedType := make(map[int64]bool, len(typeIDs))
	for _, id := range typeIDs {
		ownedType[id] = true
	}

	var owners []optionOwner
	err = tx.SelectContext(ctx, &owners, `
        SELECT o.id, o.type_id
        FROM variation_options o
        JOIN variation_types t ON t.id = o.type_id
        WHERE t.product_id = $1
    `, productID)
	if err != nil {
		return fail("load variation options", err)
	}
	optionType := make(map[int64]int64, len(owners))
	for _, o := range owners {
		optionType[o.ID] = o.TypeID
	}

	verr := &apperror.ValidationError{}
	keptTypes := make([]int64, 0, len(types))

	for ti, t := range types {
		var typeID int64
		if t.ID != nil {
			if !ownedType[*t.ID] {
				verr.Add(fmt.Sprintf("types[%d].id", ti), "validation.unknown_type", map[string]any{"Value": *t.ID})
				continue
			}
			typeID = *t.ID
			_, err := tx.ExecContext(ctx, `
                UPDATE variation_types SET name = $1, kind = $2, position = $3, updated_at = NOW()
                WHERE id = $4
            `, t.Name, t.Kind, ti, typeID)
			if err != nil {
				return fail("update variation type", err)
			}
		} else {
			err := tx.QueryRowxContext(ctx, `
                INSERT INTO variation_types (product_id, name, kind, position)
                VALUES ($1, $2, $3, $4)
                RETURNING id
            `, productID, t.Name, t.Kind, ti).Scan(&typeID)
			if err != nil {
				return fail("create variation type", err)
			}
		}
		keptTypes = append(keptTypes, typeID)

		keptOptions := make([]int64, 0, len(t.Options))
		for oi, o := range t.Options {
			images := pq.StringArray(append([]string{}, o.Images...))
			if o.ID != nil {
				if owner, ok := optionType[*o.ID]; !ok || owner != typeID {
					verr.Add(fmt.Sprintf("types[%d].options[%d].id", ti, oi), "validation.unknown_option",
						map[string]any{"Value": *o.ID})
					continue
				}
				_, err := tx.ExecContext(ctx, `
                    UPDATE variation_options SET name = $1, position = $2, images = $3, updated_at = NOW()
                    WHERE id = $4
                `, o.Name, oi, images, *o.ID)
				if err != nil {
					return fail("update variation option", err)
				}
				keptOptions = append(keptOptions, *o.ID)
				continue
			}

			var optionID int64
			err := tx.QueryRowxContext(ctx, `
                INSERT INTO variation_options (type_id, name, position, images)
                VALUES ($1, $2, $3, $4)
                RETURNING id
            `, typeID, o.Name, oi, images).Scan(&optionID)
			if err != nil {
				return fail("create variation option", err)
			}
			keptOptions = append(keptOptions, optionID)
		}

		if err := deleteExcept(ctx, tx, `DELETE FROM variation_options WHERE type_id = ?`, typeID, keptOptions); err != nil {
			return fail("delete variation options", err)
		}
	}

	if err := verr.OrNil(); err != nil {
		return err
	}

	if err := deleteExcept(ctx, tx, `DELETE FROM variation_types WHERE product_id = ?`, productID, keptTypes); err != nil {
		return fail("delete variation types", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE products SET updated_at = NOW() WHERE id = $1`, productID); err != nil {
		return fail("touch product", err)
	}

	if err := tx.Commit(); err != nil {
		return fail("commit", err)
	}
	return nil
}

// deleteExcept runs base scoped to owner, sparing the rows in keep.
func deleteExcept(ctx context.Context, tx *sqlx.Tx, base string, owner int64, keep []int64) error {
	if len(keep) == 0 {
		_, err := tx.ExecContext(ctx, tx.Rebind(base), owner)
		return err
	}
	query, args, err := sqlx.In(base+` AND id NOT IN (?)`, owner, keep)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(query), args...)
	return err
}
