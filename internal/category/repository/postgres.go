package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-variation-service/internal/category/dto"
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// FindAll returns the flat category list; the tree is built in memory.
func (r *PGRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.MerchantID != "" {
		conditions = append(conditions, "merchant_id = :merchant_id")
		args["merchant_id"] = f.MerchantID
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT id, merchant_id, parent_id, name, sort_order, is_active, created_at, updated_at FROM categories` +
		whereClause + ` ORDER BY sort_order, name`

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare category query: %w", err)
	}
	defer nstmt.Close()

	var categories []model.Category
	if err := nstmt.SelectContext(ctx, &categories, args); err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}
