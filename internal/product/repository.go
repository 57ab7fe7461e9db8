package product

import (
	"context"

	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/fekuna/omnipos-variation-service/internal/variation"
)

type Repository interface {
	// FindByID loads the product with its variation types and their options,
	// both in position order.
	FindByID(ctx context.Context, id int64) (*model.Product, error)

	// SaveTypes replaces the product's types and options with the cleaned
	// draft in one transaction. Types and options missing from the input are
	// deleted; deleting a type deletes its options.
	SaveTypes(ctx context.Context, productID int64, types []variation.TypeInput) error
}
