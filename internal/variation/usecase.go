package variation

import (
	"context"
)

type UseCase interface {
	GetGrid(ctx context.Context, productID int64) (*Grid, error)
	SaveGrid(ctx context.Context, productID int64, rows []RawRow) (*SaveResult, error)

	GetStorefrontView(ctx context.Context, productID int64) (*StorefrontView, error)
	Resolve(ctx context.Context, productID int64, sel Selection) (*Resolution, error)
	BuildLineItem(ctx context.Context, productID int64, sel Selection, qty int64) (LineItem, error)

	InvalidateView(ctx context.Context, productIDs ...int64)
}
