package model

type Category struct {
	BaseModel
	MerchantID string `db:"merchant_id" json:"merchant_id"`
	ParentID   *int64 `db:"parent_id" json:"parent_id"` // Nullable
	Name       string `db:"name" json:"name"`
	SortOrder  int    `db:"sort_order" json:"sort_order"`
	IsActive   bool   `db:"is_active" json:"is_active"`
}

// CategoryPath is one category flattened out of the tree, e.g.
// {ID: 7, Path: "Clothing > Shirts", Level: 1}.
type CategoryPath struct {
	ID    int64  `json:"id"`
	Path  string `json:"path"`
	Level int    `json:"level"`
}
