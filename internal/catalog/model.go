package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID            int64  `json:"id"`
	CategoryID    *int64 `json:"category_id,omitempty"`
	CategoryTitle string `json:"category,omitempty"`
	Name          string `json:"name"`
	MainImage     string `json:"main_image,omitempty"`
	PreviewText   string `json:"preview_text,omitempty"`
	DetailText    string `json:"detail_text,omitempty"`
	// NUMERIC in Postgres, read as text and parsed so no float rounding happens
	Price     decimal.Decimal `json:"price"`
	OldPrice  decimal.Decimal `json:"old_price"`
	CreatedAt time.Time       `json:"created_at"`
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	// search query applied
	Q string `json:"q,omitempty"`
	// category filter applied
	CategoryID int64 `json:"category_id,omitempty"`
	// limit applied
	Limit int `json:"limit"`
	// offset applied
	Offset int `json:"offset"`
	// items found
	Items []Product `json:"items"`
}

// CategoriesResponse lists every category.
// swagger:model
type CategoriesResponse struct {
	Items []Category `json:"items"`
}
