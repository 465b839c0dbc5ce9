package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is one line item: a product a user intends to buy.
type Cart struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Purchased bool      `json:"purchased"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Order groups a user's cart rows. It stays open (Ordered=false) until checkout.
type Order struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"user_id"`
	Ordered   bool       `json:"ordered"`
	Code      string     `json:"code,omitempty"`
	PlacedAt  *time.Time `json:"placed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Line is a cart row joined with the product it points at.
type Line struct {
	CartID      int64
	ProductID   int64
	ProductName string
	Price       decimal.Decimal
	Quantity    int
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// View is what the cart page shows.
type View struct {
	Order *Order
	Lines []Line
}

func (v View) Total() decimal.Decimal {
	return total(v.Lines)
}

// Placed is a checked out order with its totals.
type Placed struct {
	ID       int64
	Code     string
	PlacedAt time.Time
	Items    int
	Total    decimal.Decimal
}

func total(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}
