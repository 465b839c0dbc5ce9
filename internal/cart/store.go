package cart

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/shop-web/internal/db"
)

var (
	ErrNoOrder      = errors.New("no open order")
	ErrNotInCart    = errors.New("item not in cart")
	ErrCartNotFound = errors.New("cart row not found")
)

// Store persists cart rows and orders. Every method is scoped by the ids it
// receives; callers pass only the current user's ids.
type Store interface {
	// InTx runs fn against a Store bound to a single transaction.
	InTx(ctx context.Context, fn func(Store) error) error

	GetOrCreateCart(ctx context.Context, userID string, productID int64) (*Cart, error)
	PendingCart(ctx context.Context, userID string, productID int64) (*Cart, error)
	PendingLines(ctx context.Context, userID string) ([]Line, error)
	UpdateQuantity(ctx context.Context, cartID int64, quantity int) error
	DeleteCart(ctx context.Context, cartID int64) error

	OpenOrder(ctx context.Context, userID string) (*Order, error)
	CreateOrder(ctx context.Context, userID string) (*Order, error)
	OrderHasProduct(ctx context.Context, orderID, productID int64) (bool, error)
	Attach(ctx context.Context, orderID, cartID int64) error
	Detach(ctx context.Context, orderID, cartID int64) error
	OrderLines(ctx context.Context, orderID int64) ([]Line, error)
	PlaceOrder(ctx context.Context, orderID int64, code string, at time.Time) error
	ListPlaced(ctx context.Context, userID string, limit, offset int) ([]Placed, error)
}

type PGStore struct {
	pool *pgxpool.Pool
	db   db.DBTX
}

func NewPGStore(pool *pgxpool.Pool) *PGStore { return &PGStore{pool: pool, db: pool} }

func (s *PGStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		// already inside a transaction
		return fn(s)
	}
	return db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&PGStore{db: tx})
	})
}

const cartColumns = `id, user_id::text, product_id, quantity, purchased, created_at, updated_at`

func scanCart(row pgx.Row) (*Cart, error) {
	var c Cart
	if err := row.Scan(&c.ID, &c.UserID, &c.ProductID, &c.Quantity, &c.Purchased, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PGStore) GetOrCreateCart(ctx context.Context, userID string, productID int64) (*Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.db.Exec(ctx, `
		INSERT INTO carts (user_id, product_id, quantity, purchased, created_at, updated_at)
		VALUES ($1, $2, 1, FALSE, NOW(), NOW())
		ON CONFLICT (user_id, product_id) WHERE NOT purchased DO NOTHING
	`, userID, productID); err != nil {
		return nil, err
	}
	return s.PendingCart(ctx, userID, productID)
}

func (s *PGStore) PendingCart(ctx context.Context, userID string, productID int64) (*Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c, err := scanCart(s.db.QueryRow(ctx, `
		SELECT `+cartColumns+` FROM carts
		WHERE user_id=$1 AND product_id=$2 AND NOT purchased
		ORDER BY id LIMIT 1
	`, userID, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	return c, err
}

func scanLines(rows pgx.Rows) ([]Line, error) {
	defer rows.Close()

	out := []Line{}
	for rows.Next() {
		var (
			l     Line
			price string
		)
		if err := rows.Scan(&l.CartID, &l.ProductID, &l.ProductName, &price, &l.Quantity); err != nil {
			return nil, err
		}
		p, err := decimal.NewFromString(price)
		if err != nil {
			return nil, err
		}
		l.Price = p
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *PGStore) PendingLines(ctx context.Context, userID string) ([]Line, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.product_id, p.name, p.price::text, c.quantity
		FROM carts c JOIN products p ON p.id = c.product_id
		WHERE c.user_id=$1 AND NOT c.purchased
		ORDER BY c.id
	`, userID)
	if err != nil {
		return nil, err
	}
	return scanLines(rows)
}

func (s *PGStore) UpdateQuantity(ctx context.Context, cartID int64, quantity int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := s.db.Exec(ctx, `
		UPDATE carts SET quantity=$2, updated_at=NOW() WHERE id=$1
	`, cartID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (s *PGStore) DeleteCart(ctx context.Context, cartID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.db.Exec(ctx, `DELETE FROM carts WHERE id=$1`, cartID)
	return err
}

const orderColumns = `id, user_id::text, ordered, COALESCE(code::text, ''), placed_at, created_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	if err := row.Scan(&o.ID, &o.UserID, &o.Ordered, &o.Code, &o.PlacedAt, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *PGStore) OpenOrder(ctx context.Context, userID string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(s.db.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id=$1 AND NOT ordered
		ORDER BY id LIMIT 1
	`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoOrder
	}
	return o, err
}

func (s *PGStore) CreateOrder(ctx context.Context, userID string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.db.Exec(ctx, `
		INSERT INTO orders (user_id, ordered, created_at)
		VALUES ($1, FALSE, NOW())
		ON CONFLICT (user_id) WHERE NOT ordered DO NOTHING
	`, userID); err != nil {
		return nil, err
	}
	return s.OpenOrder(ctx, userID)
}

func (s *PGStore) OrderHasProduct(ctx context.Context, orderID, productID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var ok bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM order_items oi JOIN carts c ON c.id = oi.cart_id
			WHERE oi.order_id=$1 AND c.product_id=$2
		)
	`, orderID, productID).Scan(&ok)
	return ok, err
}

func (s *PGStore) Attach(ctx context.Context, orderID, cartID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.db.Exec(ctx, `
		INSERT INTO order_items (order_id, cart_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, orderID, cartID)
	return err
}

func (s *PGStore) Detach(ctx context.Context, orderID, cartID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.db.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1 AND cart_id=$2`, orderID, cartID)
	return err
}

func (s *PGStore) OrderLines(ctx context.Context, orderID int64) ([]Line, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.product_id, p.name, p.price::text, c.quantity
		FROM order_items oi
		JOIN carts c ON c.id = oi.cart_id
		JOIN products p ON p.id = c.product_id
		WHERE oi.order_id=$1
		ORDER BY c.id
	`, orderID)
	if err != nil {
		return nil, err
	}
	return scanLines(rows)
}

func (s *PGStore) PlaceOrder(ctx context.Context, orderID int64, code string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := s.db.Exec(ctx, `
		UPDATE orders SET ordered=TRUE, code=$2, placed_at=$3
		WHERE id=$1 AND NOT ordered
	`, orderID, code, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoOrder
	}
	_, err = s.db.Exec(ctx, `
		UPDATE carts SET purchased=TRUE, updated_at=NOW()
		WHERE id IN (SELECT cart_id FROM order_items WHERE order_id=$1)
	`, orderID)
	return err
}

func (s *PGStore) ListPlaced(ctx context.Context, userID string, limit, offset int) ([]Placed, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.Query(ctx, `
		SELECT o.id, COALESCE(o.code::text, ''), o.placed_at,
		       COALESCE(SUM(c.quantity), 0), COALESCE(SUM(c.quantity * p.price), 0)::text
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		LEFT JOIN carts c ON c.id = oi.cart_id
		LEFT JOIN products p ON p.id = c.product_id
		WHERE o.user_id=$1 AND o.ordered
		GROUP BY o.id
		ORDER BY o.placed_at DESC, o.id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Placed{}
	for rows.Next() {
		var (
			p     Placed
			total string
		)
		if err := rows.Scan(&p.ID, &p.Code, &p.PlacedAt, &p.Items, &total); err != nil {
			return nil, err
		}
		if p.Total, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
