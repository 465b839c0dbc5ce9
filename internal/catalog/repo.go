// Package catalog provides read access to products and categories, the
// PostgreSQL repository behind it and the pages and JSON endpoints that show them.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/shop-web/internal/db"
)

var (
	ErrNotFound = errors.New("product not found")
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Query struct {
	Q          string
	CategoryID int64
	Limit      int
	Offset     int
}

// normalize clamps limit and offset the same way for every implementation.
func (q Query) normalize() Query {
	if q.Limit <= 0 || q.Limit > MaxLimit {
		q.Limit = DefaultLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	q.Q = strings.TrimSpace(q.Q)
	return q
}

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	Categories(ctx context.Context) ([]Category, error)
}

type PGRepo struct{ db db.DBTX }

func NewPGRepo(conn db.DBTX) *PGRepo { return &PGRepo{db: conn} }

const productColumns = `p.id, p.category_id, COALESCE(c.title, ''), p.name, p.main_image,
	p.preview_text, p.detail_text, p.price::text, p.old_price::text, p.created_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p               Product
		price, oldPrice string
	)
	if err := row.Scan(&p.ID, &p.CategoryID, &p.CategoryTitle, &p.Name, &p.MainImage,
		&p.PreviewText, &p.DetailText, &price, &oldPrice, &p.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("product %d price: %w", p.ID, err)
	}
	if p.OldPrice, err = decimal.NewFromString(oldPrice); err != nil {
		return nil, fmt.Errorf("product %d old price: %w", p.ID, err)
	}
	return &p, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products p LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id=$1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = q.normalize()
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products p LEFT JOIN categories c ON c.id = p.category_id
		WHERE ($1::text = '' OR p.name ILIKE '%'||$1||'%' OR p.preview_text ILIKE '%'||$1||'%')
		  AND ($2::bigint = 0 OR p.category_id = $2::bigint)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $3 OFFSET $4
	`, q.Q, q.CategoryID, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Categories(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id, title, created_at FROM categories ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
