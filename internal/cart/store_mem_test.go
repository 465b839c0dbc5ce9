package cart

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/shop-web/internal/catalog"
)

//
// ===== IN-MEMORY STORE (implements cart.Store) =====
//

type memStore struct {
	mu       sync.Mutex
	nextID   int64
	carts    map[int64]*Cart
	orders   map[int64]*Order
	items    map[int64]map[int64]bool // order id -> cart ids
	products *memProducts
	err      error
}

func newMemStore(products *memProducts) *memStore {
	return &memStore{
		carts:    map[int64]*Cart{},
		orders:   map[int64]*Order{},
		items:    map[int64]map[int64]bool{},
		products: products,
	}
}

func (s *memStore) id() int64 { s.nextID++; return s.nextID }

func (s *memStore) InTx(ctx context.Context, fn func(Store) error) error { return fn(s) }

func (s *memStore) GetOrCreateCart(ctx context.Context, userID string, productID int64) (*Cart, error) {
	if c, err := s.PendingCart(ctx, userID, productID); err == nil {
		return c, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	now := time.Now()
	c := &Cart{ID: s.id(), UserID: userID, ProductID: productID, Quantity: 1, CreatedAt: now, UpdatedAt: now}
	s.carts[c.ID] = c
	cp := *c
	return &cp, nil
}

func (s *memStore) PendingCart(ctx context.Context, userID string, productID int64) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, c := range s.sortedCarts() {
		if c.UserID == userID && c.ProductID == productID && !c.Purchased {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrCartNotFound
}

func (s *memStore) sortedCarts() []*Cart {
	out := make([]*Cart, 0, len(s.carts))
	for _, c := range s.carts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) line(c *Cart) Line {
	p := s.products.items[c.ProductID]
	return Line{CartID: c.ID, ProductID: c.ProductID, ProductName: p.Name, Price: p.Price, Quantity: c.Quantity}
}

func (s *memStore) PendingLines(ctx context.Context, userID string) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []Line{}
	for _, c := range s.sortedCarts() {
		if c.UserID == userID && !c.Purchased {
			out = append(out, s.line(c))
		}
	}
	return out, nil
}

func (s *memStore) UpdateQuantity(ctx context.Context, cartID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[cartID]
	if !ok {
		return ErrCartNotFound
	}
	c.Quantity = quantity
	c.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) DeleteCart(ctx context.Context, cartID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, cartID)
	for _, set := range s.items {
		delete(set, cartID)
	}
	return nil
}

func (s *memStore) OpenOrder(ctx context.Context, userID string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var found *Order
	for _, o := range s.orders {
		if o.UserID == userID && !o.Ordered && (found == nil || o.ID < found.ID) {
			found = o
		}
	}
	if found == nil {
		return nil, ErrNoOrder
	}
	cp := *found
	return &cp, nil
}

func (s *memStore) CreateOrder(ctx context.Context, userID string) (*Order, error) {
	if o, err := s.OpenOrder(ctx, userID); err == nil {
		return o, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o := &Order{ID: s.id(), UserID: userID, CreatedAt: time.Now()}
	s.orders[o.ID] = o
	s.items[o.ID] = map[int64]bool{}
	cp := *o
	return &cp, nil
}

func (s *memStore) OrderHasProduct(ctx context.Context, orderID, productID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for cartID := range s.items[orderID] {
		if c, ok := s.carts[cartID]; ok && c.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Attach(ctx context.Context, orderID, cartID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items[orderID] == nil {
		s.items[orderID] = map[int64]bool{}
	}
	s.items[orderID][cartID] = true
	return nil
}

func (s *memStore) Detach(ctx context.Context, orderID, cartID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items[orderID], cartID)
	return nil
}

func (s *memStore) OrderLines(ctx context.Context, orderID int64) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Line{}
	for _, c := range s.sortedCarts() {
		if s.items[orderID][c.ID] {
			out = append(out, s.line(c))
		}
	}
	return out, nil
}

func (s *memStore) PlaceOrder(ctx context.Context, orderID int64, code string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Ordered {
		return ErrNoOrder
	}
	o.Ordered = true
	o.Code = code
	o.PlacedAt = &at
	for cartID := range s.items[orderID] {
		if c, ok := s.carts[cartID]; ok {
			c.Purchased = true
		}
	}
	return nil
}

func (s *memStore) ListPlaced(ctx context.Context, userID string, limit, offset int) ([]Placed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Placed{}
	for _, o := range s.orders {
		if o.UserID != userID || !o.Ordered {
			continue
		}
		p := Placed{ID: o.ID, Code: o.Code, PlacedAt: *o.PlacedAt, Total: decimal.Zero}
		for cartID := range s.items[o.ID] {
			l := s.line(s.carts[cartID])
			p.Items += l.Quantity
			p.Total = p.Total.Add(l.Subtotal())
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// pending counts the user's unpurchased rows for a product.
func (s *memStore) pending(userID string, productID int64) []*Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Cart
	for _, c := range s.sortedCarts() {
		if c.UserID == userID && c.ProductID == productID && !c.Purchased {
			out = append(out, c)
		}
	}
	return out
}

//
// ===== IN-MEMORY PRODUCTS (implements cart.Products) =====
//

type memProducts struct {
	items map[int64]*catalog.Product
}

func newMemProducts() *memProducts {
	return &memProducts{items: map[int64]*catalog.Product{}}
}

func (m *memProducts) add(id int64, name, price string) {
	m.items[id] = &catalog.Product{ID: id, Name: name, Price: decimal.RequireFromString(price)}
}

func (m *memProducts) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *p
	return &cp, nil
}
