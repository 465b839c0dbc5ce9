package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeMC777/shop-web/internal/catalog"
	"github.com/MikeMC777/shop-web/internal/routes"
	"github.com/MikeMC777/shop-web/internal/session"
)

// Products is the part of the catalog the cart needs.
type Products interface {
	GetByID(ctx context.Context, id int64) (*catalog.Product, error)
}

// Outcome is the notice and redirect target a cart operation ends with.
type Outcome struct {
	Level    session.Level
	Message  string
	Redirect string
}

const (
	msgAdded       = "This item is added to your cart"
	msgQtyUpdated  = "This item quantity was updated"
	msgRemoved     = "This item is removed from your cart"
	msgNoOrder     = "You don't have any order"
	msgEmptyCart   = "You don't have any item in your cart!"
	msgOrderPlaced = "Your order has been placed"
)

func info(msg, redirect string) Outcome {
	return Outcome{Level: session.Info, Message: msg, Redirect: redirect}
}

type Service struct {
	products Products
	store    Store
	now      func() time.Time
}

func NewService(products Products, store Store) *Service {
	return &Service{products: products, store: store, now: time.Now}
}

// AddToCart puts one more unit of the product in the user's open order,
// creating the cart row and the order as needed. It always ends on the home page.
func (s *Service) AddToCart(ctx context.Context, userID string, productID int64) (Outcome, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return Outcome{}, err
	}
	var out Outcome
	err = s.store.InTx(ctx, func(st Store) error {
		item, err := st.GetOrCreateCart(ctx, userID, p.ID)
		if err != nil {
			return fmt.Errorf("get or create cart: %w", err)
		}
		order, err := st.OpenOrder(ctx, userID)
		if errors.Is(err, ErrNoOrder) {
			if order, err = st.CreateOrder(ctx, userID); err != nil {
				return fmt.Errorf("create order: %w", err)
			}
			out = info(msgAdded, routes.Home)
			return st.Attach(ctx, order.ID, item.ID)
		}
		if err != nil {
			return fmt.Errorf("open order: %w", err)
		}

		has, err := st.OrderHasProduct(ctx, order.ID, p.ID)
		if err != nil {
			return err
		}
		if has {
			out = info(msgQtyUpdated, routes.Home)
			return st.UpdateQuantity(ctx, item.ID, item.Quantity+1)
		}
		out = info(msgAdded, routes.Home)
		return st.Attach(ctx, order.ID, item.ID)
	})
	return out, err
}

// View returns the user's pending rows and open order. ok is false unless
// both exist: rows without an order, or an order without rows, count as empty.
func (s *Service) View(ctx context.Context, userID string) (View, bool, error) {
	lines, err := s.store.PendingLines(ctx, userID)
	if err != nil {
		return View{}, false, err
	}
	order, err := s.store.OpenOrder(ctx, userID)
	if errors.Is(err, ErrNoOrder) {
		return View{}, false, nil
	}
	if err != nil {
		return View{}, false, err
	}
	if len(lines) == 0 {
		return View{}, false, nil
	}
	return View{Order: order, Lines: lines}, true, nil
}

// EmptyCart is the outcome shown when View reports nothing to show.
func EmptyCart() Outcome {
	return Outcome{Level: session.Warning, Message: msgEmptyCart, Redirect: routes.Home}
}

// orderItem resolves the open order and the product's row in it, reporting
// ErrNoOrder or ErrNotInCart when either link is missing.
func orderItem(ctx context.Context, st Store, userID string, productID int64) (*Order, *Cart, error) {
	order, err := st.OpenOrder(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	has, err := st.OrderHasProduct(ctx, order.ID, productID)
	if err != nil {
		return nil, nil, err
	}
	if !has {
		return order, nil, ErrNotInCart
	}
	item, err := st.PendingCart(ctx, userID, productID)
	if errors.Is(err, ErrCartNotFound) {
		return order, nil, ErrNotInCart
	}
	if err != nil {
		return nil, nil, err
	}
	return order, item, nil
}

func detachAndDelete(ctx context.Context, st Store, order *Order, item *Cart) error {
	if err := st.Detach(ctx, order.ID, item.ID); err != nil {
		return err
	}
	return st.DeleteCart(ctx, item.ID)
}

// Remove drops the product's row from the open order entirely.
func (s *Service) Remove(ctx context.Context, userID string, productID int64) (Outcome, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return Outcome{}, err
	}
	var out Outcome
	err = s.store.InTx(ctx, func(st Store) error {
		order, item, err := orderItem(ctx, st, userID, p.ID)
		switch {
		case errors.Is(err, ErrNoOrder), errors.Is(err, ErrNotInCart):
			out = info(msgNoOrder, routes.Home)
			return nil
		case err != nil:
			return err
		}
		out = info(msgRemoved, routes.Cart)
		return detachAndDelete(ctx, st, order, item)
	})
	return out, err
}

// Increase adds one unit of a product already in the open order.
func (s *Service) Increase(ctx context.Context, userID string, productID int64) (Outcome, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return Outcome{}, err
	}
	var out Outcome
	err = s.store.InTx(ctx, func(st Store) error {
		_, item, err := orderItem(ctx, st, userID, p.ID)
		switch {
		case errors.Is(err, ErrNoOrder):
			out = info(msgNoOrder, routes.Home)
			return nil
		case errors.Is(err, ErrNotInCart):
			out = info(p.Name+" isn't in your cart", routes.Home)
			return nil
		case err != nil:
			return err
		}
		out = info(p.Name+"'s quantity has been updated", routes.Cart)
		return st.UpdateQuantity(ctx, item.ID, item.Quantity+1)
	})
	return out, err
}

// Decrease takes one unit away; the last unit removes the row from the order.
func (s *Service) Decrease(ctx context.Context, userID string, productID int64) (Outcome, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return Outcome{}, err
	}
	var out Outcome
	err = s.store.InTx(ctx, func(st Store) error {
		order, item, err := orderItem(ctx, st, userID, p.ID)
		switch {
		case errors.Is(err, ErrNoOrder):
			out = info(msgNoOrder, routes.Home)
			return nil
		case errors.Is(err, ErrNotInCart):
			out = info(p.Name+" isn't in your cart", routes.Home)
			return nil
		case err != nil:
			return err
		}
		if item.Quantity > 1 {
			out = info(p.Name+"'s quantity has been updated", routes.Cart)
			return st.UpdateQuantity(ctx, item.ID, item.Quantity-1)
		}
		out = info(p.Name+" is removed from your cart", routes.Cart)
		return detachAndDelete(ctx, st, order, item)
	})
	return out, err
}

// Checkout closes the open order: its rows become purchased and the order
// gets a code. An order with no rows is treated as an empty cart.
func (s *Service) Checkout(ctx context.Context, userID string) (Outcome, error) {
	var out Outcome
	err := s.store.InTx(ctx, func(st Store) error {
		order, err := st.OpenOrder(ctx, userID)
		if errors.Is(err, ErrNoOrder) {
			out = EmptyCart()
			return nil
		}
		if err != nil {
			return err
		}
		lines, err := st.OrderLines(ctx, order.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			out = EmptyCart()
			return nil
		}
		if err := st.PlaceOrder(ctx, order.ID, uuid.NewString(), s.now().UTC()); err != nil {
			return fmt.Errorf("place order %d: %w", order.ID, err)
		}
		out = Outcome{Level: session.Success, Message: msgOrderPlaced, Redirect: routes.Orders}
		return nil
	})
	return out, err
}

// Orders lists the user's placed orders, newest first.
func (s *Service) Orders(ctx context.Context, userID string, limit, offset int) ([]Placed, error) {
	return s.store.ListPlaced(ctx, userID, limit, offset)
}
