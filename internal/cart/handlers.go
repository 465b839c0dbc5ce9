package cart

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/shop-web/internal/catalog"
	"github.com/MikeMC777/shop-web/internal/routes"
	"github.com/MikeMC777/shop-web/internal/session"
	"github.com/MikeMC777/shop-web/internal/view"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// Mount registers the cart routes. g is expected to require a login.
func (h *Handler) Mount(g gin.IRoutes) {
	g.GET(routes.Cart, h.show)
	g.POST(routes.AddToCart, h.mutate(h.svc.AddToCart))
	g.POST(routes.RemoveFromCart, h.mutate(h.svc.Remove))
	g.POST(routes.IncreaseCart, h.mutate(h.svc.Increase))
	g.POST(routes.DecreaseCart, h.mutate(h.svc.Decrease))
	g.POST(routes.Checkout, h.checkout)
	g.GET(routes.Orders, h.orders)
}

type productOp func(ctx context.Context, userID string, productID int64) (Outcome, error)

func (h *Handler) mutate(op productOp) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := catalog.ParseID(c)
		if !ok {
			view.NotFound(c)
			return
		}
		out, err := op(c.Request.Context(), session.UserID(c), id)
		h.finish(c, out, err)
	}
}

func (h *Handler) finish(c *gin.Context, out Outcome, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		view.NotFound(c)
		return
	}
	if err != nil {
		view.ServerError(c, err)
		return
	}
	view.Redirect(c, out.Level, out.Message, out.Redirect)
}

func (h *Handler) show(c *gin.Context) {
	v, ok, err := h.svc.View(c.Request.Context(), session.UserID(c))
	if err != nil {
		view.ServerError(c, err)
		return
	}
	if !ok {
		out := EmptyCart()
		view.Redirect(c, out.Level, out.Message, out.Redirect)
		return
	}
	view.Render(c, http.StatusOK, "cart.html", gin.H{"title": "Cart", "cart": v})
}

func (h *Handler) checkout(c *gin.Context) {
	out, err := h.svc.Checkout(c.Request.Context(), session.UserID(c))
	h.finish(c, out, err)
}

func (h *Handler) orders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	placed, err := h.svc.Orders(c.Request.Context(), session.UserID(c), limit, offset)
	if err != nil {
		view.ServerError(c, err)
		return
	}
	view.Render(c, http.StatusOK, "orders.html", gin.H{"title": "Orders", "orders": placed})
}
