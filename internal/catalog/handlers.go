package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/shop-web/internal/routes"
	"github.com/MikeMC777/shop-web/internal/view"
)

type Handler struct {
	repo     Repository
	pageSize int
}

func NewHandler(repo Repository, pageSize int) *Handler {
	if pageSize <= 0 || pageSize >= MaxLimit {
		pageSize = 12
	}
	return &Handler{repo: repo, pageSize: pageSize}
}

// MountPages registers the home page on public and the product page on
// private, which is expected to require a login.
func (h *Handler) MountPages(public, private gin.IRoutes) {
	public.GET(routes.Home, h.home)
	private.GET(routes.ProductDetail, h.detail)
}

// MountAPI registers the JSON catalog endpoints.
func (h *Handler) MountAPI(g gin.IRoutes) {
	g.GET("/products", h.listProducts)
	g.GET("/products/:id", h.getProduct)
	g.GET("/categories", h.listCategories)
}

// ParseID reads a positive numeric id path parameter.
func ParseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handler) home(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	category, _ := strconv.ParseInt(c.Query("category"), 10, 64)
	if category < 0 {
		category = 0
	}

	// one extra row tells whether a next page exists
	items, err := h.repo.List(c.Request.Context(), Query{
		CategoryID: category,
		Limit:      h.pageSize + 1,
		Offset:     (page - 1) * h.pageSize,
	})
	if err != nil {
		view.ServerError(c, err)
		return
	}
	hasNext := len(items) > h.pageSize
	if hasNext {
		items = items[:h.pageSize]
	}
	cats, err := h.repo.Categories(c.Request.Context())
	if err != nil {
		view.ServerError(c, err)
		return
	}
	view.Render(c, http.StatusOK, "home.html", gin.H{
		"products":   items,
		"categories": cats,
		"category":   category,
		"page":       page,
		"hasNext":    hasNext,
	})
}

func (h *Handler) detail(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		view.NotFound(c)
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		view.NotFound(c)
		return
	}
	if err != nil {
		view.ServerError(c, err)
		return
	}
	view.Render(c, http.StatusOK, "product_detail.html", gin.H{"title": p.Name, "product": p})
}
