package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func queryInt(c *gin.Context, key string, def int) int {
	if n, err := strconv.Atoi(c.Query(key)); err == nil {
		return n
	}
	return def
}

// listProducts godoc
// @Summary      List products
// @Description  Paginated product listing, newest first, optionally filtered by name and category
// @Tags         catalog
// @Produce      json
// @Param        q         query  string  false  "search in name and preview text"
// @Param        category  query  int     false  "category id"
// @Param        limit     query  int     false  "page size (1-100)"  default(20)
// @Param        offset    query  int     false  "offset"             default(0)
// @Success      200  {object}  ListResponse
// @Failure      500  {object}  HTTPError
// @Router       /products [get]
func (h *Handler) listProducts(c *gin.Context) {
	limit := queryInt(c, "limit", DefaultLimit)
	offset := queryInt(c, "offset", 0)
	category, _ := strconv.ParseInt(c.Query("category"), 10, 64)

	q := Query{Q: c.Query("q"), CategoryID: category, Limit: limit, Offset: offset}.normalize()
	items, err := h.repo.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, HTTPError{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ListResponse{Q: q.Q, CategoryID: q.CategoryID, Limit: q.Limit, Offset: q.Offset, Items: items})
}

// getProduct godoc
// @Summary      Get a product
// @Tags         catalog
// @Produce      json
// @Param        id   path      int  true  "product id"
// @Success      200  {object}  Product
// @Failure      404  {object}  HTTPError
// @Failure      500  {object}  HTTPError
// @Router       /products/{id} [get]
func (h *Handler) getProduct(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, HTTPError{Error: ErrNotFound.Error()})
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, HTTPError{Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, HTTPError{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// listCategories godoc
// @Summary      List categories
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  CategoriesResponse
// @Failure      500  {object}  HTTPError
// @Router       /categories [get]
func (h *Handler) listCategories(c *gin.Context) {
	cats, err := h.repo.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, HTTPError{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, CategoriesResponse{Items: cats})
}
