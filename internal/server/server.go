// Package server assembles the gin engine: middleware, templates, the HTML
// pages, the JSON catalog API and its swagger UI.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/MikeMC777/shop-web/internal/cart"
	"github.com/MikeMC777/shop-web/internal/catalog"
	_ "github.com/MikeMC777/shop-web/internal/docs"
	"github.com/MikeMC777/shop-web/internal/httpx"
	"github.com/MikeMC777/shop-web/internal/session"
	"github.com/MikeMC777/shop-web/internal/user"
	"github.com/MikeMC777/shop-web/internal/view"
)

type Deps struct {
	Catalog  catalog.Repository
	Carts    cart.Store
	Users    user.Repository
	Session  *session.Manager
	PageSize int
	// Ready backs /healthz. nil means always ready.
	Ready func() bool
}

// New returns the router. It panics if the embedded templates fail to parse.
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Recovery(), httpx.Logger(session.UserID), d.Session.Middleware())
	r.SetHTMLTemplate(view.MustTemplates())

	public := r.Group("/")
	private := r.Group("/", session.RequireLogin())

	products := catalog.NewHandler(d.Catalog, d.PageSize)
	products.MountPages(public, private)
	cart.NewHandler(cart.NewService(d.Catalog, d.Carts)).Mount(private)
	user.NewHandler(user.NewService(d.Users), d.Session).Mount(public, private)

	products.MountAPI(r.Group("/api/v1"))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		if d.Ready != nil && !d.Ready() {
			c.String(http.StatusServiceUnavailable, "unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	})
	r.NoRoute(view.NotFound)
	return r
}
