// Package view renders the embedded HTML templates with the per-request
// context every page needs (current user, flash notices).
package view

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/shop-web/internal/httpx"
	"github.com/MikeMC777/shop-web/internal/routes"
	"github.com/MikeMC777/shop-web/internal/session"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"url":   routes.URL,
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"add":   func(a, b int) int { return a + b },
	"sub":   func(a, b int) int { return a - b },
}

// Templates parses every page. Pages are addressed by file name, e.g. "cart.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "templates/*.html")
}

func MustTemplates() *template.Template {
	t, err := Templates()
	if err != nil {
		panic(err)
	}
	return t
}

// Render writes page name with data plus the user and flash notices.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["user"] = session.Username(c)
	data["messages"] = session.Flashes(c)
	c.HTML(status, name, data)
}

func NotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "404.html", nil)
}

// ServerError logs err and renders the generic error page.
func ServerError(c *gin.Context, err error) {
	_ = c.Error(err)
	httpx.Log(c).Error().Err(err).Str("path", c.Request.URL.Path).Msg("[view] request failed")
	Render(c, http.StatusInternalServerError, "500.html", nil)
}

// Redirect queues a notice and sends the browser to path.
func Redirect(c *gin.Context, level session.Level, msg, path string) {
	if msg != "" {
		session.AddFlash(c, level, msg)
	}
	c.Redirect(http.StatusFound, path)
}
