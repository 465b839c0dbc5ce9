package cart

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/shop-web/internal/session"
	"github.com/MikeMC777/shop-web/internal/view"
)

//
// ---------- ROUTER & HELPERS ----------
//

type testApp struct {
	r     *gin.Engine
	sess  *session.Manager
	store *memStore
	token string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	svc, store, _ := newTestService()
	sess := session.NewManager("secret", time.Hour, false)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(view.MustTemplates())
	r.Use(sess.Middleware())
	r.GET("/", func(c *gin.Context) { view.Render(c, http.StatusOK, "404.html", nil) })
	NewHandler(svc).Mount(r.Group("/", session.RequireLogin()))

	tok, err := sess.Token(alice, "alice")
	if err != nil {
		t.Fatal(err)
	}
	return &testApp{r: r, sess: sess, store: store, token: tok}
}

// do sends a request as alice (or anonymously when anon is true) carrying cookies.
func (a *testApp) do(method, path string, anon bool, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if !anon {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: a.token})
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func flashCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range (&http.Response{Header: w.Header()}).Cookies() {
		if c.Name == session.FlashCookieName && c.MaxAge >= 0 {
			return c
		}
	}
	return nil
}

// followFlash renders the home page with the flash cookie from w and returns the body.
func (a *testApp) followFlash(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	fc := flashCookie(w)
	if fc == nil {
		t.Fatalf("expected a flash cookie")
	}
	return a.do(http.MethodGet, "/", false, fc).Body.String()
}

//
// ---------- TESTS ----------
//

func TestCartRoutes_RequireLogin(t *testing.T) {
	a := newTestApp(t)
	cases := []struct{ method, path string }{
		{http.MethodGet, "/cart"},
		{http.MethodPost, "/cart/add/5"},
		{http.MethodPost, "/cart/remove/5"},
		{http.MethodPost, "/cart/increase/5"},
		{http.MethodPost, "/cart/decrease/5"},
		{http.MethodPost, "/cart/checkout"},
		{http.MethodGet, "/orders"},
	}
	for _, c := range cases {
		w := a.do(c.method, c.path, true)
		if w.Code != http.StatusFound || !strings.HasPrefix(w.Header().Get("Location"), "/account/login") {
			t.Fatalf("%s %s: expected redirect to login, got %d %q", c.method, c.path, w.Code, w.Header().Get("Location"))
		}
	}
	if len(a.store.carts) != 0 {
		t.Fatalf("anonymous requests must not touch the store")
	}
}

func TestAddToCart_RedirectsHomeWithNotice(t *testing.T) {
	a := newTestApp(t)

	w := a.do(http.MethodPost, "/cart/add/5", false)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("status=%d location=%q", w.Code, w.Header().Get("Location"))
	}
	if body := a.followFlash(t, w); !strings.Contains(body, "This item is added to your cart") {
		t.Fatalf("notice missing: %s", body)
	}

	w = a.do(http.MethodPost, "/cart/add/5", false)
	if body := a.followFlash(t, w); !strings.Contains(body, "This item quantity was updated") {
		t.Fatalf("notice missing: %s", body)
	}
	if rows := a.store.pending(alice, 5); len(rows) != 1 || rows[0].Quantity != 2 {
		t.Fatalf("rows=%+v", rows)
	}
}

func TestAddToCart_UnknownProductIs404(t *testing.T) {
	a := newTestApp(t)
	for _, path := range []string{"/cart/add/999", "/cart/add/abc", "/cart/decrease/999"} {
		if w := a.do(http.MethodPost, path, false); w.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, w.Code)
		}
	}
}

func TestViewCart(t *testing.T) {
	a := newTestApp(t)

	w := a.do(http.MethodGet, "/cart", false)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("empty cart should redirect home, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if body := a.followFlash(t, w); !strings.Contains(body, "You don&#39;t have any item in your cart!") {
		t.Fatalf("notice missing: %s", body)
	}

	a.do(http.MethodPost, "/cart/add/5", false)
	a.do(http.MethodPost, "/cart/add/5", false)
	w = a.do(http.MethodGet, "/cart", false)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "Lamp") || !strings.Contains(body, "25.00") {
		t.Fatalf("cart page content wrong: %s", body)
	}
}

func TestIncreaseDecreaseRemove(t *testing.T) {
	a := newTestApp(t)
	a.do(http.MethodPost, "/cart/add/5", false)

	w := a.do(http.MethodPost, "/cart/increase/5", false)
	if w.Header().Get("Location") != "/cart" {
		t.Fatalf("increase location=%q", w.Header().Get("Location"))
	}
	w = a.do(http.MethodPost, "/cart/decrease/5", false)
	if w.Header().Get("Location") != "/cart" || a.store.pending(alice, 5)[0].Quantity != 1 {
		t.Fatalf("decrease location=%q", w.Header().Get("Location"))
	}

	w = a.do(http.MethodPost, "/cart/remove/7", false)
	if w.Header().Get("Location") != "/" {
		t.Fatalf("remove of missing item should go home, got %q", w.Header().Get("Location"))
	}
	if body := a.followFlash(t, w); !strings.Contains(body, "You don&#39;t have any order") {
		t.Fatalf("notice missing: %s", body)
	}

	w = a.do(http.MethodPost, "/cart/remove/5", false)
	if w.Header().Get("Location") != "/cart" || len(a.store.pending(alice, 5)) != 0 {
		t.Fatalf("remove location=%q", w.Header().Get("Location"))
	}
}

func TestCheckoutAndOrdersPage(t *testing.T) {
	a := newTestApp(t)
	a.do(http.MethodPost, "/cart/add/7", false)

	w := a.do(http.MethodPost, "/cart/checkout", false)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/orders" {
		t.Fatalf("status=%d location=%q", w.Code, w.Header().Get("Location"))
	}

	w = a.do(http.MethodGet, "/orders", false, flashCookie(w))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Your order has been placed") || !strings.Contains(body, "40.00") {
		t.Fatalf("orders page content wrong: %s", body)
	}
}
