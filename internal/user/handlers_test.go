package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/shop-web/internal/session"
	"github.com/MikeMC777/shop-web/internal/view"
)

func newTestRouter(repo Repository, sess *session.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(view.MustTemplates())
	r.Use(sess.Middleware())
	NewHandler(NewService(repo), sess).Mount(r, r.Group("/", session.RequireLogin()))
	return r
}

func postForm(r http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range (&http.Response{Header: w.Header()}).Cookies() {
		if c.Name == name && c.MaxAge >= 0 {
			return c
		}
	}
	return nil
}

func TestSignUpFlow(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(repo, session.NewManager("secret", time.Hour, false))

	// invalid: short password and mismatch
	w := postForm(r, "/account/signup", url.Values{
		"username": {"alice"}, "password1": {"short"}, "password2": {"other"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "at least 8 characters") || !strings.Contains(body, "didn&#39;t match") {
		t.Fatalf("form errors missing: %s", body)
	}
	if len(repo.users) != 0 {
		t.Fatalf("invalid signup must not persist")
	}

	valid := url.Values{"username": {"alice"}, "email": {"a@example.com"}, "password1": {"s3cret-pass"}, "password2": {"s3cret-pass"}}
	w = postForm(r, "/account/signup", valid)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/account/login" {
		t.Fatalf("status=%d location=%q", w.Code, w.Header().Get("Location"))
	}
	if cookieNamed(w, session.FlashCookieName) == nil {
		t.Fatalf("expected success notice")
	}

	w = postForm(r, "/account/signup", valid)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "already exists") {
		t.Fatalf("duplicate signup: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestLoginFlow(t *testing.T) {
	repo := newMemRepo()
	if _, err := NewService(repo).SignUp(context.Background(), "alice", "", "s3cret-pass"); err != nil {
		t.Fatal(err)
	}
	r := newTestRouter(repo, session.NewManager("secret", time.Hour, false))

	w := postForm(r, "/account/login", url.Values{"username": {"alice"}, "password": {"nope"}})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Please enter a correct username and password.") {
		t.Fatalf("bad login: status=%d body=%s", w.Code, w.Body.String())
	}
	if cookieNamed(w, session.CookieName) != nil {
		t.Fatalf("bad login must not set a session")
	}

	w = postForm(r, "/account/login?next=%2Faccount%2Fprofile", url.Values{"username": {"alice"}, "password": {"s3cret-pass"}})
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/account/profile" {
		t.Fatalf("status=%d location=%q", w.Code, w.Header().Get("Location"))
	}
	sc := cookieNamed(w, session.CookieName)
	if sc == nil {
		t.Fatalf("expected a session cookie")
	}

	w = postForm(r, "/account/login?next=https%3A%2F%2Fevil.test", url.Values{"username": {"alice"}, "password": {"s3cret-pass"}})
	if w.Header().Get("Location") != "/" {
		t.Fatalf("foreign next must fall back home, got %q", w.Header().Get("Location"))
	}

	req := httptest.NewRequest(http.MethodGet, "/account/logout", nil)
	req.AddCookie(sc)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("logout status=%d location=%q", w.Code, w.Header().Get("Location"))
	}
	if cookieNamed(w, session.FlashCookieName) == nil {
		t.Fatalf("expected logout notice")
	}
}

func TestProfile(t *testing.T) {
	repo := newMemRepo()
	u, err := NewService(repo).SignUp(context.Background(), "alice", "", "s3cret-pass")
	if err != nil {
		t.Fatal(err)
	}
	sess := session.NewManager("secret", time.Hour, false)
	r := newTestRouter(repo, sess)
	tok, _ := sess.Token(u.ID, u.Username)
	sc := &http.Cookie{Name: session.CookieName, Value: tok}

	// anonymous is sent to login
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/account/profile", nil))
	if w.Code != http.StatusFound {
		t.Fatalf("anonymous profile status=%d", w.Code)
	}

	w = postForm(r, "/account/profile", url.Values{"city": {"Lima"}, "zipcode": {"15001"}}, sc)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Changes saved") || !strings.Contains(w.Body.String(), `value="Lima"`) {
		t.Fatalf("save: status=%d body=%s", w.Code, w.Body.String())
	}
	if p, _ := repo.GetProfile(context.Background(), u.ID); p.City != "Lima" {
		t.Fatalf("profile not saved: %+v", p)
	}

	w = postForm(r, "/account/profile", url.Values{"zipcode": {"12345678901"}}, sc)
	if !strings.Contains(w.Body.String(), "at most 10 characters") {
		t.Fatalf("expected zipcode error: %s", w.Body.String())
	}

	// a session for a user without profile is a hard not found
	tok, _ = sess.Token("00000000-0000-0000-0000-000000000000", "ghost")
	req := httptest.NewRequest(http.MethodGet, "/account/profile", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: tok})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing profile status=%d", w.Code)
	}
}
