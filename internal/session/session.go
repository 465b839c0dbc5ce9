// Package session keeps the logged-in user and one-shot flash notices in
// signed cookies.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MikeMC777/shop-web/internal/routes"
)

const (
	CookieName = "sessionid"

	ctxManager  = "session.manager"
	ctxUserID   = "session.user_id"
	ctxUsername = "session.username"
)

var ErrInvalidToken = errors.New("invalid session token")

type claims struct {
	jwt.RegisteredClaims
	Username string `json:"usr"`
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, secure: secure, now: time.Now}
}

// Token signs a session for the given user.
func (m *Manager) Token(userID, username string) (string, error) {
	now := m.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Username: username,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

// Parse validates a session token and returns the user id and username in it.
func (m *Manager) Parse(token string) (string, string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return "", "", ErrInvalidToken
	}
	return c.Subject, c.Username, nil
}

func (m *Manager) keyFunc(*jwt.Token) (any, error) { return m.secret, nil }

// Login issues the session cookie and makes the user current for the rest of the request.
func (m *Manager) Login(c *gin.Context, userID, username string) error {
	tok, err := m.Token(userID, username)
	if err != nil {
		return err
	}
	m.setCookie(c, CookieName, tok, int(m.ttl.Seconds()))
	c.Set(ctxUserID, userID)
	c.Set(ctxUsername, username)
	return nil
}

func (m *Manager) Logout(c *gin.Context) {
	m.setCookie(c, CookieName, "", -1)
	c.Set(ctxUserID, "")
	c.Set(ctxUsername, "")
}

func (m *Manager) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", m.secure, true)
}

// Middleware loads the current user from the session cookie. A bad or expired
// cookie is dropped and the request continues anonymously.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxManager, m)
		if tok, err := c.Cookie(CookieName); err == nil && tok != "" {
			if uid, name, err := m.Parse(tok); err == nil {
				c.Set(ctxUserID, uid)
				c.Set(ctxUsername, name)
			} else {
				m.setCookie(c, CookieName, "", -1)
			}
		}
		c.Next()
	}
}

// RequireLogin redirects anonymous requests to the login page, keeping the
// requested path as next.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			next := ""
			if c.Request.Method == http.MethodGet {
				next = c.Request.URL.RequestURI()
			}
			c.Redirect(http.StatusFound, routes.LoginWithNext(next))
			c.Abort()
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) string { return c.GetString(ctxUserID) }

func Username(c *gin.Context) string { return c.GetString(ctxUsername) }

func managerFrom(c *gin.Context) *Manager {
	if v, ok := c.Get(ctxManager); ok {
		if m, ok := v.(*Manager); ok {
			return m
		}
	}
	return nil
}
