package session

import (
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	FlashCookieName = "messages"

	ctxFlash = "session.flash"
)

type Level string

const (
	Info    Level = "info"
	Success Level = "success"
	Warning Level = "warning"
	Error   Level = "error"
)

// Message is a one-shot notice shown on the next rendered page.
type Message struct {
	Level Level  `json:"l"`
	Text  string `json:"t"`
}

type flashClaims struct {
	jwt.RegisteredClaims
	Messages []Message `json:"msgs"`
}

// AddFlash queues a notice. It is visible to Flashes in this request and,
// through the cookie, in the next one.
func AddFlash(c *gin.Context, level Level, text string) {
	msgs := append(pending(c), Message{Level: level, Text: text})
	c.Set(ctxFlash, msgs)
	if m := managerFrom(c); m != nil {
		if tok, err := m.signFlash(msgs); err == nil {
			m.setCookie(c, FlashCookieName, tok, 0)
		}
	}
}

// Flashes returns and clears the queued notices.
func Flashes(c *gin.Context) []Message {
	msgs := pending(c)
	c.Set(ctxFlash, []Message{})
	if len(msgs) > 0 {
		if m := managerFrom(c); m != nil {
			m.setCookie(c, FlashCookieName, "", -1)
		}
	}
	return msgs
}

func pending(c *gin.Context) []Message {
	if v, ok := c.Get(ctxFlash); ok {
		if msgs, ok := v.([]Message); ok {
			return msgs
		}
	}
	m := managerFrom(c)
	if m == nil {
		return nil
	}
	tok, err := c.Cookie(FlashCookieName)
	if err != nil || tok == "" {
		return nil
	}
	var fc flashClaims
	if _, err := jwt.ParseWithClaims(tok, &fc, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})); err != nil {
		return nil
	}
	c.Set(ctxFlash, fc.Messages)
	return fc.Messages
}

func (m *Manager) signFlash(msgs []Message) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, flashClaims{Messages: msgs}).SignedString(m.secret)
}
