// Package routes holds the named paths of the shop and a reverse lookup for them.
package routes

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	Home          = "/"
	ProductDetail = "/product/:id"

	SignUp  = "/account/signup"
	Login   = "/account/login"
	Logout  = "/account/logout"
	Profile = "/account/profile"

	Cart           = "/cart"
	AddToCart      = "/cart/add/:id"
	RemoveFromCart = "/cart/remove/:id"
	IncreaseCart   = "/cart/increase/:id"
	DecreaseCart   = "/cart/decrease/:id"
	Checkout       = "/cart/checkout"
	Orders         = "/orders"
)

var names = map[string]string{
	"home":           Home,
	"product-detail": ProductDetail,
	"sign_up":        SignUp,
	"login":          Login,
	"logout":         Logout,
	"profile":        Profile,
	"cart":           Cart,
	"add-cart":       AddToCart,
	"remove-cart":    RemoveFromCart,
	"increase-cart":  IncreaseCart,
	"decrease-cart":  DecreaseCart,
	"checkout":       Checkout,
	"orders":         Orders,
}

// URL reverses a route by name. Unknown names resolve to Home.
func URL(name string, args ...any) string {
	pattern, ok := names[name]
	if !ok {
		return Home
	}
	return Reverse(pattern, args...)
}

// Reverse fills the ":param" segments of pattern with args, in order.
// Extra args are ignored; missing args leave the segment empty.
func Reverse(pattern string, args ...any) string {
	parts := strings.Split(pattern, "/")
	i := 0
	for n, p := range parts {
		if !strings.HasPrefix(p, ":") {
			continue
		}
		v := ""
		if i < len(args) {
			v = url.PathEscape(fmt.Sprint(args[i]))
		}
		parts[n] = v
		i++
	}
	return strings.Join(parts, "/")
}

// LoginWithNext returns the login path carrying next as the redirect target.
func LoginWithNext(next string) string {
	if next == "" || next == Login {
		return Login
	}
	return Login + "?" + url.Values{"next": {next}}.Encode()
}

// SafeNext reports whether next is a local absolute path and returns it, or Home.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return Home
	}
	return next
}
