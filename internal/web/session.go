package web

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CartCookie names the cookie that ties a browser to its cart.
const CartCookie = "foodstall_cart"

// CartSession returns the browser's cart session id, issuing a cookie on first visit.
func CartSession(w http.ResponseWriter, r *http.Request, ttl time.Duration) string {
	if c, err := r.Cookie(CartCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CartCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
