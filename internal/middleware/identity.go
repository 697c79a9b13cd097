package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-showtimes/internal/config"
)

// CtxBasketSession is the context key of the basket session id.
const CtxBasketSession = "basket_session"

// BasketSession makes sure every request carries a basket session id.  An
// existing cookie is reused; otherwise a new id is issued.  The cookie
// lives as long as a ledger does and is refreshed on every request.
func BasketSession(cfg config.BasketConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(cfg.CookieName); err == nil {
				if _, err := uuid.Parse(ck.Value); err == nil {
					id = ck.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
			}
			c.SetCookie(&http.Cookie{
				Name:     cfg.CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(cfg.TTL / time.Second),
				HttpOnly: true,
				Secure:   cfg.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(CtxBasketSession, id)
			return next(c)
		}
	}
}

// SessionID returns the basket session id set by BasketSession.
func SessionID(c echo.Context) string {
	s, _ := c.Get(CtxBasketSession).(string)
	return s
}

// currentUserID renders the authenticated user id for keys, or "anon".
func currentUserID(c echo.Context) string {
	switch v := c.Get(CtxUserID).(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%.0f", v)
	case uint64:
		return fmt.Sprint(v)
	}
	return "anon"
}
