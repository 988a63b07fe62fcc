package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"pqrssi-portal/config"
	"pqrssi-portal/services"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the name of the cookie carrying the signed session token.
const SessionCookie = "pqrssi_session"

const identityKey = "identity"

// SessionResolver is satisfied by services.SessionService.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (services.Identity, error)
}

// SessionMiddleware resolves the session cookie into an Identity for the rest
// of the chain. Callers without a valid session continue as anonymous and any
// stale cookie is cleared.
func SessionMiddleware(resolver SessionResolver, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(identityKey, services.Anonymous)

		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		who, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, services.ErrSessionInvalid) {
				ClearSessionCookie(c, secureCookie)
				c.Next()
				return
			}
			config.Logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("failed to resolve session")
			c.String(http.StatusInternalServerError, "Server error")
			c.Abort()
			return
		}

		c.Set(identityKey, who)
		c.Next()
	}
}

// CurrentIdentity returns the caller set by SessionMiddleware, or Anonymous.
func CurrentIdentity(c *gin.Context) services.Identity {
	if v, ok := c.Get(identityKey); ok {
		if who, ok := v.(services.Identity); ok {
			return who
		}
	}
	return services.Anonymous
}

// RequireLogin redirects anonymous callers to the login page.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentIdentity(c).LoggedIn {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin redirects everyone but logged-in administrators to the login page.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		who := CurrentIdentity(c)
		if !who.LoggedIn || !who.IsAdmin {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// SetSessionCookie stores token as an HttpOnly cookie living for ttl.
func SetSessionCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(ttl.Seconds()), "/", "", secure, true)
}

// ClearSessionCookie expires the session cookie in the browser.
func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}
