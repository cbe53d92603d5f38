package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/verdantia/storefront-backend/internal/errors"
	"github.com/verdantia/storefront-backend/pkg/util"
)

// CartSessionKey is the gin context key holding the cart session id
const CartSessionKey = "cart_session_id"

const cartTokenHeader = "X-Cart-Token"

type CartSessionMiddleware struct {
	secret string
}

func NewCartSessionMiddleware(secret string) *CartSessionMiddleware {
	return &CartSessionMiddleware{secret: secret}
}

// RequireSession resolves the cart token from the Authorization bearer,
// the X-Cart-Token header or the token query parameter (websocket).
func (m *CartSessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token := extractCartToken(c)
		if token == "" {
			log.Warn("Missing cart token", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, errors.SessionMissing, "Necesitas una sesión de carrito")
			c.Abort()
			return
		}

		claims, err := util.ValidateCartToken(token, m.secret)
		if err != nil {
			log.Warn("Cart token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if err == util.ErrExpiredToken {
				errors.Unauthorized(c, errors.SessionExpired, "Tu sesión de carrito expiró")
			} else {
				errors.Unauthorized(c, errors.SessionInvalid, "")
			}
			c.Abort()
			return
		}

		c.Set(CartSessionKey, claims.SessionID)
		c.Next()
	}
}

// GetCartSessionID returns the session id set by RequireSession
func GetCartSessionID(c *gin.Context) (string, bool) {
	id := c.GetString(CartSessionKey)
	return id, id != ""
}

func extractCartToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if token := c.GetHeader(cartTokenHeader); token != "" {
		return token
	}
	return c.Query("token")
}
