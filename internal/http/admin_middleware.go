package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"spicy-biryani/internal/service"
)

const adminGrantKey = "admin_grant"

// AdminAuthMiddleware valida el token de sesión de admin y guarda su grant en el contexto.
func AdminAuthMiddleware(session *service.AdminSession) gin.HandlerFunc {
	return func(c *gin.Context) {
		if session == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "admin session not configured"})
			c.Abort()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		grant, err := session.Validate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrAdminNotConfigured) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin login disabled"})
				c.Abort()
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(adminGrantKey, grant)
		c.Next()
	}
}

// GetAdminGrant obtiene la sesión de admin validada desde el contexto.
func GetAdminGrant(c *gin.Context) (service.AdminGrant, bool) {
	val, ok := c.Get(adminGrantKey)
	if !ok {
		return service.AdminGrant{}, false
	}
	grant, ok := val.(service.AdminGrant)
	return grant, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	return token, token != ""
}
