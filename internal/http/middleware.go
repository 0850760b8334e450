package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/example/reqdesk/backend/internal/models"
)

const (
	ctxUserKey  = "currentUser"
	ctxTokenKey = "accessToken"

	// SessionCookieName carries the access token for browser clients that
	// do not set an Authorization header.
	SessionCookieName = "access_token"
)

// authRequired verifies the caller's access token and resolves the local
// user row before any handler runs. Unauthenticated callers never reach a
// state-mutating operation.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		identity, err := s.verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := s.users.FindByUUID(c.Request.Context(), identity.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(ctxUserKey, user)
		c.Set(ctxTokenKey, token)
		c.Next()
	}
}

// adminRequired gates the staff surface on the admin role.
func (s *Server) adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

func currentToken(c *gin.Context) string {
	return c.GetString(ctxTokenKey)
}
