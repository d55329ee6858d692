package auth

import (
	"net/http"
	"strings"

	"filmshelf/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// BearerAuth authenticates API requests by an "Authorization: Bearer <token>" header.
func (m *Manager) BearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.Split(c.GetHeader("Authorization"), " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or malformed authorization header"})
			return
		}

		user, ok := m.lookup(parts[1])
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		setIdentity(c, user)
		c.Next()
	}
}

// IssueToken creates an API bearer token for the given identity.
func (m *Manager) IssueToken(id Identity) (string, error) {
	return jwt.GenerateToken(m.Secret, id.ID, id.Name, id.Admin, m.TTL)
}
