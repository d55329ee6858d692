package auth

import "github.com/gin-gonic/gin"

// LoadSession inspects the session cookie and sets the identity if it is present
// and valid, but does not fail if it is missing or invalid.
func (m *Manager) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
			if user, ok := m.lookup(token); ok {
				setIdentity(c, user)
			}
		}
		c.Next()
	}
}
