package auth

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// RequireLogin redirects to the login page when no session is present.
// It must be used AFTER LoadSession.
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.ensureLogin(c) {
			return
		}
		c.Next()
	}
}

// RequireAdmin redirects home unless the current user is an admin.
// It implies RequireLogin.
func (m *Manager) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.ensureLogin(c) {
			return
		}
		if id, _ := CurrentUser(c); !id.Admin {
			m.Flash(c, FlashWarning, "Admin access required.")
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *Manager) ensureLogin(c *gin.Context) bool {
	if _, ok := CurrentUser(c); ok {
		return true
	}
	m.Flash(c, FlashWarning, "Please log in first.")
	target := "/login"
	// Only a GET can be replayed after login.
	if c.Request.Method == http.MethodGet {
		target += "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
	}
	c.Redirect(http.StatusSeeOther, target)
	c.Abort()
	return false
}
