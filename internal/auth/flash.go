package auth

import (
	"net/http"

	"filmshelf/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
)

// FlashCategory styles a one-shot message.
type FlashCategory string

const (
	FlashSuccess FlashCategory = "success"
	FlashWarning FlashCategory = "warning"
	FlashError   FlashCategory = "error"
	FlashInfo    FlashCategory = "info"

	FlashCookie = "flash"
	flashKey    = "flashes"
)

// FlashMessage is a message shown once on the next rendered page.
type FlashMessage struct {
	Category FlashCategory `json:"c"`
	Message  string        `json:"m"`
}

type flashClaims struct {
	Messages []FlashMessage `json:"msgs"`
	gojwt.RegisteredClaims
}

// Flash queues a message for the next page render. Messages queued during one
// request are written together into a signed cookie.
func (m *Manager) Flash(c *gin.Context, category FlashCategory, message string) {
	var pending []FlashMessage
	if v, ok := c.Get(flashKey); ok {
		pending = v.([]FlashMessage)
	}
	pending = append(pending, FlashMessage{Category: category, Message: message})
	c.Set(flashKey, pending)

	token, err := jwt.Sign(m.Secret, flashClaims{Messages: pending})
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, token, 300, "/", "", m.Secure, true)
}

// Flashes returns and clears the messages carried by the request's flash cookie.
func (m *Manager) Flashes(c *gin.Context) []FlashMessage {
	token, err := c.Cookie(FlashCookie)
	if err != nil || token == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, "", -1, "/", "", m.Secure, true)

	var claims flashClaims
	if err := jwt.Parse(m.Secret, token, &claims); err != nil {
		return nil
	}
	return claims.Messages
}
