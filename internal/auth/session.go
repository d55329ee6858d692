package auth

import (
	"net/http"
	"time"

	"filmshelf/backend/internal/models"
	"filmshelf/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	SessionCookie = "session"
	identityKey   = "identity"
)

// Identity is the authenticated user attached to a request.
type Identity struct {
	ID    uint
	Name  string
	Admin bool
}

// Manager issues sessions and guards routes.
type Manager struct {
	DB     *gorm.DB
	Secret []byte
	TTL    time.Duration
	// Secure marks cookies as HTTPS-only.
	Secure bool
}

// NewManager creates a Manager with the given signing secret.
func NewManager(db *gorm.DB, secret string, ttl time.Duration) *Manager {
	return &Manager{DB: db, Secret: []byte(secret), TTL: ttl}
}

// CurrentUser returns the identity set by LoadSession or BearerAuth.
func CurrentUser(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

func setIdentity(c *gin.Context, u models.User) {
	c.Set(identityKey, Identity{ID: u.ID, Name: u.Name, Admin: u.IsAdmin})
}

// Login starts a session for u by setting the session cookie.
func (m *Manager) Login(c *gin.Context, u models.User) error {
	token, err := jwt.GenerateToken(m.Secret, u.ID, u.Name, u.IsAdmin, m.TTL)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(m.TTL.Seconds()), "/", "", m.Secure, true)
	setIdentity(c, u)
	return nil
}

// Logout clears the session cookie.
func (m *Manager) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", m.Secure, true)
	c.Set(identityKey, nil)
}

// Authenticate checks name and password against the stored hash.
func (m *Manager) Authenticate(name, password string) (models.User, bool) {
	var user models.User
	if err := m.DB.Where("name = ?", name).First(&user).Error; err != nil {
		return models.User{}, false
	}
	if !CheckPassword(user.PasswordHash, password) {
		return models.User{}, false
	}
	return user, true
}

// lookup resolves a token into the current user row.
func (m *Manager) lookup(token string) (models.User, bool) {
	claims, err := jwt.ParseToken(m.Secret, token)
	if err != nil {
		return models.User{}, false
	}
	id, err := claims.UserID()
	if err != nil {
		return models.User{}, false
	}
	var user models.User
	if err := m.DB.First(&user, id).Error; err != nil {
		return models.User{}, false
	}
	return user, true
}
