package database

import (
	"errors"
	"fmt"
	"strings"

	"filmshelf/backend/internal/auth"
	"filmshelf/backend/internal/models"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

var ErrInvalidBootstrapEntry = errors.New("invalid initial user entry")

// BootstrapUser is one entry of the INITIAL_USERS list.
type BootstrapUser struct {
	Name     string
	Password string
	Admin    bool
}

const adminSuffix = ":admin"

// ParseInitialUsers parses "name:password[:admin][,name:password...]".
// The name ends at the first colon, so passwords may contain colons.
// When no entry is flagged as admin, the first one is promoted.
func ParseInitialUsers(raw string) ([]BootstrapUser, error) {
	var users []BootstrapUser
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, password, found := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		u := BootstrapUser{Name: name, Password: password}
		if rest, ok := strings.CutSuffix(password, adminSuffix); ok {
			u.Password = rest
			u.Admin = true
		}
		if !found || name == "" || u.Password == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidBootstrapEntry, entry)
		}
		users = append(users, u)
	}

	hasAdmin := false
	for _, u := range users {
		hasAdmin = hasAdmin || u.Admin
	}
	if !hasAdmin && len(users) > 0 {
		users[0].Admin = true
	}
	return users, nil
}

// Bootstrap creates the initial users, but only when the user table is empty.
func Bootstrap(db *gorm.DB, raw string, l *log.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	entries, err := ParseInitialUsers(raw)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		l.Warn("No users exist and INITIAL_USERS is empty; create one with `filmshelf user add`")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			hash, err := auth.HashPassword(e.Password)
			if err != nil {
				return err
			}
			user := models.User{Name: e.Name, PasswordHash: hash, IsAdmin: e.Admin}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create initial user %q: %w", e.Name, err)
			}
			l.Info("Initial user created", "name", e.Name, "admin", e.Admin)
		}
		return nil
	})
}
