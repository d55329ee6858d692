// Package members manages user accounts.
package members

import (
	"errors"
	"fmt"
	"strings"

	"filmshelf/backend/internal/auth"
	"filmshelf/backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrEmptyName       = errors.New("name must not be empty")
	ErrEmptyPassword   = errors.New("password must not be empty")
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrOwnsFilms       = errors.New("user still owns films")
	ErrWrongPassword   = errors.New("current password is wrong")
	ErrPasswordsDiffer = errors.New("passwords do not match")
)

// Summary is a user with the number of films they own.
type Summary struct {
	models.User
	FilmCount int64
}

// List returns all users ordered by name.
func List(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	if err := db.Order("name").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListWithCounts returns all users ordered by name with their owned-film count.
func ListWithCounts(db *gorm.DB) ([]Summary, error) {
	var summaries []Summary
	err := db.Model(&models.User{}).
		Select("users.*, COUNT(films.id) AS film_count").
		Joins("LEFT JOIN films ON films.owner_id = users.id").
		Group("users.id").
		Order("users.name").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// Create adds a user with a hashed password.
func Create(db *gorm.DB, name, password string, admin bool) (models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.User{}, ErrEmptyName
	}
	if password == "" {
		return models.User{}, ErrEmptyPassword
	}

	var count int64
	if err := db.Model(&models.User{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return models.User{}, err
	}
	if count > 0 {
		return models.User{}, fmt.Errorf("%w: %q", ErrUserExists, name)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{Name: name, PasswordHash: hash, IsAdmin: admin}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, fmt.Errorf("%w: %q", ErrUserExists, name)
		}
		return models.User{}, err
	}
	return user, nil
}

// FindByName loads the user called name.
func FindByName(db *gorm.DB, name string) (models.User, error) {
	var user models.User
	err := db.Where("name = ?", strings.TrimSpace(name)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, fmt.Errorf("%w: %q", ErrUserNotFound, name)
	}
	return user, err
}

// Delete removes a user who owns no films. Their lending requests, as borrower
// or owner, are deleted and loans they hold are returned.
func Delete(db *gorm.DB, userID uint) (models.User, int64, error) {
	var user models.User
	var owned int64
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if err := tx.Model(&models.Film{}).Where("owner_id = ?", user.ID).Count(&owned).Error; err != nil {
			return err
		}
		if owned > 0 {
			return ErrOwnsFilms
		}

		if err := tx.Where("borrower_id = ? OR owner_id = ?", user.ID, user.ID).
			Delete(&models.LendingRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Film{}).Where("borrower_id = ?", user.ID).
			Updates(map[string]interface{}{"borrower_id": nil, "loaned_at": nil}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	return user, owned, err
}

// ChangePassword replaces the password after verifying the current one.
func ChangePassword(db *gorm.DB, userID uint, current, next, confirm string) error {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, current) {
		return ErrWrongPassword
	}
	if next != confirm {
		return ErrPasswordsDiffer
	}
	return SetPassword(db, user.ID, next)
}

// SetPassword replaces the password without verification.
func SetPassword(db *gorm.DB, userID uint, password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	result := db.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
