// Package testutil contains shared testing utilities.
package testutil

import (
	"bytes"
	"testing"
	"time"

	"filmshelf/backend/internal/auth"
	"filmshelf/backend/internal/database"
	"filmshelf/backend/internal/logging"
	"filmshelf/backend/internal/models"

	"gorm.io/gorm"
)

// NewDB opens a migrated in-memory sqlite database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:", logging.New(&bytes.Buffer{}, "error"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// MustCreateUser inserts a user whose password equals its name.
func MustCreateUser(t *testing.T, db *gorm.DB, name string, admin bool) models.User {
	t.Helper()
	hash, err := auth.HashPassword(name)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := models.User{Name: name, PasswordHash: hash, IsAdmin: admin}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

// FilmOption customises a film created by MustCreateFilm.
type FilmOption func(*models.Film)

// OwnedBy sets the film's owner.
func OwnedBy(u models.User) FilmOption {
	return func(f *models.Film) { f.OwnerID = &u.ID }
}

// Year sets the release year.
func Year(y int) FilmOption {
	return func(f *models.Film) { f.Year = &y }
}

// Genres sets the comma-joined genre string.
func Genres(g string) FilmOption {
	return func(f *models.Film) { f.Genres = g }
}

// OnWishlist marks the film as a wishlist entry.
func OnWishlist() FilmOption {
	return func(f *models.Film) { f.Wishlist = true }
}

// LentTo puts the film on loan to u since the given time.
func LentTo(u models.User, since time.Time) FilmOption {
	return func(f *models.Film) {
		f.BorrowerID = &u.ID
		f.LoanedAt = &since
	}
}

// MustCreateFilm inserts a film with a TMDb id derived from its title.
func MustCreateFilm(t *testing.T, db *gorm.DB, title string, opts ...FilmOption) models.Film {
	t.Helper()
	f := models.Film{Title: title, TMDBID: "t-" + title}
	for _, opt := range opts {
		opt(&f)
	}
	if err := db.Create(&f).Error; err != nil {
		t.Fatalf("create film %s: %v", title, err)
	}
	return f
}

// MustCreateRequest inserts a lending request for film by borrower.
func MustCreateRequest(t *testing.T, db *gorm.DB, film models.Film, borrower models.User) models.LendingRequest {
	t.Helper()
	if film.OwnerID == nil {
		t.Fatalf("film %s has no owner", film.Title)
	}
	r := models.LendingRequest{FilmID: film.ID, BorrowerID: borrower.ID, OwnerID: *film.OwnerID}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("create request: %v", err)
	}
	return r
}
