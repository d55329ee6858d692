// Package catalog maintains the film collection: listing, adding, ownership
// and wishlist state.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"filmshelf/backend/internal/models"
	"filmshelf/backend/internal/tmdb"

	"gorm.io/gorm"
)

var (
	ErrFilmNotFound  = errors.New("film not found")
	ErrAlreadyExists = errors.New("film is already in the collection")
	ErrUnknownUser   = errors.New("user not found")
	ErrLoaned        = errors.New("film is currently lent out")
	ErrForbidden     = errors.New("not allowed")
	ErrBorrowerOwns  = errors.New("film cannot be owned by its current borrower")
)

// ExistsError carries the film that blocked an insert.
type ExistsError struct {
	Film models.Film
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("film %q is already in the collection", e.Film.Title)
}

func (e *ExistsError) Unwrap() error { return ErrAlreadyExists }

// Get loads a film with its owner and borrower.
func Get(db *gorm.DB, id uint) (models.Film, error) {
	var film models.Film
	err := db.Preload("Owner").Preload("Borrower").First(&film, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return film, ErrFilmNotFound
	}
	return film, err
}

// Add stores fetched metadata as a new film owned by ownerID. A film with the
// same TMDb id is never inserted twice.
func Add(db *gorm.DB, movie *tmdb.Movie, ownerID uint, wishlist bool) (models.Film, error) {
	var existing models.Film
	err := db.Where("tmdb_id = ?", movie.TMDBID).First(&existing).Error
	if err == nil {
		return existing, &ExistsError{Film: existing}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return existing, err
	}

	film := models.Film{
		Title:       movie.Title,
		Year:        movie.Year,
		Description: movie.Description,
		TMDBID:      movie.TMDBID,
		PosterURL:   movie.PosterURL,
		Genres:      movie.Genres,
		Wishlist:    wishlist,
		OwnerID:     &ownerID,
	}
	if err := db.Create(&film).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return film, &ExistsError{Film: film}
		}
		return film, fmt.Errorf("create film: %w", err)
	}
	return film, nil
}

// SetOwner assigns the film to the user called ownerName, or clears the owner
// when ownerName is empty. Pending requests follow the new owner; requests
// filed by the new owner themself, or all requests when unassigned, are dropped.
// A lent-out film cannot be handed to its borrower.
func SetOwner(db *gorm.DB, actor models.Actor, filmID uint, ownerName string) (models.Film, error) {
	var film models.Film
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&film, filmID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFilmNotFound
			}
			return err
		}
		if !film.ManageableBy(actor) {
			return ErrForbidden
		}

		ownerName = strings.TrimSpace(ownerName)
		if ownerName == "" {
			film.OwnerID = nil
			film.Owner = nil
			if err := tx.Model(&film).Update("owner_id", nil).Error; err != nil {
				return err
			}
			return tx.Where("film_id = ?", film.ID).Delete(&models.LendingRequest{}).Error
		}

		var owner models.User
		if err := tx.Where("name = ?", ownerName).First(&owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %q", ErrUnknownUser, ownerName)
			}
			return err
		}
		if film.IsBorrowedBy(owner.ID) {
			return fmt.Errorf("%w: %q", ErrBorrowerOwns, ownerName)
		}

		film.OwnerID = &owner.ID
		film.Owner = &owner
		if err := tx.Model(&film).Update("owner_id", owner.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("film_id = ? AND borrower_id = ?", film.ID, owner.ID).
			Delete(&models.LendingRequest{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.LendingRequest{}).Where("film_id = ?", film.ID).
			Update("owner_id", owner.ID).Error
	})
	return film, err
}

// ToggleWishlist flips the wishlist flag. A lent-out film cannot become a
// wishlist entry, and pending requests are dropped when it does.
func ToggleWishlist(db *gorm.DB, actor models.Actor, filmID uint) (models.Film, error) {
	var film models.Film
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&film, filmID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFilmNotFound
			}
			return err
		}
		if !film.ManageableBy(actor) {
			return ErrForbidden
		}
		if !film.Wishlist && film.State() == models.LoanLoaned {
			return ErrLoaned
		}

		film.Wishlist = !film.Wishlist
		if err := tx.Model(&film).Update("wishlist", film.Wishlist).Error; err != nil {
			return err
		}
		if film.Wishlist {
			return tx.Where("film_id = ?", film.ID).Delete(&models.LendingRequest{}).Error
		}
		return nil
	})
	return film, err
}

// Delete removes a film together with its lending requests. Only the owner
// or an admin may delete it.
func Delete(db *gorm.DB, actor models.Actor, filmID uint) (models.Film, error) {
	var film models.Film
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&film, filmID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFilmNotFound
			}
			return err
		}
		if !film.DeletableBy(actor) {
			return ErrForbidden
		}
		if err := tx.Where("film_id = ?", film.ID).Delete(&models.LendingRequest{}).Error; err != nil {
			return err
		}
		return tx.Delete(&film).Error
	})
	return film, err
}
