// Package lending moves films between the available and loaned states and
// manages the queue of lending requests in front of them.
package lending

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"filmshelf/backend/internal/models"

	"gorm.io/gorm"
)

// DateLayout is the accepted format of an operator-supplied loan date.
const DateLayout = "2006-01-02"

var (
	ErrFilmNotFound    = errors.New("film not found")
	ErrRequestNotFound = errors.New("lending request not found")
	ErrMissingBorrower = errors.New("no borrower selected")
	ErrUnknownUser     = errors.New("user not found")
	ErrAlreadyLoaned   = errors.New("film is already lent out")
	ErrNotLoaned       = errors.New("film is not lent out")
	ErrInvalidDate     = errors.New("invalid date")
	ErrBorrowerIsOwner = errors.New("film cannot be lent to its owner")
	ErrWishlistFilm    = errors.New("wishlist films cannot be lent")
	ErrForbidden       = errors.New("not allowed")

	// Request preconditions.
	ErrOwnFilm          = errors.New("you own this film")
	ErrNoOwner          = errors.New("film has no owner to ask")
	ErrFilmUnavailable  = errors.New("film is currently lent out")
	ErrAlreadyRequested = errors.New("you have already requested this film")
)

// Lend moves the film to the loaned state for the user called borrowerName.
// An empty date means now. A pending request by the borrower is consumed.
func Lend(db *gorm.DB, actor models.Actor, filmID uint, borrowerName, date string, now time.Time) (models.Film, error) {
	borrowerName = strings.TrimSpace(borrowerName)
	if borrowerName == "" {
		return models.Film{}, ErrMissingBorrower
	}

	var film models.Film
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if film, err = loadFilm(tx, filmID); err != nil {
			return err
		}
		if !film.ManageableBy(actor) {
			return ErrForbidden
		}

		var borrower models.User
		if err := tx.Where("name = ?", borrowerName).First(&borrower).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %q", ErrUnknownUser, borrowerName)
			}
			return err
		}
		return lend(tx, &film, borrower, date, now)
	})
	return film, err
}

// Approve accepts a pending request by lending the film to its borrower now.
func Approve(db *gorm.DB, actor models.Actor, requestID uint, now time.Time) (models.Film, error) {
	var film models.Film
	err := db.Transaction(func(tx *gorm.DB) error {
		var req models.LendingRequest
		if err := tx.Preload("Borrower").First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		var err error
		if film, err = loadFilm(tx, req.FilmID); err != nil {
			return err
		}
		if !film.ManageableBy(actor) {
			return ErrForbidden
		}
		return lend(tx, &film, req.Borrower, "", now)
	})
	return film, err
}

func lend(tx *gorm.DB, film *models.Film, borrower models.User, date string, now time.Time) error {
	if film.State() == models.LoanLoaned {
		return ErrAlreadyLoaned
	}
	if film.Wishlist {
		return ErrWishlistFilm
	}
	if film.IsOwnedBy(borrower.ID) {
		return ErrBorrowerIsOwner
	}

	since := now
	if date = strings.TrimSpace(date); date != "" {
		parsed, err := time.ParseInLocation(DateLayout, date, now.Location())
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, date)
		}
		since = parsed
	}

	film.BorrowerID = &borrower.ID
	film.Borrower = &borrower
	film.LoanedAt = &since
	if err := tx.Model(film).Updates(map[string]interface{}{
		"borrower_id": borrower.ID,
		"loaned_at":   since,
	}).Error; err != nil {
		return err
	}

	return tx.Where("film_id = ? AND borrower_id = ?", film.ID, borrower.ID).
		Delete(&models.LendingRequest{}).Error
}

// Return moves a loaned film back to available and reports who had it. The
// owner, the borrower or an admin may return it.
func Return(db *gorm.DB, actor models.Actor, filmID uint) (models.Film, string, error) {
	var film models.Film
	var borrowerName string
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if film, err = loadFilm(tx, filmID); err != nil {
			return err
		}
		if !film.ManageableBy(actor) && !film.IsBorrowedBy(actor.ID) {
			return ErrForbidden
		}
		if film.State() != models.LoanLoaned {
			return ErrNotLoaned
		}
		if film.Borrower != nil {
			borrowerName = film.Borrower.Name
		}

		film.BorrowerID, film.Borrower, film.LoanedAt = nil, nil, nil
		return tx.Model(&film).Updates(map[string]interface{}{
			"borrower_id": nil,
			"loaned_at":   nil,
		}).Error
	})
	return film, borrowerName, err
}

// Request files a lending request by borrowerID. A non-nil error means a
// precondition failed and nothing was stored.
func Request(db *gorm.DB, filmID, borrowerID uint) (models.LendingRequest, error) {
	var req models.LendingRequest
	err := db.Transaction(func(tx *gorm.DB) error {
		film, err := loadFilm(tx, filmID)
		if err != nil {
			return err
		}

		switch {
		case film.OwnerID == nil:
			return ErrNoOwner
		case film.IsOwnedBy(borrowerID):
			return ErrOwnFilm
		case film.Wishlist:
			return ErrWishlistFilm
		case film.State() == models.LoanLoaned:
			return ErrFilmUnavailable
		}

		var open int64
		if err := tx.Model(&models.LendingRequest{}).
			Where("film_id = ? AND borrower_id = ?", film.ID, borrowerID).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrAlreadyRequested
		}

		req = models.LendingRequest{FilmID: film.ID, BorrowerID: borrowerID, OwnerID: *film.OwnerID}
		if err := tx.Create(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRequested
			}
			return err
		}
		req.Film = film
		req.Owner = *film.Owner
		return nil
	})
	return req, err
}

// Cancel deletes a request. The borrower withdraws it, the owner or an admin
// declines it.
func Cancel(db *gorm.DB, actor models.Actor, requestID uint) (models.LendingRequest, error) {
	var req models.LendingRequest
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Film").Preload("Borrower").First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if !actor.Admin && req.BorrowerID != actor.ID && req.OwnerID != actor.ID {
			return ErrForbidden
		}
		return tx.Delete(&req).Error
	})
	return req, err
}

func loadFilm(tx *gorm.DB, id uint) (models.Film, error) {
	var film models.Film
	if err := tx.Preload("Owner").Preload("Borrower").First(&film, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return film, ErrFilmNotFound
		}
		return film, err
	}
	return film, nil
}

// Pending returns the open requests for a film by borrower name.
func Pending(db *gorm.DB, filmID uint) ([]models.LendingRequest, error) {
	var reqs []models.LendingRequest
	if err := db.Preload("Borrower").Where("film_id = ?", filmID).Find(&reqs).Error; err != nil {
		return nil, err
	}
	sortRequests(reqs, func(r models.LendingRequest) string { return r.Borrower.Name })
	return reqs, nil
}
