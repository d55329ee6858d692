package lending

import (
	"sort"
	"strings"

	"filmshelf/backend/internal/models"

	"gorm.io/gorm"
)

// Board is one user's view of lending activity.
type Board struct {
	// RequestsReceived are asks for the user's films, by requester name.
	RequestsReceived []models.LendingRequest
	// RequestsMade are the user's own asks, by owner name.
	RequestsMade []models.LendingRequest
	// Lent are the user's films held by others, by borrower name.
	Lent []models.Film
	// Borrowed are other people's films the user holds, by owner name.
	Borrowed []models.Film
}

// LoadBoard aggregates the lending board for userID.
func LoadBoard(db *gorm.DB, userID uint) (Board, error) {
	var b Board

	if err := db.Preload("Film").Preload("Borrower").Preload("Owner").
		Where("owner_id = ?", userID).Find(&b.RequestsReceived).Error; err != nil {
		return b, err
	}
	if err := db.Preload("Film").Preload("Borrower").Preload("Owner").
		Where("borrower_id = ?", userID).Find(&b.RequestsMade).Error; err != nil {
		return b, err
	}
	if err := db.Preload("Owner").Preload("Borrower").
		Where("owner_id = ? AND borrower_id IS NOT NULL", userID).Find(&b.Lent).Error; err != nil {
		return b, err
	}
	if err := db.Preload("Owner").Preload("Borrower").
		Where("borrower_id = ?", userID).Find(&b.Borrowed).Error; err != nil {
		return b, err
	}

	sortRequests(b.RequestsReceived, func(r models.LendingRequest) string { return r.Borrower.Name })
	sortRequests(b.RequestsMade, func(r models.LendingRequest) string { return r.Owner.Name })
	sortFilms(b.Lent, func(f models.Film) string { return userName(f.Borrower) })
	sortFilms(b.Borrowed, func(f models.Film) string { return userName(f.Owner) })
	return b, nil
}

// Empty reports whether the board has nothing to show.
func (b Board) Empty() bool {
	return len(b.RequestsReceived)+len(b.RequestsMade)+len(b.Lent)+len(b.Borrowed) == 0
}

func userName(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.Name
}

func sortRequests(rs []models.LendingRequest, key func(models.LendingRequest) string) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := strings.ToLower(key(rs[i])), strings.ToLower(key(rs[j]))
		if a != b {
			return a < b
		}
		return rs[i].ID < rs[j].ID
	})
}

func sortFilms(fs []models.Film, key func(models.Film) string) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := strings.ToLower(key(fs[i])), strings.ToLower(key(fs[j]))
		if a != b {
			return a < b
		}
		return fs[i].Title < fs[j].Title
	})
}
