package models

import (
	"strings"
	"time"
)

// LoanState is the derived lending status of a film.
type LoanState string

const (
	LoanAvailable LoanState = "available"
	LoanLoaned    LoanState = "loaned"
)

// Film is a catalog entry, either physically owned or on someone's wishlist.
type Film struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Title       string `gorm:"size:200;not null"`
	Year        *int   `gorm:"index"`
	Description string `gorm:"type:text"`
	TMDBID      string `gorm:"column:tmdb_id;size:20;uniqueIndex"`
	PosterURL   string `gorm:"size:500"`
	Genres      string `gorm:"size:500"`
	Wishlist    bool   `gorm:"not null;default:false;index"`

	OwnerID *uint `gorm:"index"`
	Owner   *User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`

	// BorrowerID and LoanedAt are set and cleared together.
	BorrowerID *uint `gorm:"index"`
	Borrower   *User `gorm:"foreignKey:BorrowerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	LoanedAt   *time.Time
}

// State reports whether the film is currently lent out.
func (f *Film) State() LoanState {
	if f.BorrowerID != nil && f.LoanedAt != nil {
		return LoanLoaned
	}
	return LoanAvailable
}

// IsOwnedBy reports whether userID is the film's owner.
func (f *Film) IsOwnedBy(userID uint) bool {
	return f.OwnerID != nil && *f.OwnerID == userID
}

// IsBorrowedBy reports whether userID currently holds the film.
func (f *Film) IsBorrowedBy(userID uint) bool {
	return f.BorrowerID != nil && *f.BorrowerID == userID
}

// GenreList splits the stored genre string into its names.
func (f *Film) GenreList() []string {
	var genres []string
	for _, g := range strings.Split(f.Genres, ",") {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

// ManageableBy reports whether a user may change ownership, wishlist or loan
// state of the film: its owner, any admin, or anyone while it has no owner.
func (f *Film) ManageableBy(a Actor) bool {
	return a.Admin || f.OwnerID == nil || *f.OwnerID == a.ID
}

// DeletableBy reports whether a user may delete the film: only its owner or
// an admin, even while it has no owner.
func (f *Film) DeletableBy(a Actor) bool {
	return a.Admin || f.IsOwnedBy(a.ID)
}
