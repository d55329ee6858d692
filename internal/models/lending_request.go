package models

import "time"

// LendingRequest is an open ask by a borrower to receive a film from its owner.
// The unique index on (FilmID, BorrowerID) allows at most one open request per pair.
type LendingRequest struct {
	ID         uint `gorm:"primaryKey"`
	FilmID     uint `gorm:"not null;uniqueIndex:idx_request_film_borrower"`
	BorrowerID uint `gorm:"not null;uniqueIndex:idx_request_film_borrower;index"`
	OwnerID    uint `gorm:"not null;index"`
	CreatedAt  time.Time

	Film     Film `gorm:"foreignKey:FilmID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Borrower User `gorm:"foreignKey:BorrowerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Owner    User `gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
