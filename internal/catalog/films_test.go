package catalog

import (
	"testing"
	"time"

	"filmshelf/backend/internal/models"
	tu "filmshelf/backend/internal/testutil"
	"filmshelf/backend/internal/tmdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alien() *tmdb.Movie {
	year := 1979
	return &tmdb.Movie{
		TMDBID:    "348",
		Title:     "Alien",
		Year:      &year,
		PosterURL: "https://image.tmdb.org/t/p/w500/alien.jpg",
		Genres:    "Horror, Science Fiction",
	}
}

func TestAdd(t *testing.T) {
	db := tu.NewDB(t)
	anna := tu.MustCreateUser(t, db, "anna", false)
	ben := tu.MustCreateUser(t, db, "ben", false)

	film, err := Add(db, alien(), anna.ID, false)
	require.NoError(t, err)
	assert.NotZero(t, film.ID)
	assert.True(t, film.IsOwnedBy(anna.ID))
	assert.False(t, film.Wishlist)

	t.Run("DuplicateTMDBIDIsRejected", func(t *testing.T) {
		_, err := Add(db, alien(), ben.ID, true)
		assert.ErrorIs(t, err, ErrAlreadyExists)

		var exists *ExistsError
		require.ErrorAs(t, err, &exists)
		assert.Equal(t, film.ID, exists.Film.ID)

		var count int64
		db.Model(&models.Film{}).Where("tmdb_id = ?", "348").Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("WishlistIntent", func(t *testing.T) {
		movie := alien()
		movie.TMDBID = "679"
		movie.Title = "Aliens"
		wish, err := Add(db, movie, ben.ID, true)
		require.NoError(t, err)
		assert.True(t, wish.Wishlist)
		assert.True(t, wish.IsOwnedBy(ben.ID))
	})
}

func TestGet(t *testing.T) {
	db := tu.NewDB(t)
	anna := tu.MustCreateUser(t, db, "anna", false)
	film := tu.MustCreateFilm(t, db, "Alien", tu.OwnedBy(anna))

	got, err := Get(db, film.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Owner)
	assert.Equal(t, "anna", got.Owner.Name)

	_, err = Get(db, 9999)
	assert.ErrorIs(t, err, ErrFilmNotFound)
}

func TestSetOwner(t *testing.T) {
	db := tu.NewDB(t)
	anna := tu.MustCreateUser(t, db, "anna", false)
	ben := tu.MustCreateUser(t, db, "ben", false)
	carl := tu.MustCreateUser(t, db, "carl", false)
	asAnna := models.Actor{ID: anna.ID}

	t.Run("Reassign", func(t *testing.T) {
		film := tu.MustCreateFilm(t, db, "Alien", tu.OwnedBy(anna))
		benReq := tu.MustCreateRequest(t, db, film, ben)
		carlReq := tu.MustCreateRequest(t, db, film, carl)

		updated, err := SetOwner(db, asAnna, film.ID, "ben")
		require.NoError(t, err)
		assert.True(t, updated.IsOwnedBy(ben.ID))

		// ben's own request is dropped; carl's request now targets ben.
		var reqs []models.LendingRequest
		require.NoError(t, db.Find(&reqs).Error)
		require.Len(t, reqs, 1)
		assert.Equal(t, carlReq.ID, reqs[0].ID)
		assert.Equal(t, ben.ID, reqs[0].OwnerID)
		assert.NotEqual(t, benReq.ID, reqs[0].ID)
	})

	t.Run("Clear", func(t *testing.T) {
		film := tu.MustCreateFilm(t, db, "Heat", tu.OwnedBy(anna))
		tu.MustCreateRequest(t, db, film, carl)

		updated, err := SetOwner(db, asAnna, film.ID, "")
		require.NoError(t, err)
		assert.Nil(t, updated.OwnerID)

		var count int64
		db.Model(&models.LendingRequest{}).Where("film_id = ?", film.ID).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		film := tu.MustCreateFilm(t, db, "Dune", tu.OwnedBy(anna))
		_, err := SetOwner(db, asAnna, film.ID, "zoe")
		assert.ErrorIs(t, err, ErrUnknownUser)

		got, _ := Get(db, film.ID)
		assert.True(t, got.IsOwnedBy(anna.ID))
	})

	t.Run("Forbidden", func(t *testing.T) {
		film := tu.MustCreateFilm(t, db, "Memento", tu.OwnedBy(anna))
		_, err := SetOwner(db, models.Actor{ID: carl.ID}, film.ID, "carl")
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = SetOwner(db, models.Actor{ID: carl.ID, Admin: true}, film.ID, "carl")
		assert.NoError(t, err)
	})

	t.Run("BorrowerCannotBecomeOwner", func(t *testing.T) {
		film := tu.MustCreateFilm(t, db, "Ronin", tu.OwnedBy(anna), tu.LentTo(ben, time.Now()))
		_, err := SetOwner(db, asAnna, film.ID, "ben")
		assert.ErrorIs(t, err, ErrBorrowerOwns)

		got, err := Get(db, film.ID)
		require.NoError(t, err)
		assert.True(t, got.IsOwnedBy(anna.ID))
		assert.True(t, got.IsBorrowedBy(ben.ID))
		assert.Equal(t, models.LoanLoaned, got.State())

		_, err = SetOwner(db, asAnna, film.ID, "carl")
		assert.NoError(t, err)
	})

	t.Run("MissingFilm", func(t *testing.T) {
		_, err := SetOwner(db, asAnna, 9999, "anna")
		assert.ErrorIs(t, err, ErrFilmNotFound)
	})
}

func TestToggleWishlist(t *testing.T) {
	db := tu.NewDB(t)
	anna := tu.MustCreateUser(t, db, "anna", false)
	ben := tu.MustCreateUser(t, db, "ben", false)
	asAnna := models.Actor{ID: anna.ID}

	film := tu.MustCreateFilm(t, db, "Alien", tu.OwnedBy(anna))
	tu.MustCreateRequest(t, db, film, ben)

	updated, err := ToggleWishlist(db, asAnna, film.ID)
	require.NoError(t, err)
	assert.True(t, updated.Wishlist)

	var count int64
	db.Model(&models.LendingRequest{}).Where("film_id = ?", film.ID).Count(&count)
	assert.Zero(t, count, "pending requests are dropped for wishlist films")

	updated, err = ToggleWishlist(db, asAnna, film.ID)
	require.NoError(t, err)
	assert.False(t, updated.Wishlist)

	t.Run("LoanedFilmCannotBecomeWishlist", func(t *testing.T) {
		lent := tu.MustCreateFilm(t, db, "Heat", tu.OwnedBy(anna), tu.LentTo(ben, time.Now()))
		_, err := ToggleWishlist(db, asAnna, lent.ID)
		assert.ErrorIs(t, err, ErrLoaned)
	})

	t.Run("Forbidden", func(t *testing.T) {
		_, err := ToggleWishlist(db, models.Actor{ID: ben.ID}, film.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestDelete(t *testing.T) {
	db := tu.NewDB(t)
	anna := tu.MustCreateUser(t, db, "anna", false)
	ben := tu.MustCreateUser(t, db, "ben", false)

	film := tu.MustCreateFilm(t, db, "Alien", tu.OwnedBy(anna))
	other := tu.MustCreateFilm(t, db, "Heat", tu.OwnedBy(anna))
	tu.MustCreateRequest(t, db, film, ben)
	kept := tu.MustCreateRequest(t, db, other, ben)

	_, err := Delete(db, models.Actor{ID: ben.ID}, film.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	deleted, err := Delete(db, models.Actor{ID: anna.ID}, film.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alien", deleted.Title)

	_, err = Get(db, film.ID)
	assert.ErrorIs(t, err, ErrFilmNotFound)

	var reqs []models.LendingRequest
	require.NoError(t, db.Find(&reqs).Error)
	require.Len(t, reqs, 1)
	assert.Equal(t, kept.ID, reqs[0].ID)

	_, err = Delete(db, models.Actor{ID: anna.ID}, film.ID)
	assert.ErrorIs(t, err, ErrFilmNotFound)

	t.Run("OwnerlessNeedsAdmin", func(t *testing.T) {
		admin := tu.MustCreateUser(t, db, "root", true)
		unclaimed := tu.MustCreateFilm(t, db, "Dune")

		_, err := Delete(db, models.Actor{ID: ben.ID}, unclaimed.ID)
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = Get(db, unclaimed.ID)
		require.NoError(t, err)

		_, err = Delete(db, models.Actor{ID: admin.ID, Admin: true}, unclaimed.ID)
		require.NoError(t, err)
		_, err = Get(db, unclaimed.ID)
		assert.ErrorIs(t, err, ErrFilmNotFound)
	})
}
