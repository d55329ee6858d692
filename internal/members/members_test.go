package members

import (
	"testing"
	"time"

	"filmshelf/backend/internal/auth"
	"filmshelf/backend/internal/models"
	tu "filmshelf/backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	db := tu.NewDB(t)

	user, err := Create(db, "  anna ", "secret", true)
	require.NoError(t, err)
	assert.Equal(t, "anna", user.Name)
	assert.True(t, user.IsAdmin)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "secret"))

	_, err = Create(db, "anna", "other", false)
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = Create(db, " ", "pw", false)
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = Create(db, "ben", "", false)
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestListWithCounts(t *testing.T) {
	db := tu.NewDB(t)
	ben := tu.MustCreateUser(t, db, "ben", false)
	anna := tu.MustCreateUser(t, db, "anna", true)
	tu.MustCreateFilm(t, db, "Alien", tu.OwnedBy(ben))
	tu.MustCreateFilm(t, db, "Heat", tu.OwnedBy(ben))
	tu.MustCreateFilm(t, db, "Dune")

	summaries, err := ListWithCounts(db)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, anna.ID, summaries[0].ID)
	assert.Equal(t, "anna", summaries[0].Name)
	assert.True(t, summaries[0].IsAdmin)
	assert.Equal(t, int64(0), summaries[0].FilmCount)

	assert.Equal(t, "ben", summaries[1].Name)
	assert.Equal(t, int64(2), summaries[1].FilmCount)
}

func TestDelete(t *testing.T) {
	t.Run("RejectsOwner", func(t *testing.T) {
		db := tu.NewDB(t)
		anna := tu.MustCreateUser(t, db, "anna", false)
		tu.MustCreateFilm(t, db, "Alien", tu.OwnedBy(anna))
		tu.MustCreateFilm(t, db, "Heat", tu.OwnedBy(anna))

		_, owned, err := Delete(db, anna.ID)
		assert.ErrorIs(t, err, ErrOwnsFilms)
		assert.Equal(t, int64(2), owned)

		_, err = FindByName(db, "anna")
		assert.NoError(t, err)
	})

	t.Run("CascadesRequestsAndLoans", func(t *testing.T) {
		db := tu.NewDB(t)
		anna := tu.MustCreateUser(t, db, "anna", false)
		ben := tu.MustCreateUser(t, db, "ben", false)
		carl := tu.MustCreateUser(t, db, "carl", false)

		alien := tu.MustCreateFilm(t, db, "Alien", tu.OwnedBy(anna))
		heat := tu.MustCreateFilm(t, db, "Heat", tu.OwnedBy(anna), tu.LentTo(ben, time.Now()))
		tu.MustCreateRequest(t, db, alien, ben)
		kept := tu.MustCreateRequest(t, db, alien, carl)

		deleted, _, err := Delete(db, ben.ID)
		require.NoError(t, err)
		assert.Equal(t, "ben", deleted.Name)

		var reqs []models.LendingRequest
		require.NoError(t, db.Find(&reqs).Error)
		require.Len(t, reqs, 1)
		assert.Equal(t, kept.ID, reqs[0].ID)

		var got models.Film
		require.NoError(t, db.First(&got, heat.ID).Error)
		assert.Nil(t, got.BorrowerID)
		assert.Nil(t, got.LoanedAt)
	})

	t.Run("Missing", func(t *testing.T) {
		db := tu.NewDB(t)
		_, _, err := Delete(db, 42)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestChangePassword(t *testing.T) {
	db := tu.NewDB(t)
	anna := tu.MustCreateUser(t, db, "anna", false)

	assert.ErrorIs(t, ChangePassword(db, anna.ID, "wrong", "new", "new"), ErrWrongPassword)
	assert.ErrorIs(t, ChangePassword(db, anna.ID, "anna", "new", "neu"), ErrPasswordsDiffer)
	assert.ErrorIs(t, ChangePassword(db, anna.ID, "anna", "", ""), ErrEmptyPassword)
	require.NoError(t, ChangePassword(db, anna.ID, "anna", "new", "new"))

	got, err := FindByName(db, "anna")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(got.PasswordHash, "new"))
}

func TestSetPasswordUnknownUser(t *testing.T) {
	db := tu.NewDB(t)
	assert.ErrorIs(t, SetPassword(db, 99, "pw"), ErrUserNotFound)
}
