package lending

import (
	"testing"

	"filmshelf/backend/internal/models"
	tu "filmshelf/backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBoard(t *testing.T) {
	db := tu.NewDB(t)
	anna := tu.MustCreateUser(t, db, "anna", false)
	ben := tu.MustCreateUser(t, db, "Ben", false)
	carl := tu.MustCreateUser(t, db, "carl", false)
	dora := tu.MustCreateUser(t, db, "dora", false)

	alien := tu.MustCreateFilm(t, db, "Alien", tu.OwnedBy(anna))
	heat := tu.MustCreateFilm(t, db, "Heat", tu.OwnedBy(anna), tu.LentTo(dora, now))
	dune := tu.MustCreateFilm(t, db, "Dune", tu.OwnedBy(anna), tu.LentTo(ben, now))
	memento := tu.MustCreateFilm(t, db, "Memento", tu.OwnedBy(dora), tu.LentTo(anna, now))
	gladiator := tu.MustCreateFilm(t, db, "Gladiator", tu.OwnedBy(carl), tu.LentTo(anna, now))
	tenet := tu.MustCreateFilm(t, db, "Tenet", tu.OwnedBy(dora))
	up := tu.MustCreateFilm(t, db, "Up", tu.OwnedBy(ben))

	tu.MustCreateRequest(t, db, alien, carl)
	tu.MustCreateRequest(t, db, alien, ben)
	tu.MustCreateRequest(t, db, tenet, anna)
	tu.MustCreateRequest(t, db, up, anna)

	board, err := LoadBoard(db, anna.ID)
	require.NoError(t, err)
	assert.False(t, board.Empty())

	require.Len(t, board.RequestsReceived, 2)
	assert.Equal(t, "Ben", board.RequestsReceived[0].Borrower.Name)
	assert.Equal(t, "carl", board.RequestsReceived[1].Borrower.Name)
	assert.Equal(t, "Alien", board.RequestsReceived[0].Film.Title)

	require.Len(t, board.RequestsMade, 2)
	assert.Equal(t, "Ben", board.RequestsMade[0].Owner.Name)
	assert.Equal(t, "dora", board.RequestsMade[1].Owner.Name)

	require.Len(t, board.Lent, 2)
	assert.Equal(t, dune.ID, board.Lent[0].ID)
	assert.Equal(t, heat.ID, board.Lent[1].ID)

	require.Len(t, board.Borrowed, 2)
	assert.Equal(t, gladiator.ID, board.Borrowed[0].ID)
	assert.Equal(t, memento.ID, board.Borrowed[1].ID)

	empty, err := LoadBoard(db, carl.ID+100)
	require.NoError(t, err)
	assert.True(t, empty.Empty())
}

func TestEndToEndRequestApproveFlow(t *testing.T) {
	db := tu.NewDB(t)
	a := tu.MustCreateUser(t, db, "a", false)
	b := tu.MustCreateUser(t, db, "b", false)
	film := tu.MustCreateFilm(t, db, "Alien", tu.OwnedBy(a))

	_, err := Request(db, film.ID, b.ID)
	require.NoError(t, err)

	boardA, err := LoadBoard(db, a.ID)
	require.NoError(t, err)
	require.Len(t, boardA.RequestsReceived, 1)
	assert.Equal(t, "b", boardA.RequestsReceived[0].Borrower.Name)

	_, err = Lend(db, models.Actor{ID: a.ID}, film.ID, "b", "", now)
	require.NoError(t, err)

	boardA, err = LoadBoard(db, a.ID)
	require.NoError(t, err)
	assert.Empty(t, boardA.RequestsReceived)
	require.Len(t, boardA.Lent, 1)
	assert.Equal(t, "b", boardA.Lent[0].Borrower.Name)

	boardB, err := LoadBoard(db, b.ID)
	require.NoError(t, err)
	assert.Empty(t, boardB.RequestsMade)
	require.Len(t, boardB.Borrowed, 1)
	assert.Equal(t, film.ID, boardB.Borrowed[0].ID)
}
