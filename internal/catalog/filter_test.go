package catalog

import (
	"testing"

	"filmshelf/backend/internal/models"
	tu "filmshelf/backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func titles(films []models.Film) []string {
	out := make([]string, 0, len(films))
	for _, f := range films {
		out = append(out, f.Title)
	}
	return out
}

func seed(t *testing.T) *gorm.DB {
	t.Helper()
	db := tu.NewDB(t)
	anna := tu.MustCreateUser(t, db, "anna", false)
	ben := tu.MustCreateUser(t, db, "ben", false)

	tu.MustCreateFilm(t, db, "Alien", tu.OwnedBy(anna), tu.Year(1979), tu.Genres("Horror, Science Fiction"))
	tu.MustCreateFilm(t, db, "Heat", tu.OwnedBy(ben), tu.Year(1995), tu.Genres("Action, Crime, Drama"))
	tu.MustCreateFilm(t, db, "Gladiator", tu.OwnedBy(anna), tu.Year(2000), tu.Genres("Action, Drama"))
	tu.MustCreateFilm(t, db, "Memento", tu.OwnedBy(ben), tu.Year(2000), tu.Genres("Mystery, Thriller"))
	tu.MustCreateFilm(t, db, "Inception", tu.OwnedBy(anna), tu.Year(2010), tu.Genres("Action/Adventure"), tu.OnWishlist())
	tu.MustCreateFilm(t, db, "Dune", tu.Year(2021), tu.Genres("Science Fiction"))
	tu.MustCreateFilm(t, db, "Unknown")
	return db
}

func TestListOrdersByYearDescending(t *testing.T) {
	db := seed(t)

	films, err := List(db, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune", "Inception", "Gladiator", "Memento", "Heat", "Alien", "Unknown"}, titles(films))
}

func TestListFilters(t *testing.T) {
	db := seed(t)

	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"Owner", Filter{Owner: "ben"}, []string{"Memento", "Heat"}},
		{"Ownerless", Filter{Owner: NoOwner}, []string{"Dune", "Unknown"}},
		{"UnknownOwner", Filter{Owner: "carl"}, []string{}},
		{"YearRange", Filter{YearFrom: "2000", YearTo: "2010"}, []string{"Inception", "Gladiator", "Memento"}},
		{"YearFromOnly", Filter{YearFrom: "2010"}, []string{"Dune", "Inception"}},
		{"NonNumericYearIgnored", Filter{YearFrom: "abc", YearTo: "2000"}, []string{"Gladiator", "Memento", "Heat", "Alien"}},
		{"Wishlist", Filter{Wishlist: "1"}, []string{"Inception"}},
		{"NotWishlist", Filter{Wishlist: "nein", Owner: "anna"}, []string{"Gladiator", "Alien"}},
		{"InvalidWishlistIgnored", Filter{Wishlist: "maybe", Owner: "anna"}, []string{"Inception", "Gladiator", "Alien"}},
		{"GenreCaseInsensitive", Filter{Genre: "action"}, []string{"Inception", "Gladiator", "Heat"}},
		{"GenreExact", Filter{Genre: "Action"}, []string{"Inception", "Gladiator", "Heat"}},
		{"GenreSubstring", Filter{Genre: "fiction"}, []string{"Dune", "Alien"}},
		{"GenreWildcardIsLiteral", Filter{Genre: "%"}, []string{}},
		{"Combined", Filter{Owner: "anna", Genre: "Drama", YearFrom: "1990"}, []string{"Gladiator"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			films, err := List(db, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, titles(films))
		})
	}
}

func TestListPreloadsOwner(t *testing.T) {
	db := seed(t)

	films, err := List(db, Filter{Owner: "anna", YearTo: "1980"})
	require.NoError(t, err)
	require.Len(t, films, 1)
	require.NotNil(t, films[0].Owner)
	assert.Equal(t, "anna", films[0].Owner.Name)
}

func TestFilterActive(t *testing.T) {
	assert.False(t, Filter{}.Active())
	assert.False(t, Filter{Genre: "  "}.Active())
	assert.True(t, Filter{YearFrom: "2000"}.Active())
}

func TestGenres(t *testing.T) {
	db := seed(t)

	genres, err := Genres(db)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Action", "Action/Adventure", "Crime", "Drama", "Horror", "Mystery", "Science Fiction", "Thriller",
	}, genres)
}
