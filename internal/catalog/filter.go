package catalog

import (
	"sort"
	"strconv"
	"strings"

	"filmshelf/backend/internal/models"

	"gorm.io/gorm"
)

// NoOwner is the owner filter value selecting films without an owner.
const NoOwner = "ohne"

// Filter holds the optional listing predicates. Every field is raw user input;
// empty or unparsable values disable their predicate.
type Filter struct {
	Owner    string `form:"besitzer"`
	YearFrom string `form:"jahr_von"`
	YearTo   string `form:"jahr_bis"`
	Wishlist string `form:"wunschliste"`
	Genre    string `form:"genre"`
}

// Apply adds the filter's predicates to query.
func (f Filter) Apply(query *gorm.DB) *gorm.DB {
	switch owner := strings.TrimSpace(f.Owner); owner {
	case "":
	case NoOwner:
		query = query.Where("films.owner_id IS NULL")
	default:
		owners := query.Session(&gorm.Session{NewDB: true}).
			Model(&models.User{}).Select("id").Where("name = ?", owner)
		query = query.Where("films.owner_id IN (?)", owners)
	}

	if year, err := strconv.Atoi(strings.TrimSpace(f.YearFrom)); err == nil {
		query = query.Where("films.year >= ?", year)
	}
	if year, err := strconv.Atoi(strings.TrimSpace(f.YearTo)); err == nil {
		query = query.Where("films.year <= ?", year)
	}

	if wishlist, ok := parseBool(f.Wishlist); ok {
		query = query.Where("films.wishlist = ?", wishlist)
	}

	if genre := strings.TrimSpace(f.Genre); genre != "" {
		query = query.Where(`LOWER(films.genres) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(genre))+"%")
	}
	return query
}

// Active reports whether any predicate is in effect.
func (f Filter) Active() bool {
	return strings.TrimSpace(f.Owner+f.YearFrom+f.YearTo+f.Wishlist+f.Genre) != ""
}

// Query returns the filtered film query, newest first.
func Query(db *gorm.DB, f Filter) *gorm.DB {
	return f.Apply(db.Model(&models.Film{})).Scopes(Listing)
}

// Listing loads owner and borrower and sorts by year descending with unknown
// years last, then by title.
func Listing(db *gorm.DB) *gorm.DB {
	return db.Preload("Owner").
		Preload("Borrower").
		Order("films.year IS NULL").
		Order("films.year DESC").
		Order("films.title")
}

// List returns every film matching f, newest first.
func List(db *gorm.DB, f Filter) ([]models.Film, error) {
	var films []models.Film
	if err := Query(db, f).Find(&films).Error; err != nil {
		return nil, err
	}
	return films, nil
}

// Genres returns the sorted distinct genre names across all films.
func Genres(db *gorm.DB) ([]string, error) {
	var rows []string
	if err := db.Model(&models.Film{}).Where("genres <> ''").Distinct().Pluck("genres", &rows).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var genres []string
	for _, row := range rows {
		for _, g := range (&models.Film{Genres: row}).GenreList() {
			if !seen[g] {
				seen[g] = true
				genres = append(genres, g)
			}
		}
	}
	sort.Strings(genres)
	return genres, nil
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "ja", "yes", "on":
		return true, true
	case "0", "false", "nein", "no", "off":
		return false, true
	}
	return false, false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
