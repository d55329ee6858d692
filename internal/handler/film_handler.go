package handler

import (
	"errors"
	"fmt"
	"net/http"

	"filmshelf/backend/internal/auth"
	"filmshelf/backend/internal/catalog"
	"filmshelf/backend/internal/lending"
	"filmshelf/backend/internal/members"
	"filmshelf/backend/internal/models"
	"filmshelf/backend/internal/tmdb"

	"github.com/gin-gonic/gin"
)

const (
	viewList  = "liste"
	viewTiles = "kacheln"

	msgForbidden = "Nur der Besitzer oder ein Admin darf das"
)

// region --- Catalog Pages ---

// Index lists the catalog with the optional filters from the query string.
func (h *Handler) Index(c *gin.Context) {
	var filter catalog.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		filter = catalog.Filter{}
	}
	view := c.DefaultQuery("ansicht", viewList)
	if view != viewTiles {
		view = viewList
	}

	films, err := catalog.List(h.DB, filter)
	if err != nil {
		h.Log.Error("list films", "err", err)
		c.String(http.StatusInternalServerError, msgUnexpected)
		return
	}
	genres, err := catalog.Genres(h.DB)
	if err != nil {
		h.Log.Error("list genres", "err", err)
		c.String(http.StatusInternalServerError, msgUnexpected)
		return
	}
	users, err := members.List(h.DB)
	if err != nil {
		h.Log.Error("list users", "err", err)
		c.String(http.StatusInternalServerError, msgUnexpected)
		return
	}

	h.render(c, http.StatusOK, "index.html", gin.H{
		"Title":   "Filme",
		"Films":   films,
		"Filter":  filter,
		"View":    view,
		"Genres":  genres,
		"Users":   users,
		"NoOwner": catalog.NoOwner,
	})
}

// FilmDetail shows one film with its loan state and pending requests.
func (h *Handler) FilmDetail(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}
	film, err := catalog.Get(h.DB, id)
	if errors.Is(err, catalog.ErrFilmNotFound) {
		h.notFound(c)
		return
	}
	if err != nil {
		h.Log.Error("load film", "id", id, "err", err)
		c.String(http.StatusInternalServerError, msgUnexpected)
		return
	}

	users, err := members.List(h.DB)
	if err != nil {
		h.Log.Error("list users", "err", err)
		c.String(http.StatusInternalServerError, msgUnexpected)
		return
	}
	requests, err := lending.Pending(h.DB, film.ID)
	if err != nil {
		h.Log.Error("list requests", "film", film.ID, "err", err)
		c.String(http.StatusInternalServerError, msgUnexpected)
		return
	}

	me, loggedIn := auth.CurrentUser(c)
	act := actor(c)
	var mine *models.LendingRequest
	for i := range requests {
		if requests[i].BorrowerID == me.ID {
			mine = &requests[i]
		}
	}
	canManage := loggedIn && film.ManageableBy(act)

	h.render(c, http.StatusOK, "detail.html", gin.H{
		"Title":     film.Title,
		"Film":      &film,
		"Users":     users,
		"Requests":  requests,
		"MyRequest": mine,
		"CanManage": canManage,
		"CanDelete": loggedIn && film.DeletableBy(act),
		"CanReturn": loggedIn && film.State() == models.LoanLoaned && (canManage || film.IsBorrowedBy(me.ID)),
		"CanRequest": loggedIn && mine == nil && film.OwnerID != nil && !film.IsOwnedBy(me.ID) &&
			!film.Wishlist && film.State() == models.LoanAvailable,
		"Today": h.Now().Format(lending.DateLayout),
	})
}

// endregion

// region --- Catalog Mutations ---

// AddFilm fetches metadata for a TMDb id or URL and stores it as a film owned
// by the current user, either as a physical copy or as a wishlist entry.
func (h *Handler) AddFilm(c *gin.Context) {
	input := c.PostForm("tmdb_id")
	wishlist := c.PostForm("typ") == "wunschliste"
	if input == "" {
		h.flashRedirect(c, auth.FlashError, "Keine TMDb-ID angegeben", "/")
		return
	}

	movie, err := h.TMDB.Fetch(c.Request.Context(), input)
	switch {
	case err == nil:
	case errors.Is(err, tmdb.ErrMissingAPIKey):
		h.flashRedirect(c, auth.FlashError, "TMDB_API_KEY ist nicht konfiguriert", "/")
		return
	case errors.Is(err, tmdb.ErrInvalidID):
		h.flashRedirect(c, auth.FlashError, fmt.Sprintf("Ungültige TMDb-ID oder URL: %s", input), "/")
		return
	case errors.Is(err, tmdb.ErrNotFound):
		h.flashRedirect(c, auth.FlashError, fmt.Sprintf("Kein Film mit TMDb-ID %s gefunden", input), "/")
		return
	case errors.Is(err, tmdb.ErrNetwork):
		h.Log.Error("TMDb fetch failed", "input", input, "err", err)
		h.flashRedirect(c, auth.FlashError, "Fehler bei der Verbindung zu TMDb. Bitte später versuchen.", "/")
		return
	default:
		h.fail(c, err, "/")
		return
	}

	me, _ := auth.CurrentUser(c)
	film, err := catalog.Add(h.DB, movie, me.ID, wishlist)
	var exists *catalog.ExistsError
	switch {
	case errors.As(err, &exists):
		h.flashRedirect(c, auth.FlashWarning, fmt.Sprintf("Film '%s' ist bereits in der Sammlung", exists.Film.Title), "/")
	case err != nil:
		h.fail(c, err, "/")
	case wishlist:
		h.flashRedirect(c, auth.FlashSuccess, fmt.Sprintf("'%s' auf die Wunschliste gesetzt", film.Title), "/")
	default:
		h.flashRedirect(c, auth.FlashSuccess, fmt.Sprintf("Film '%s' erfolgreich hinzugefügt", film.Title), "/")
	}
}

// SetOwner assigns the film to the user named in the form, or unassigns it.
func (h *Handler) SetOwner(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}
	name := c.PostForm("besitzer")

	film, err := catalog.SetOwner(h.DB, actor(c), id, name)
	switch {
	case errors.Is(err, catalog.ErrFilmNotFound):
		h.notFound(c)
	case errors.Is(err, catalog.ErrForbidden):
		h.flashRedirect(c, auth.FlashWarning, msgForbidden, filmPath(id))
	case errors.Is(err, catalog.ErrUnknownUser):
		h.flashRedirect(c, auth.FlashError, fmt.Sprintf("Benutzer '%s' nicht gefunden", name), filmPath(id))
	case errors.Is(err, catalog.ErrBorrowerOwns):
		h.flashRedirect(c, auth.FlashWarning, fmt.Sprintf("Der Film ist an %s verliehen und muss erst zurückgegeben werden", name), filmPath(id))
	case err != nil:
		h.fail(c, err, filmPath(id))
	case film.Owner == nil:
		h.flashRedirect(c, auth.FlashSuccess, fmt.Sprintf("Besitzer für '%s' entfernt", film.Title), filmPath(id))
	default:
		h.flashRedirect(c, auth.FlashSuccess, fmt.Sprintf("'%s' gehört jetzt %s", film.Title, film.Owner.Name), filmPath(id))
	}
}

// ToggleWishlist moves a film between the wishlist and the owned collection.
func (h *Handler) ToggleWishlist(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}

	film, err := catalog.ToggleWishlist(h.DB, actor(c), id)
	switch {
	case errors.Is(err, catalog.ErrFilmNotFound):
		h.notFound(c)
	case errors.Is(err, catalog.ErrForbidden):
		h.flashRedirect(c, auth.FlashWarning, msgForbidden, filmPath(id))
	case errors.Is(err, catalog.ErrLoaned):
		h.flashRedirect(c, auth.FlashWarning, fmt.Sprintf("'%s' ist verliehen und kann nicht auf die Wunschliste", film.Title), filmPath(id))
	case err != nil:
		h.fail(c, err, filmPath(id))
	case film.Wishlist:
		h.flashRedirect(c, auth.FlashSuccess, fmt.Sprintf("'%s' steht jetzt auf der Wunschliste", film.Title), filmPath(id))
	default:
		h.flashRedirect(c, auth.FlashSuccess, fmt.Sprintf("'%s' von der Wunschliste genommen", film.Title), filmPath(id))
	}
}

// DeleteFilm removes a film and its lending requests.
func (h *Handler) DeleteFilm(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}

	film, err := catalog.Delete(h.DB, actor(c), id)
	switch {
	case errors.Is(err, catalog.ErrFilmNotFound):
		h.notFound(c)
	case errors.Is(err, catalog.ErrForbidden):
		h.flashRedirect(c, auth.FlashWarning, msgForbidden, filmPath(id))
	case err != nil:
		h.fail(c, err, filmPath(id))
	default:
		h.flashRedirect(c, auth.FlashSuccess, fmt.Sprintf("Film '%s' wurde gelöscht", film.Title), "/")
	}
}

// endregion
