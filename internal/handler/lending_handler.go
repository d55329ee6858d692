package handler

import (
	"errors"
	"fmt"
	"net/http"

	"filmshelf/backend/internal/auth"
	"filmshelf/backend/internal/catalog"
	"filmshelf/backend/internal/lending"

	"github.com/gin-gonic/gin"
)

const boardPath = "/verleih"

// region --- Loans ---

// Lend puts a film on loan to the user named in verliehen_an, starting at
// verliehen_datum or now.
func (h *Handler) Lend(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}
	borrower := c.PostForm("verliehen_an")
	back := filmPath(id)

	film, err := lending.Lend(h.DB, actor(c), id, borrower, c.PostForm("verliehen_datum"), h.Now())
	switch {
	case errors.Is(err, lending.ErrFilmNotFound):
		h.notFound(c)
	case errors.Is(err, lending.ErrForbidden):
		h.flashRedirect(c, auth.FlashWarning, msgForbidden, back)
	case errors.Is(err, lending.ErrMissingBorrower):
		h.flashRedirect(c, auth.FlashError, "Bitte einen Benutzer auswählen", back)
	case errors.Is(err, lending.ErrUnknownUser):
		h.flashRedirect(c, auth.FlashError, fmt.Sprintf("Benutzer '%s' nicht gefunden", borrower), back)
	case errors.Is(err, lending.ErrAlreadyLoaned):
		h.flashRedirect(c, auth.FlashWarning, fmt.Sprintf("Film ist bereits an %s verliehen", borrowerName(film.Borrower)), back)
	case errors.Is(err, lending.ErrWishlistFilm):
		h.flashRedirect(c, auth.FlashWarning, "Filme auf der Wunschliste können nicht verliehen werden", back)
	case errors.Is(err, lending.ErrBorrowerIsOwner):
		h.flashRedirect(c, auth.FlashWarning, "Ein Film kann nicht an seinen Besitzer verliehen werden", back)
	case errors.Is(err, lending.ErrInvalidDate):
		h.flashRedirect(c, auth.FlashError, "Ungültiges Datum", back)
	case err != nil:
		h.fail(c, err, back)
	default:
		h.flashRedirect(c, auth.FlashSuccess, fmt.Sprintf("'%s' an %s verliehen", film.Title, film.Borrower.Name), back)
	}
}

// Return ends the current loan of a film.
func (h *Handler) Return(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}
	back := safeNext(c.PostForm("next"), filmPath(id))

	film, borrower, err := lending.Return(h.DB, actor(c), id)
	switch {
	case errors.Is(err, lending.ErrFilmNotFound):
		h.notFound(c)
	case errors.Is(err, lending.ErrForbidden):
		h.flashRedirect(c, auth.FlashWarning, "Nur Besitzer, Ausleiher oder ein Admin dürfen das", back)
	case errors.Is(err, lending.ErrNotLoaned):
		h.flashRedirect(c, auth.FlashWarning, "Film ist nicht verliehen", back)
	case err != nil:
		h.fail(c, err, back)
	default:
		h.flashRedirect(c, auth.FlashSuccess, fmt.Sprintf("'%s' von %s zurückgegeben", film.Title, borrower), back)
	}
}

// endregion

// region --- Requests ---

// RequestFilm files a lending request by the current user. A failed
// precondition leaves everything unchanged and is reported as a warning.
func (h *Handler) RequestFilm(c *gin.Context) {
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
		h.fail(c, err, "/")
		return
	}
	back := filmPath(id)

	me, _ := auth.CurrentUser(c)
	req, err := lending.Request(h.DB, film.ID, me.ID)
	switch {
	case errors.Is(err, lending.ErrFilmNotFound):
		h.notFound(c)
	case errors.Is(err, lending.ErrNoOwner):
		h.flashRedirect(c, auth.FlashWarning, fmt.Sprintf("'%s' hat keinen Besitzer", film.Title), back)
	case errors.Is(err, lending.ErrOwnFilm):
		h.flashRedirect(c, auth.FlashWarning, fmt.Sprintf("'%s' gehört dir bereits", film.Title), back)
	case errors.Is(err, lending.ErrWishlistFilm):
		h.flashRedirect(c, auth.FlashWarning, fmt.Sprintf("'%s' steht nur auf der Wunschliste", film.Title), back)
	case errors.Is(err, lending.ErrFilmUnavailable):
		h.flashRedirect(c, auth.FlashWarning, fmt.Sprintf("'%s' ist gerade verliehen", film.Title), back)
	case errors.Is(err, lending.ErrAlreadyRequested):
		h.flashRedirect(c, auth.FlashInfo, fmt.Sprintf("Du hast '%s' bereits angefragt", film.Title), back)
	case err != nil:
		h.fail(c, err, back)
	default:
		h.flashRedirect(c, auth.FlashSuccess, fmt.Sprintf("Anfrage für '%s' an %s gesendet", req.Film.Title, req.Owner.Name), back)
	}
}

// ApproveRequest lends the film to the requesting user.
func (h *Handler) ApproveRequest(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}
	back := safeNext(c.PostForm("next"), boardPath)

	film, err := lending.Approve(h.DB, actor(c), id, h.Now())
	switch {
	case errors.Is(err, lending.ErrRequestNotFound), errors.Is(err, lending.ErrFilmNotFound):
		h.notFound(c)
	case errors.Is(err, lending.ErrForbidden):
		h.flashRedirect(c, auth.FlashWarning, msgForbidden, back)
	case errors.Is(err, lending.ErrAlreadyLoaned):
		h.flashRedirect(c, auth.FlashWarning, fmt.Sprintf("Film ist bereits an %s verliehen", borrowerName(film.Borrower)), back)
	case errors.Is(err, lending.ErrWishlistFilm):
		h.flashRedirect(c, auth.FlashWarning, "Filme auf der Wunschliste können nicht verliehen werden", back)
	case errors.Is(err, lending.ErrBorrowerIsOwner):
		h.flashRedirect(c, auth.FlashWarning, "Ein Film kann nicht an seinen Besitzer verliehen werden", back)
	case err != nil:
		h.fail(c, err, back)
	default:
		h.flashRedirect(c, auth.FlashSuccess, fmt.Sprintf("'%s' an %s verliehen", film.Title, film.Borrower.Name), back)
	}
}

// CancelRequest withdraws (borrower) or declines (owner, admin) a request.
func (h *Handler) CancelRequest(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}
	back := safeNext(c.PostForm("next"), boardPath)

	req, err := lending.Cancel(h.DB, actor(c), id)
	me, _ := auth.CurrentUser(c)
	switch {
	case errors.Is(err, lending.ErrRequestNotFound):
		h.notFound(c)
	case errors.Is(err, lending.ErrForbidden):
		h.flashRedirect(c, auth.FlashWarning, "Diese Anfrage gehört nicht dir", back)
	case err != nil:
		h.fail(c, err, back)
	case req.BorrowerID == me.ID:
		h.flashRedirect(c, auth.FlashInfo, fmt.Sprintf("Anfrage für '%s' zurückgezogen", req.Film.Title), back)
	default:
		h.flashRedirect(c, auth.FlashInfo, fmt.Sprintf("Anfrage von %s für '%s' abgelehnt", req.Borrower.Name, req.Film.Title), back)
	}
}

// endregion

// region --- Board ---

// Board renders the current user's lending board.
func (h *Handler) Board(c *gin.Context) {
	me, _ := auth.CurrentUser(c)
	board, err := lending.LoadBoard(h.DB, me.ID)
	if err != nil {
		h.Log.Error("load board", "user", me.ID, "err", err)
		c.String(http.StatusInternalServerError, msgUnexpected)
		return
	}
	h.render(c, http.StatusOK, "board.html", gin.H{
		"Title": "Verleih",
		"Board": board,
	})
}

// endregion
