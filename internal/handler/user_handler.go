package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"filmshelf/backend/internal/auth"
	"filmshelf/backend/internal/members"

	"github.com/gin-gonic/gin"
)

const usersPath = "/benutzer"

// region --- Session Handlers ---

// LoginForm renders the login page.
func (h *Handler) LoginForm(c *gin.Context) {
	next := safeNext(c.Query("next"), "/")
	if _, ok := auth.CurrentUser(c); ok {
		c.Redirect(http.StatusSeeOther, next)
		return
	}
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Anmelden", "Next": next})
}

// Login checks the credentials and starts a session.
func (h *Handler) Login(c *gin.Context) {
	name := c.PostForm("name")
	next := safeNext(c.PostForm("next"), "/")

	user, ok := h.Auth.Authenticate(name, c.PostForm("passwort"))
	if !ok {
		h.Log.Warn("failed login", "name", name, "ip", c.ClientIP())
		h.flashRedirect(c, auth.FlashError, "Ungültiger Benutzername oder Passwort", "/login?next="+url.QueryEscape(next))
		return
	}
	if err := h.Auth.Login(c, user); err != nil {
		h.fail(c, err, "/login")
		return
	}
	h.flashRedirect(c, auth.FlashSuccess, fmt.Sprintf("Willkommen, %s!", user.Name), next)
}

// Logout ends the session.
func (h *Handler) Logout(c *gin.Context) {
	h.Auth.Logout(c)
	h.flashRedirect(c, auth.FlashInfo, "Du wurdest abgemeldet", "/login")
}

// endregion

// region --- User Handlers ---

// Users lists all users with the number of films they own.
func (h *Handler) Users(c *gin.Context) {
	users, err := members.ListWithCounts(h.DB)
	if err != nil {
		h.Log.Error("list users", "err", err)
		c.String(http.StatusInternalServerError, msgUnexpected)
		return
	}
	h.render(c, http.StatusOK, "users.html", gin.H{
		"Title": "Benutzer",
		"Users": users,
	})
}

// AddUser creates a user. Admin only.
func (h *Handler) AddUser(c *gin.Context) {
	name := c.PostForm("name")
	admin := c.PostForm("admin") != ""

	user, err := members.Create(h.DB, name, c.PostForm("passwort"), admin)
	switch {
	case errors.Is(err, members.ErrEmptyName):
		h.flashRedirect(c, auth.FlashError, "Bitte einen Namen eingeben", usersPath)
	case errors.Is(err, members.ErrEmptyPassword):
		h.flashRedirect(c, auth.FlashError, "Bitte ein Passwort eingeben", usersPath)
	case errors.Is(err, members.ErrUserExists):
		h.flashRedirect(c, auth.FlashWarning, fmt.Sprintf("Benutzer '%s' existiert bereits", name), usersPath)
	case err != nil:
		h.fail(c, err, usersPath)
	default:
		h.Log.Info("user created", "name", user.Name, "admin", user.IsAdmin)
		h.flashRedirect(c, auth.FlashSuccess, fmt.Sprintf("Benutzer '%s' hinzugefügt", user.Name), usersPath)
	}
}

// DeleteUser removes a user who owns no films. Admin only.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.notFound(c)
		return
	}
	if me, _ := auth.CurrentUser(c); me.ID == id {
		h.flashRedirect(c, auth.FlashWarning, "Du kannst dich nicht selbst löschen", usersPath)
		return
	}

	user, owned, err := members.Delete(h.DB, id)
	switch {
	case errors.Is(err, members.ErrUserNotFound):
		h.notFound(c)
	case errors.Is(err, members.ErrOwnsFilms):
		h.flashRedirect(c, auth.FlashError,
			fmt.Sprintf("Benutzer '%s' besitzt noch %d Film(e) und kann nicht gelöscht werden", user.Name, owned), usersPath)
	case err != nil:
		h.fail(c, err, usersPath)
	default:
		h.Log.Info("user deleted", "name", user.Name)
		h.flashRedirect(c, auth.FlashSuccess, fmt.Sprintf("Benutzer '%s' wurde gelöscht", user.Name), usersPath)
	}
}

// PasswordForm renders the change-password page.
func (h *Handler) PasswordForm(c *gin.Context) {
	h.render(c, http.StatusOK, "password.html", gin.H{"Title": "Passwort ändern"})
}

// ChangePassword replaces the current user's password.
func (h *Handler) ChangePassword(c *gin.Context) {
	me, _ := auth.CurrentUser(c)
	err := members.ChangePassword(h.DB, me.ID, c.PostForm("aktuell"), c.PostForm("neu"), c.PostForm("bestaetigen"))
	switch {
	case errors.Is(err, members.ErrWrongPassword):
		h.flashRedirect(c, auth.FlashError, "Das aktuelle Passwort ist falsch", "/passwort")
	case errors.Is(err, members.ErrPasswordsDiffer):
		h.flashRedirect(c, auth.FlashError, "Die Passwörter stimmen nicht überein", "/passwort")
	case errors.Is(err, members.ErrEmptyPassword):
		h.flashRedirect(c, auth.FlashError, "Bitte ein neues Passwort eingeben", "/passwort")
	case err != nil:
		h.fail(c, err, "/passwort")
	default:
		h.flashRedirect(c, auth.FlashSuccess, "Passwort geändert", "/")
	}
}

// endregion
