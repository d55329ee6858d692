// Package handler maps HTTP routes onto the catalog, lending and member
// operations. HTML routes answer state changes with a redirect and a flash
// message; the /api/v1 routes speak JSON.
package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"filmshelf/backend/internal/auth"
	"filmshelf/backend/internal/logging"
	"filmshelf/backend/internal/models"
	"filmshelf/backend/internal/tmdb"
	"filmshelf/backend/internal/web"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const msgUnexpected = "Ein unerwarteter Fehler ist aufgetreten"

// Handler carries the dependencies shared by all routes.
type Handler struct {
	DB   *gorm.DB
	Auth *auth.Manager
	TMDB *tmdb.Client
	Log  *log.Logger
	Now  func() time.Time
}

// New creates a Handler.
func New(db *gorm.DB, am *auth.Manager, client *tmdb.Client, l *log.Logger) *Handler {
	return &Handler{DB: db, Auth: am, TMDB: client, Log: l, Now: time.Now}
}

// NewRouter builds the gin engine with every HTML and API route registered.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(logging.GinMiddleware(h.Log), gin.Recovery())
	web.Load(router)
	router.NoRoute(h.Auth.LoadSession(), h.notFound)

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	site := router.Group("/")
	site.Use(h.Auth.LoadSession())
	{
		site.GET("/", h.Index)
		site.GET("/film/:id", h.FilmDetail)
		site.GET("/login", h.LoginForm)
		site.POST("/login", h.Login)
		site.POST("/logout", h.Logout)
	}

	// Logged-in routes
	member := router.Group("/")
	member.Use(h.Auth.LoadSession(), h.Auth.RequireLogin())
	{
		member.POST("/add", h.AddFilm)
		member.POST("/film/:id/besitzer", h.SetOwner)
		member.POST("/film/:id/wunschliste", h.ToggleWishlist)
		member.POST("/film/:id/verleihen", h.Lend)
		member.POST("/film/:id/zurueckgeben", h.Return)
		member.POST("/film/:id/anfragen", h.RequestFilm)
		member.POST("/anfrage/:id/annehmen", h.ApproveRequest)
		member.POST("/anfrage/:id/loeschen", h.CancelRequest)
		member.POST("/delete/:id", h.DeleteFilm)

		member.GET("/verleih", h.Board)
		member.GET("/benutzer", h.Users)
		member.GET("/passwort", h.PasswordForm)
		member.POST("/passwort", h.ChangePassword)
	}

	// Admin routes
	admin := router.Group("/benutzer")
	admin.Use(h.Auth.LoadSession(), h.Auth.RequireAdmin())
	{
		admin.POST("/add", h.AddUser)
		admin.POST("/delete/:id", h.DeleteUser)
	}

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/auth/login", h.APILogin)

		protected := apiV1.Group("")
		protected.Use(h.Auth.BearerAuth())
		{
			protected.GET("/films", h.APIFilms)
			protected.GET("/films/:id", h.APIFilm)
			protected.GET("/genres", h.APIGenres)
			protected.GET("/me/board", h.APIBoard)
		}
	}

	return router
}

// region --- Helpers ---

// render executes a page template with the current user and pending flashes.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	me, loggedIn := auth.CurrentUser(c)
	data["Me"] = me
	data["LoggedIn"] = loggedIn
	data["Flashes"] = h.Auth.Flashes(c)
	c.HTML(status, name, data)
}

func (h *Handler) notFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "404.html", gin.H{"Title": "Nicht gefunden"})
}

// fail logs an unexpected error and sends the user back with a generic message.
func (h *Handler) fail(c *gin.Context, err error, target string) {
	h.Log.Error("request failed", "path", c.Request.URL.Path, "err", err)
	h.flashRedirect(c, auth.FlashError, msgUnexpected, target)
}

func (h *Handler) flashRedirect(c *gin.Context, category auth.FlashCategory, message, target string) {
	h.Auth.Flash(c, category, message)
	c.Redirect(http.StatusSeeOther, target)
}

func actor(c *gin.Context) models.Actor {
	me, _ := auth.CurrentUser(c)
	return models.Actor{ID: me.ID, Admin: me.Admin}
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// safeNext returns target if it is a local path, otherwise fallback.
func safeNext(target, fallback string) string {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.HasPrefix(target, "/\\") {
		return target
	}
	return fallback
}

func filmPath(id uint) string {
	return "/film/" + strconv.FormatUint(uint64(id), 10)
}

func borrowerName(u *models.User) string {
	if u == nil {
		return "?"
	}
	return u.Name
}

// endregion
