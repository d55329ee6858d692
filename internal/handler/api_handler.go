package handler

import (
	"errors"
	"net/http"
	"time"

	"filmshelf/backend/internal/auth"
	"filmshelf/backend/internal/catalog"
	"filmshelf/backend/internal/lending"
	"filmshelf/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// LoginInput defines the structure for an API login.
type LoginInput struct {
	Name     string `json:"name" binding:"required" example:"anna"`
	Password string `json:"password" binding:"required" example:"geheim"`
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// FilmResponse is the API view of a film.
type FilmResponse struct {
	ID          uint             `json:"id" example:"1"`
	Title       string           `json:"title" example:"Alien"`
	Year        *int             `json:"year" example:"1979"`
	Description string           `json:"description"`
	TMDBID      string           `json:"tmdb_id" example:"348"`
	PosterURL   string           `json:"poster_url"`
	Genres      []string         `json:"genres"`
	Wishlist    bool             `json:"wishlist"`
	Owner       *string          `json:"owner"`
	State       models.LoanState `json:"state" example:"available"`
	Borrower    *string          `json:"borrower,omitempty"`
	LoanedAt    *time.Time       `json:"loaned_at,omitempty"`
}

func newFilmResponse(f *models.Film) FilmResponse {
	genres := f.GenreList()
	if genres == nil {
		genres = []string{}
	}
	resp := FilmResponse{
		ID:          f.ID,
		Title:       f.Title,
		Year:        f.Year,
		Description: f.Description,
		TMDBID:      f.TMDBID,
		PosterURL:   f.PosterURL,
		Genres:      genres,
		Wishlist:    f.Wishlist,
		State:       f.State(),
		LoanedAt:    f.LoanedAt,
	}
	if f.Owner != nil {
		resp.Owner = &f.Owner.Name
	}
	if f.Borrower != nil {
		resp.Borrower = &f.Borrower.Name
	}
	return resp
}

func newFilmResponses(films []models.Film) []FilmResponse {
	out := make([]FilmResponse, 0, len(films))
	for i := range films {
		out = append(out, newFilmResponse(&films[i]))
	}
	return out
}

// RequestResponse is the API view of a lending request.
type RequestResponse struct {
	ID        uint      `json:"id"`
	FilmID    uint      `json:"film_id"`
	FilmTitle string    `json:"film_title"`
	Borrower  string    `json:"borrower"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

func newRequestResponses(reqs []models.LendingRequest) []RequestResponse {
	out := make([]RequestResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, RequestResponse{
			ID:        r.ID,
			FilmID:    r.FilmID,
			FilmTitle: r.Film.Title,
			Borrower:  r.Borrower.Name,
			Owner:     r.Owner.Name,
			CreatedAt: r.CreatedAt,
		})
	}
	return out
}

// BoardResponse is the API view of the lending board.
type BoardResponse struct {
	RequestsReceived []RequestResponse `json:"requests_received"`
	RequestsMade     []RequestResponse `json:"requests_made"`
	Lent             []FilmResponse    `json:"lent"`
	Borrowed         []FilmResponse    `json:"borrowed"`
}

// PaginatedFilmResponse defines the structure for a paginated list of films.
type PaginatedFilmResponse struct {
	Data []FilmResponse `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// endregion

// region --- API Handlers ---

// APILogin godoc
// @Summary      Log in
// @Description  Authenticates with name and password and returns a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  TokenResponse
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) APILogin(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := h.Auth.Authenticate(input.Name, input.Password)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.Auth.IssueToken(auth.Identity{ID: user.ID, Name: user.Name, Admin: user.IsAdmin})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// APIFilms godoc
// @Summary      List films
// @Description  Retrieves a paginated list of films with the same filters as the catalog page.
// @Tags         films
// @Produce      json
// @Security     BearerAuth
// @Param        besitzer     query  string  false  "Owner name, or 'ohne' for films without owner"
// @Param        jahr_von     query  int     false  "Earliest year"
// @Param        jahr_bis     query  int     false  "Latest year"
// @Param        wunschliste  query  bool    false  "Wishlist flag"
// @Param        genre        query  string  false  "Genre substring"
// @Param        page         query  int     false  "Page number" default(1)
// @Param        limit        query  int     false  "Items per page" default(20)
// @Success      200 {object} PaginatedFilmResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /films [get]
func (h *Handler) APIFilms(c *gin.Context) {
	var filter catalog.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, limit := pageParams(c)

	result, err := Paginate[models.Film](filter.Apply(h.DB.Model(&models.Film{})), page, limit, catalog.Listing)
	if err != nil {
		h.Log.Error("paginate films", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve films"})
		return
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(newFilmResponses(result.Data), result.Meta.TotalItems, page, limit))
}

// APIFilm godoc
// @Summary      Get a single film by ID
// @Tags         films
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Film ID"
// @Success      200 {object} FilmResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Film not found"
// @Router       /films/{id} [get]
func (h *Handler) APIFilm(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Film not found"})
		return
	}
	film, err := catalog.Get(h.DB, id)
	if errors.Is(err, catalog.ErrFilmNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Film not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve film"})
		return
	}
	c.JSON(http.StatusOK, newFilmResponse(&film))
}

// APIGenres godoc
// @Summary      List genres
// @Description  Returns the sorted distinct genre names across all films.
// @Tags         films
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array}  string
// @Failure      401 {object} ErrorResponse
// @Router       /genres [get]
func (h *Handler) APIGenres(c *gin.Context) {
	genres, err := catalog.Genres(h.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve genres"})
		return
	}
	if genres == nil {
		genres = []string{}
	}
	c.JSON(http.StatusOK, genres)
}

// APIBoard godoc
// @Summary      Get my lending board
// @Description  Requests received and made, films lent out and borrowed by the authenticated user.
// @Tags         lending
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} BoardResponse
// @Failure      401 {object} ErrorResponse
// @Router       /me/board [get]
func (h *Handler) APIBoard(c *gin.Context) {
	me, _ := auth.CurrentUser(c)
	board, err := lending.LoadBoard(h.DB, me.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load board"})
		return
	}
	c.JSON(http.StatusOK, BoardResponse{
		RequestsReceived: newRequestResponses(board.RequestsReceived),
		RequestsMade:     newRequestResponses(board.RequestsMade),
		Lent:             newFilmResponses(board.Lent),
		Borrowed:         newFilmResponses(board.Borrowed),
	})
}

// endregion
