// Package tmdb fetches film metadata from The Movie Database.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	DefaultLanguage     = "de-DE"

	requestTimeout = 10 * time.Second

	// TMDb historically allowed 40 requests per 10 seconds.
	rateLimit = 4
	rateBurst = 40
)

var (
	ErrInvalidID     = errors.New("invalid TMDb id")
	ErrNotFound      = errors.New("film not found")
	ErrNetwork       = errors.New("TMDb request failed")
	ErrMissingAPIKey = errors.New("TMDB_API_KEY is not set")
)

var movieURLPattern = regexp.MustCompile(`/movie/(\d+)`)

// Movie is the metadata mapped onto a local film.
type Movie struct {
	TMDBID      string
	Title       string
	Year        *int
	Description string
	PosterURL   string
	Genres      string
}

type movieResponse struct {
	Title       *string `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	Genres      []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Language     string
	HTTPClient   *http.Client
	Logger       *log.Logger
}

// Client talks to the TMDb movie endpoint.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	httpClient   *http.Client
	rateLimiter  *rate.Limiter
	logger       *log.Logger
}

// NewClient creates a new TMDb API client.
func NewClient(opts Options) *Client {
	c := &Client{
		apiKey:       opts.APIKey,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		imageBaseURL: opts.ImageBaseURL,
		language:     opts.Language,
		httpClient:   opts.HTTPClient,
		rateLimiter:  rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		logger:       opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.imageBaseURL == "" {
		c.imageBaseURL = DefaultImageBaseURL
	}
	if c.language == "" {
		c.language = DefaultLanguage
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: requestTimeout}
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c
}

// ExtractID accepts a bare numeric id or a TMDb movie URL and returns the id.
func ExtractID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if m := movieURLPattern.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}
	if input != "" {
		if _, err := strconv.ParseUint(input, 10, 64); err == nil {
			return input, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidID, input)
}

// Fetch resolves input to a TMDb id and loads the movie's metadata.
func (c *Client) Fetch(ctx context.Context, input string) (*Movie, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	id, err := ExtractID(input)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Fetching film", "tmdb_id", id)

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrNetwork, err)
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)
	endpoint := fmt.Sprintf("%s/movie/%s?%s", c.baseURL, id, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: TMDb id %s", ErrNotFound, id)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: HTTP %d", ErrNetwork, resp.StatusCode)
	}

	var data movieResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
	}
	if data.Title == nil {
		return nil, fmt.Errorf("%w: TMDb id %s", ErrNotFound, id)
	}

	movie := c.toMovie(id, data)
	c.logger.Info("Fetched film", "tmdb_id", id, "title", movie.Title, "year", movie.Year)
	return movie, nil
}

func (c *Client) toMovie(id string, data movieResponse) *Movie {
	movie := &Movie{
		TMDBID:      id,
		Title:       *data.Title,
		Description: data.Overview,
	}
	if len(data.ReleaseDate) >= 4 {
		if year, err := strconv.Atoi(data.ReleaseDate[:4]); err == nil {
			movie.Year = &year
		}
	}
	if data.PosterPath != "" {
		movie.PosterURL = c.imageBaseURL + data.PosterPath
	}
	names := make([]string, 0, len(data.Genres))
	for _, g := range data.Genres {
		names = append(names, g.Name)
	}
	movie.Genres = strings.Join(names, ", ")
	return movie
}
