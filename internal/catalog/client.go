package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Aidos2201/ReelRivals/internal/models"
	"github.com/sirupsen/logrus"
)

// Client is the HTTP client for the movie metadata API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	genres  map[int]string
}

// NewClient creates a new metadata API client.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type movieDetail struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	Popularity  float64 `json:"popularity"`
	Genres      []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

type listedMovie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	Popularity  float64 `json:"popularity"`
	GenreIDs    []int   `json:"genre_ids"`
}

type listResponse struct {
	Results []listedMovie `json:"results"`
}

type genreListResponse struct {
	Genres []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// Movie fetches detailed metadata for one movie.
func (c *Client) Movie(ctx context.Context, id int) (*models.Movie, error) {
	u := fmt.Sprintf("%s/movie/%d?api_key=%s", c.baseURL, id, c.apiKey)

	var detail movieDetail
	if err := c.getJSON(ctx, u, &detail); err != nil {
		return nil, err
	}

	movie := models.Movie{
		ID:          detail.ID,
		Title:       detail.Title,
		Overview:    detail.Overview,
		ReleaseDate: detail.ReleaseDate,
		PosterPath:  detail.PosterPath,
		Popularity:  detail.Popularity,
	}
	for _, g := range detail.Genres {
		movie.Genres = append(movie.Genres, g.Name)
	}
	return &movie, nil
}

// Movies fetches metadata for a set of movies. Failures on individual
// titles are logged and skipped so one missing record does not sink a
// whole refresh.
func (c *Client) Movies(ctx context.Context, ids []int) ([]models.Movie, error) {
	movies := make([]models.Movie, 0, len(ids))
	for _, id := range ids {
		movie, err := c.Movie(ctx, id)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"movie_id": id,
				"error":    err,
			}).Warn("Skipping movie the provider could not resolve")
			continue
		}
		movies = append(movies, *movie)
	}
	return movies, nil
}

// Popular returns the provider's popularity-ranked catalog page(s), used as
// filler when assembling challenge pools.
func (c *Client) Popular(ctx context.Context, limit int) ([]models.Movie, error) {
	genres, err := c.genreNames(ctx)
	if err != nil {
		return nil, err
	}

	var movies []models.Movie
	for page := 1; len(movies) < limit && page <= 5; page++ {
		u := fmt.Sprintf("%s/discover/movie?api_key=%s&sort_by=popularity.desc&page=%d",
			c.baseURL, c.apiKey, page)

		var resp listResponse
		if err := c.getJSON(ctx, u, &resp); err != nil {
			return nil, err
		}
		if len(resp.Results) == 0 {
			break
		}
		for _, m := range resp.Results {
			movies = append(movies, m.toModel(genres))
		}
	}

	if len(movies) > limit {
		movies = movies[:limit]
	}
	return movies, nil
}

// Search queries the provider by title.
func (c *Client) Search(ctx context.Context, query string) ([]models.Movie, error) {
	genres, err := c.genreNames(ctx)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/search/movie?api_key=%s&query=%s",
		c.baseURL, c.apiKey, url.QueryEscape(query))

	var resp listResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	movies := make([]models.Movie, 0, len(resp.Results))
	for _, m := range resp.Results {
		movies = append(movies, m.toModel(genres))
	}
	return movies, nil
}

// genreNames lazily loads and memoizes the provider's genre id table.
func (c *Client) genreNames(ctx context.Context) (map[int]string, error) {
	if c.genres != nil {
		return c.genres, nil
	}

	u := fmt.Sprintf("%s/genre/movie/list?api_key=%s", c.baseURL, c.apiKey)
	var resp genreListResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	genres := make(map[int]string, len(resp.Genres))
	for _, g := range resp.Genres {
		genres[g.ID] = g.Name
	}
	c.genres = genres
	return genres, nil
}

func (m listedMovie) toModel(genres map[int]string) models.Movie {
	movie := models.Movie{
		ID:          m.ID,
		Title:       m.Title,
		Overview:    m.Overview,
		ReleaseDate: m.ReleaseDate,
		PosterPath:  m.PosterPath,
		Popularity:  m.Popularity,
	}
	for _, id := range m.GenreIDs {
		if name, ok := genres[id]; ok {
			movie.Genres = append(movie.Genres, name)
		}
	}
	return movie
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %v", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("metadata provider unavailable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("metadata provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode provider response: %v", err)
	}
	return nil
}
