package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Aidos2201/ReelRivals/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HTTPBackend adapts the server's REST API to the Backend interface. Every
// request carries the signed-in user's bearer token.
type HTTPBackend struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPBackend creates a backend bound to one server and bearer token.
func NewHTTPBackend(baseURL, token string) *HTTPBackend {
	return &HTTPBackend{
		baseURL: baseURL,
		token:   token,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (b *HTTPBackend) Entries(ctx context.Context, userID primitive.ObjectID) ([]models.MovieEntry, error) {
	var entries []models.MovieEntry
	err := b.getJSON(ctx, "/entries?userId="+userID.Hex(), &entries)
	return entries, err
}

// FriendEntries fetches the whole ledger and drops the caller's own rows;
// the server exposes one entries collection and leaves scoping to clients.
func (b *HTTPBackend) FriendEntries(ctx context.Context, userID primitive.ObjectID) ([]models.MovieEntry, error) {
	var all []models.MovieEntry
	if err := b.getJSON(ctx, "/entries", &all); err != nil {
		return nil, err
	}

	others := make([]models.MovieEntry, 0, len(all))
	for i := range all {
		if all[i].UserID != userID {
			others = append(others, all[i])
		}
	}
	return others, nil
}

// Movies resolves metadata one title at a time through the catalog proxy.
// Unresolvable titles are skipped, matching the provider's own behavior.
func (b *HTTPBackend) Movies(ctx context.Context, ids []int) ([]models.Movie, error) {
	movies := make([]models.Movie, 0, len(ids))
	for _, id := range ids {
		var movie models.Movie
		if err := b.getJSON(ctx, fmt.Sprintf("/catalog/movies/%d", id), &movie); err != nil {
			logrus.WithFields(logrus.Fields{
				"movie_id": id,
				"error":    err,
			}).Warn("Skipping unresolvable movie")
			continue
		}
		movies = append(movies, movie)
	}
	return movies, nil
}

func (b *HTTPBackend) Friends(ctx context.Context, _ primitive.ObjectID) ([]models.PublicUser, error) {
	var friends []models.PublicUser
	err := b.getJSON(ctx, "/social/friends", &friends)
	return friends, err
}

func (b *HTTPBackend) Incoming(ctx context.Context, _ primitive.ObjectID) ([]models.FriendshipWithUser, error) {
	var requests []models.FriendshipWithUser
	err := b.getJSON(ctx, "/social/requests/pending", &requests)
	return requests, err
}

func (b *HTTPBackend) Outgoing(ctx context.Context, _ primitive.ObjectID) ([]models.FriendshipWithUser, error) {
	var requests []models.FriendshipWithUser
	err := b.getJSON(ctx, "/social/requests/outgoing", &requests)
	return requests, err
}

func (b *HTTPBackend) Challenges(ctx context.Context, _ primitive.ObjectID) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := b.getJSON(ctx, "/challenges", &challenges)
	return challenges, err
}

func (b *HTTPBackend) Activity(ctx context.Context, limit int) ([]models.Activity, error) {
	var feed []models.Activity
	err := b.getJSON(ctx, "/activity?limit="+strconv.Itoa(limit), &feed)
	return feed, err
}

func (b *HTTPBackend) UpsertEntry(ctx context.Context, entry *models.MovieEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %v", err)
	}
	return b.do(ctx, http.MethodPost, "/entries", body)
}

func (b *HTTPBackend) DeleteEntry(ctx context.Context, _ primitive.ObjectID, movieID int) error {
	return b.do(ctx, http.MethodDelete, "/entries?movieId="+strconv.Itoa(movieID), nil)
}

func (b *HTTPBackend) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.token)

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("server unavailable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode server response: %v", err)
	}
	return nil
}

func (b *HTTPBackend) do(ctx context.Context, method, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("server unavailable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return nil
}
