// Package syncclient keeps a process-local cached view of one user's
// entries, friends, challenges and activity approximately fresh against the
// shared store. Delivery is polling with bounded staleness: there is no
// push channel and no server-side transaction boundary, so the client
// writes optimistically and reconciles on the next poll.
package syncclient

import (
	"context"
	"sync"
	"time"

	"github.com/Aidos2201/ReelRivals/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Backend is the remote surface the client synchronizes against. In
// production it is backed by the HTTP API; tests use an in-memory fake.
type Backend interface {
	Entries(ctx context.Context, userID primitive.ObjectID) ([]models.MovieEntry, error)
	FriendEntries(ctx context.Context, userID primitive.ObjectID) ([]models.MovieEntry, error)
	Movies(ctx context.Context, ids []int) ([]models.Movie, error)
	Friends(ctx context.Context, userID primitive.ObjectID) ([]models.PublicUser, error)
	Incoming(ctx context.Context, userID primitive.ObjectID) ([]models.FriendshipWithUser, error)
	Outgoing(ctx context.Context, userID primitive.ObjectID) ([]models.FriendshipWithUser, error)
	Challenges(ctx context.Context, userID primitive.ObjectID) ([]models.Challenge, error)
	Activity(ctx context.Context, limit int) ([]models.Activity, error)
	UpsertEntry(ctx context.Context, entry *models.MovieEntry) error
	DeleteEntry(ctx context.Context, userID primitive.ObjectID, movieID int) error
}

// Client maintains the cached snapshot for one signed-in user.
type Client struct {
	backend Backend
	userID  primitive.ObjectID
	feedCap int

	// OnLoading fires with true/false around a non-silent refresh that has
	// no prior data to show. Silent refreshes never fire it.
	OnLoading func(bool)
	// OnWriteError surfaces a failed durable write after the optimistic
	// local apply. The local state is not rolled back; the next successful
	// poll reconciles it.
	OnWriteError func(error)

	mu     sync.Mutex
	snap   *Snapshot
	lastFP Fingerprint
	hasFP  bool
}

// New creates a synchronization client for one user.
func New(backend Backend, userID primitive.ObjectID, feedCap int) *Client {
	return &Client{
		backend: backend,
		userID:  userID,
		feedCap: feedCap,
	}
}

// Snapshot returns the current cached view, or nil before the first
// successful refresh.
func (c *Client) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Refresh fetches remote state and swaps in a fresh snapshot. A silent
// refresh whose fingerprint matches the previous successful one returns
// without touching any visible state. On any fetch failure the old
// snapshot stays as-is: partial merges are disallowed.
func (c *Client) Refresh(ctx context.Context, silent bool) error {
	if !silent && c.Snapshot() == nil && c.OnLoading != nil {
		c.OnLoading(true)
		defer c.OnLoading(false)
	}

	// Own entries, friend entries and the movie pool known so far are
	// independent; fetch them concurrently and join.
	var (
		wg            sync.WaitGroup
		entries       []models.MovieEntry
		friendEntries []models.MovieEntry
		knownMovies   []models.Movie
		errEntries    error
		errFriends    error
		errMovies     error
	)

	knownIDs := c.knownMovieIDs()

	wg.Add(3)
	go func() {
		defer wg.Done()
		entries, errEntries = c.backend.Entries(ctx, c.userID)
	}()
	go func() {
		defer wg.Done()
		friendEntries, errFriends = c.backend.FriendEntries(ctx, c.userID)
	}()
	go func() {
		defer wg.Done()
		knownMovies, errMovies = c.backend.Movies(ctx, knownIDs)
	}()
	wg.Wait()

	if errEntries != nil {
		return errEntries
	}
	if errFriends != nil {
		return errFriends
	}
	if errMovies != nil {
		return errMovies
	}

	fp := fingerprintOf(entries)

	c.mu.Lock()
	unchanged := c.hasFP && fp == c.lastFP
	c.mu.Unlock()

	if silent && unchanged {
		// Nothing material changed; skip the derived recomputation and
		// leave the snapshot (and its version) untouched.
		return nil
	}

	movies := make(map[int]models.Movie, len(knownMovies))
	for i := range knownMovies {
		movies[knownMovies[i].ID] = knownMovies[i]
	}
	if err := c.fillMissingMovies(ctx, entries, friendEntries, movies); err != nil {
		return err
	}

	var (
		friends    []models.PublicUser
		incoming   []models.FriendshipWithUser
		outgoing   []models.FriendshipWithUser
		challenges []models.Challenge
		feed       []models.Activity
	)
	errs := make([]error, 5)

	wg.Add(5)
	go func() { defer wg.Done(); friends, errs[0] = c.backend.Friends(ctx, c.userID) }()
	go func() { defer wg.Done(); incoming, errs[1] = c.backend.Incoming(ctx, c.userID) }()
	go func() { defer wg.Done(); outgoing, errs[2] = c.backend.Outgoing(ctx, c.userID) }()
	go func() { defer wg.Done(); challenges, errs[3] = c.backend.Challenges(ctx, c.userID) }()
	go func() { defer wg.Done(); feed, errs[4] = c.backend.Activity(ctx, c.feedCap) }()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var version uint64 = 1
	if c.snap != nil {
		version = c.snap.Version + 1
	}

	c.snap = &Snapshot{
		Entries:       entries,
		FriendEntries: friendEntries,
		Movies:        movies,
		ByGenre:       deriveGenres(entries, movies),
		Friends:       friends,
		Incoming:      incoming,
		Outgoing:      outgoing,
		Challenges:    challenges,
		Feed:          feed,
		Version:       version,
		RefreshedAt:   time.Now(),
	}
	c.lastFP = fp
	c.hasFP = true
	return nil
}

// UpsertEntry applies the write to the cached snapshot synchronously, then
// fires the durable write in the background. A failed durable write is
// surfaced through OnWriteError but never rolled back locally; the
// inconsistency window is bounded by the next successful poll.
func (c *Client) UpsertEntry(ctx context.Context, entry *models.MovieEntry) {
	entry.UserID = c.userID
	entry.UpdatedAt = time.Now()

	c.mu.Lock()
	if c.snap != nil {
		next := *c.snap
		next.Entries = upsertLocal(next.Entries, *entry)
		next.ByGenre = deriveGenres(next.Entries, next.Movies)
		next.Version++
		c.snap = &next
	}
	c.mu.Unlock()

	go c.writeThrough(func(ctx context.Context) error {
		return c.backend.UpsertEntry(ctx, entry)
	})
}

// DeleteEntry removes the entry locally and in the background remotely.
func (c *Client) DeleteEntry(ctx context.Context, movieID int) {
	c.mu.Lock()
	if c.snap != nil {
		next := *c.snap
		next.Entries = deleteLocal(next.Entries, movieID)
		next.ByGenre = deriveGenres(next.Entries, next.Movies)
		next.Version++
		c.snap = &next
	}
	c.mu.Unlock()

	go c.writeThrough(func(ctx context.Context) error {
		return c.backend.DeleteEntry(ctx, c.userID, movieID)
	})
}

// writeThrough performs the durable write and then reconciles with a silent
// refresh, so this client observes its own write's server-side effects
// (activity synthesis, logical clock) promptly.
func (c *Client) writeThrough(write func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := write(ctx); err != nil {
		logrus.WithError(err).Warn("Durable write failed; keeping optimistic local state")
		if c.OnWriteError != nil {
			c.OnWriteError(err)
		}
		return
	}

	if err := c.Refresh(ctx, true); err != nil {
		logrus.WithError(err).Warn("Post-write refresh failed")
	}
}

// knownMovieIDs lists every movie id referenced by the cached snapshot.
func (c *Client) knownMovieIDs() []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap == nil {
		return nil
	}

	seen := make(map[int]bool)
	var ids []int
	for i := range c.snap.Entries {
		if !seen[c.snap.Entries[i].MovieID] {
			seen[c.snap.Entries[i].MovieID] = true
			ids = append(ids, c.snap.Entries[i].MovieID)
		}
	}
	for i := range c.snap.FriendEntries {
		if !seen[c.snap.FriendEntries[i].MovieID] {
			seen[c.snap.FriendEntries[i].MovieID] = true
			ids = append(ids, c.snap.FriendEntries[i].MovieID)
		}
	}
	return ids
}

// fillMissingMovies fetches metadata for entry movies the cache has not
// resolved yet.
func (c *Client) fillMissingMovies(ctx context.Context, entries, friendEntries []models.MovieEntry, movies map[int]models.Movie) error {
	var missing []int
	for _, list := range [][]models.MovieEntry{entries, friendEntries} {
		for i := range list {
			if _, ok := movies[list[i].MovieID]; !ok {
				movies[list[i].MovieID] = models.Movie{}
				missing = append(missing, list[i].MovieID)
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}

	fetched, err := c.backend.Movies(ctx, missing)
	if err != nil {
		return err
	}
	for i := range fetched {
		movies[fetched[i].ID] = fetched[i]
	}
	return nil
}

func upsertLocal(entries []models.MovieEntry, entry models.MovieEntry) []models.MovieEntry {
	next := make([]models.MovieEntry, 0, len(entries)+1)
	replaced := false
	for i := range entries {
		if entries[i].MovieID == entry.MovieID {
			next = append(next, entry)
			replaced = true
			continue
		}
		next = append(next, entries[i])
	}
	if !replaced {
		next = append(next, entry)
	}
	return next
}

func deleteLocal(entries []models.MovieEntry, movieID int) []models.MovieEntry {
	next := make([]models.MovieEntry, 0, len(entries))
	for i := range entries {
		if entries[i].MovieID != movieID {
			next = append(next, entries[i])
		}
	}
	return next
}
