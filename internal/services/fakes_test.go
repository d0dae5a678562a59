package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Aidos2201/ReelRivals/internal/models"
	"github.com/Aidos2201/ReelRivals/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes for the store interfaces. They mirror the Mongo
// repositories' observable behavior, including ErrNotFound mapping.

type entryKey struct {
	userID  primitive.ObjectID
	movieID int
}

type fakeEntryStore struct {
	mu      sync.Mutex
	entries map[entryKey]models.MovieEntry
	clock   int64
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{entries: make(map[entryKey]models.MovieEntry)}
}

func (f *fakeEntryStore) Upsert(_ context.Context, entry *models.MovieEntry) (*models.MovieEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clock++
	entry.UpdatedAt = time.Unix(f.clock, 0)
	f.entries[entryKey{entry.UserID, entry.MovieID}] = *entry
	return entry, nil
}

func (f *fakeEntryStore) Get(_ context.Context, userID primitive.ObjectID, movieID int) (*models.MovieEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[entryKey{userID, movieID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &entry, nil
}

func (f *fakeEntryStore) GetByUser(_ context.Context, userID primitive.ObjectID) ([]models.MovieEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.MovieEntry
	for k, e := range f.entries {
		if k.userID == userID {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

func (f *fakeEntryStore) GetByUsers(_ context.Context, userIDs []primitive.ObjectID) ([]models.MovieEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	want := make(map[primitive.ObjectID]bool, len(userIDs))
	for _, id := range userIDs {
		want[id] = true
	}

	var out []models.MovieEntry
	for k, e := range f.entries {
		if want[k.userID] {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

func (f *fakeEntryStore) GetAll(_ context.Context) ([]models.MovieEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.MovieEntry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	sortEntries(out)
	return out, nil
}

func (f *fakeEntryStore) Delete(_ context.Context, userID primitive.ObjectID, movieID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, entryKey{userID, movieID})
	return nil
}

func sortEntries(entries []models.MovieEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].MovieID < entries[j].MovieID })
}

type fakeActivityStore struct {
	mu     sync.Mutex
	events []models.Activity
}

func (f *fakeActivityStore) Insert(_ context.Context, activity *models.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *activity)
	return nil
}

func (f *fakeActivityStore) Recent(_ context.Context, limit int) ([]models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Activity, len(f.events))
	copy(out, f.events)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeActivityStore) RecentByUser(_ context.Context, userID primitive.ObjectID, limit int) ([]models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Activity
	for _, e := range f.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeActivityStore) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Kind)
	}
	return out
}

type fakeFriendStore struct {
	mu          sync.Mutex
	friendships []models.Friendship
}

func (f *fakeFriendStore) Create(_ context.Context, fr *models.Friendship) (*models.Friendship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fr.ID = primitive.NewObjectID()
	fr.Status = models.FriendshipStatusPending
	fr.CreatedAt = time.Now()
	f.friendships = append(f.friendships, *fr)
	return fr, nil
}

func (f *fakeFriendStore) GetByPair(_ context.Context, a, b primitive.ObjectID) (*models.Friendship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.friendships {
		fr := f.friendships[i]
		if (fr.RequesterID == a && fr.RecipientID == b) || (fr.RequesterID == b && fr.RecipientID == a) {
			return &fr, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeFriendStore) AcceptPending(_ context.Context, requesterID, recipientID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.friendships {
		fr := &f.friendships[i]
		if fr.RequesterID == requesterID && fr.RecipientID == recipientID && fr.Status == models.FriendshipStatusPending {
			fr.Status = models.FriendshipStatusAccepted
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeFriendStore) DeletePending(_ context.Context, requesterID, recipientID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.friendships {
		fr := f.friendships[i]
		if fr.RequesterID == requesterID && fr.RecipientID == recipientID && fr.Status == models.FriendshipStatusPending {
			f.friendships = append(f.friendships[:i], f.friendships[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeFriendStore) ListAccepted(_ context.Context, userID primitive.ObjectID) ([]models.Friendship, error) {
	return f.list(func(fr models.Friendship) bool {
		return fr.Status == models.FriendshipStatusAccepted && (fr.RequesterID == userID || fr.RecipientID == userID)
	})
}

func (f *fakeFriendStore) ListIncoming(_ context.Context, userID primitive.ObjectID) ([]models.Friendship, error) {
	return f.list(func(fr models.Friendship) bool {
		return fr.Status == models.FriendshipStatusPending && fr.RecipientID == userID
	})
}

func (f *fakeFriendStore) ListOutgoing(_ context.Context, userID primitive.ObjectID) ([]models.Friendship, error) {
	return f.list(func(fr models.Friendship) bool {
		return fr.Status == models.FriendshipStatusPending && fr.RequesterID == userID
	})
}

func (f *fakeFriendStore) list(match func(models.Friendship) bool) ([]models.Friendship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Friendship
	for _, fr := range f.friendships {
		if match(fr) {
			out = append(out, fr)
		}
	}
	return out, nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	f.users[user.ID] = *user
	return user, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) UpdateUser(_ context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if v, ok := fields["display_name"].(string); ok {
		user.DisplayName = v
	}
	if v, ok := fields["avatar_url"].(string); ok {
		user.AvatarURL = v
	}
	f.users[id] = user
	return &user, nil
}

func (f *fakeUserStore) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.User
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (f *fakeUserStore) SearchUsers(_ context.Context, query string, limit int) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.User
	for _, user := range f.users {
		if len(user.Username) >= len(query) && user.Username[:len(query)] == query {
			out = append(out, user)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakeChallengeStore struct {
	mu         sync.Mutex
	challenges map[primitive.ObjectID]models.Challenge
}

func newFakeChallengeStore() *fakeChallengeStore {
	return &fakeChallengeStore{challenges: make(map[primitive.ObjectID]models.Challenge)}
}

func (f *fakeChallengeStore) Create(_ context.Context, c *models.Challenge) (*models.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	f.challenges[c.ID] = *c
	return c, nil
}

func (f *fakeChallengeStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.challenges[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (f *fakeChallengeStore) GetByUser(_ context.Context, userID primitive.ObjectID) ([]models.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Challenge
	for _, c := range f.challenges {
		if c.CreatorID == userID || c.RecipientID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChallengeStore) GetActiveByType(_ context.Context, challengeType string) ([]models.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Challenge
	for _, c := range f.challenges {
		if c.Type == challengeType && c.Status == models.ChallengeStatusActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChallengeStore) Replace(_ context.Context, c *models.Challenge) (*models.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c.UpdatedAt = time.Now()
	f.challenges[c.ID] = *c
	return c, nil
}

func (f *fakeChallengeStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.challenges, id)
	return nil
}

type fakeCodeStore struct {
	mu    sync.Mutex
	codes map[string]models.LoginCode
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{codes: make(map[string]models.LoginCode)}
}

func (f *fakeCodeStore) Put(_ context.Context, code *models.LoginCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[code.Email] = *code
	return nil
}

func (f *fakeCodeStore) Get(_ context.Context, email string) (*models.LoginCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	code, ok := f.codes[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &code, nil
}

func (f *fakeCodeStore) Delete(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.codes, email)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeMailer) Send(_, _, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, body)
	return nil
}

// fakeProvider serves a fixed catalog. Movies with ids in animated are
// Animation-led.
type fakeProvider struct {
	popular  []models.Movie
	animated map[int]bool
}

func newFakeProvider(popularIDs []int, animated map[int]bool) *fakeProvider {
	p := &fakeProvider{animated: animated}
	for _, id := range popularIDs {
		p.popular = append(p.popular, p.movie(id))
	}
	return p
}

func (p *fakeProvider) movie(id int) models.Movie {
	genres := []string{"Drama"}
	if p.animated[id] {
		genres = []string{"Animation"}
	}
	return models.Movie{ID: id, Title: "movie", Genres: genres}
}

func (p *fakeProvider) Movie(_ context.Context, id int) (*models.Movie, error) {
	m := p.movie(id)
	return &m, nil
}

func (p *fakeProvider) Movies(_ context.Context, ids []int) ([]models.Movie, error) {
	out := make([]models.Movie, 0, len(ids))
	for _, id := range ids {
		out = append(out, p.movie(id))
	}
	return out, nil
}

func (p *fakeProvider) Popular(_ context.Context, limit int) ([]models.Movie, error) {
	if len(p.popular) > limit {
		return p.popular[:limit], nil
	}
	return p.popular, nil
}

func (p *fakeProvider) Search(_ context.Context, _ string) ([]models.Movie, error) {
	return p.popular, nil
}
