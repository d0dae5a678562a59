package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aidos2201/ReelRivals/internal/models"
	"github.com/Aidos2201/ReelRivals/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EntryStore is the persistence surface for the watch ledger.
type EntryStore interface {
	Upsert(ctx context.Context, entry *models.MovieEntry) (*models.MovieEntry, error)
	Get(ctx context.Context, userID primitive.ObjectID, movieID int) (*models.MovieEntry, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]models.MovieEntry, error)
	GetByUsers(ctx context.Context, userIDs []primitive.ObjectID) ([]models.MovieEntry, error)
	GetAll(ctx context.Context) ([]models.MovieEntry, error)
	Delete(ctx context.Context, userID primitive.ObjectID, movieID int) error
}

// EntryService handles business logic for the movie watch ledger.
type EntryService struct {
	entries    EntryStore
	activities ActivityStore
}

// NewEntryService creates a new EntryService.
func NewEntryService(entries EntryStore, activities ActivityStore) *EntryService {
	return &EntryService{
		entries:    entries,
		activities: activities,
	}
}

// Upsert inserts or replaces the caller's entry for a movie and appends the
// derived activity event. Repeating the same write leaves exactly one entry
// with the last write's fields.
func (s *EntryService) Upsert(ctx context.Context, entry *models.MovieEntry) (*models.MovieEntry, error) {
	if !models.ValidEntryStatus(entry.Status) {
		return nil, fmt.Errorf("invalid entry status %q", entry.Status)
	}
	if entry.Status != models.EntryStatusWatched {
		entry.Rating = 0
	}
	if entry.Rating < 0 || entry.Rating > 10 {
		return nil, fmt.Errorf("rating must be between 1 and 10")
	}
	if entry.Status != models.EntryStatusDropped {
		entry.DroppedReason = ""
	}

	// The previous entry decides whether this write is a re-rate of an
	// already-watched movie rather than a fresh watch.
	prev, err := s.entries.Get(ctx, entry.UserID, entry.MovieID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	saved, err := s.entries.Upsert(ctx, entry)
	if err != nil {
		return nil, err
	}

	logActivity(ctx, s.activities, &models.Activity{
		UserID:  saved.UserID,
		Kind:    activityKindFor(saved, prev),
		MovieID: saved.MovieID,
		Rating:  saved.Rating,
		Reason:  saved.DroppedReason,
	})

	logrus.WithFields(logrus.Fields{
		"userID":  saved.UserID.Hex(),
		"movieID": saved.MovieID,
		"status":  saved.Status,
	}).Info("Entry upserted")
	return saved, nil
}

// Delete removes the caller's entry for a movie.
func (s *EntryService) Delete(ctx context.Context, userID primitive.ObjectID, movieID int) error {
	return s.entries.Delete(ctx, userID, movieID)
}

// GetByUser returns one user's ledger.
func (s *EntryService) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]models.MovieEntry, error) {
	return s.entries.GetByUser(ctx, userID)
}

// GetAll returns the whole ledger.
func (s *EntryService) GetAll(ctx context.Context) ([]models.MovieEntry, error) {
	return s.entries.GetAll(ctx)
}

// FriendEntries returns everyone's entries except the caller's own.
func (s *EntryService) FriendEntries(ctx context.Context, userID primitive.ObjectID) ([]models.MovieEntry, error) {
	all, err := s.entries.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	others := make([]models.MovieEntry, 0, len(all))
	for _, e := range all {
		if e.UserID != userID {
			others = append(others, e)
		}
	}
	return others, nil
}

// WatchedIDs returns the ids of movies either user has marked watched,
// deduplicated, for challenge pool assembly.
func (s *EntryService) WatchedIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]int, error) {
	entries, err := s.entries.GetByUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var ids []int
	for _, e := range entries {
		if e.Status != models.EntryStatusWatched || seen[e.MovieID] {
			continue
		}
		seen[e.MovieID] = true
		ids = append(ids, e.MovieID)
	}
	return ids, nil
}

// activityKindFor derives the feed event kind from the written entry. A
// write that only re-rates an already-watched movie reads as "rated".
func activityKindFor(entry, prev *models.MovieEntry) string {
	if entry.Status == models.EntryStatusWatched &&
		prev != nil && prev.Status == models.EntryStatusWatched &&
		entry.Rating > 0 && entry.Rating != prev.Rating {
		return models.ActivityRated
	}

	switch entry.Status {
	case models.EntryStatusWatched:
		return models.ActivityWatched
	case models.EntryStatusDropped:
		return models.ActivityDropped
	default:
		return models.ActivityWatchLater
	}
}
