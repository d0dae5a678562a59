package syncclient

import (
	"time"

	"github.com/Aidos2201/ReelRivals/internal/models"
)

// Snapshot is one immutable, internally consistent view of the user's
// synchronized state. Refreshes build a new snapshot and swap it in whole;
// derived fields are never updated piecemeal.
type Snapshot struct {
	Entries       []models.MovieEntry
	FriendEntries []models.MovieEntry
	Movies        map[int]models.Movie
	ByGenre       map[string][]int
	Friends       []models.PublicUser
	Incoming      []models.FriendshipWithUser
	Outgoing      []models.FriendshipWithUser
	Challenges    []models.Challenge
	Feed          []models.Activity

	// Version increments only when visible state actually changed; a
	// short-circuited silent refresh leaves it untouched.
	Version     uint64
	RefreshedAt time.Time
}

// Fingerprint is a cheap change summary over the user's own entries: the
// entry count and the newest logical write timestamp. Matching fingerprints
// mean a refetch changed nothing material.
type Fingerprint struct {
	Count  int
	Latest time.Time
}

func fingerprintOf(entries []models.MovieEntry) Fingerprint {
	fp := Fingerprint{Count: len(entries)}
	for i := range entries {
		if entries[i].UpdatedAt.After(fp.Latest) {
			fp.Latest = entries[i].UpdatedAt
		}
	}
	return fp
}

// deriveGenres groups the user's entry movie ids by the genres known from
// catalog metadata.
func deriveGenres(entries []models.MovieEntry, movies map[int]models.Movie) map[string][]int {
	byGenre := make(map[string][]int)
	for i := range entries {
		movie, ok := movies[entries[i].MovieID]
		if !ok {
			continue
		}
		for _, genre := range movie.Genres {
			byGenre[genre] = append(byGenre[genre], movie.ID)
		}
	}
	return byGenre
}
