package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Aidos2201/ReelRivals/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const cacheTTL = 6 * time.Hour

// CachedProvider is a read-through Redis cache in front of a Provider.
// Cache failures degrade to direct provider calls, never to errors.
type CachedProvider struct {
	inner Provider
	redis *redis.Client
}

// NewCachedProvider wraps a provider with Redis caching.
func NewCachedProvider(inner Provider, client *redis.Client) *CachedProvider {
	return &CachedProvider{inner: inner, redis: client}
}

func (p *CachedProvider) Movie(ctx context.Context, id int) (*models.Movie, error) {
	key := fmt.Sprintf("catalog:movie:%d", id)

	if data, err := p.redis.Get(ctx, key).Bytes(); err == nil {
		var movie models.Movie
		if err := json.Unmarshal(data, &movie); err == nil {
			return &movie, nil
		}
	}

	movie, err := p.inner.Movie(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(movie); err == nil {
		if err := p.redis.Set(ctx, key, data, cacheTTL).Err(); err != nil {
			logrus.WithError(err).Warn("Failed to cache movie metadata")
		}
	}
	return movie, nil
}

func (p *CachedProvider) Movies(ctx context.Context, ids []int) ([]models.Movie, error) {
	movies := make([]models.Movie, 0, len(ids))
	var misses []int

	for _, id := range ids {
		key := fmt.Sprintf("catalog:movie:%d", id)
		data, err := p.redis.Get(ctx, key).Bytes()
		if err != nil {
			misses = append(misses, id)
			continue
		}
		var movie models.Movie
		if err := json.Unmarshal(data, &movie); err != nil {
			misses = append(misses, id)
			continue
		}
		movies = append(movies, movie)
	}

	if len(misses) > 0 {
		fetched, err := p.inner.Movies(ctx, misses)
		if err != nil {
			return nil, err
		}
		for i := range fetched {
			key := fmt.Sprintf("catalog:movie:%d", fetched[i].ID)
			if data, err := json.Marshal(fetched[i]); err == nil {
				_ = p.redis.Set(ctx, key, data, cacheTTL).Err()
			}
		}
		movies = append(movies, fetched...)
	}
	return movies, nil
}

func (p *CachedProvider) Popular(ctx context.Context, limit int) ([]models.Movie, error) {
	key := fmt.Sprintf("catalog:popular:%d", limit)

	if data, err := p.redis.Get(ctx, key).Bytes(); err == nil {
		var movies []models.Movie
		if err := json.Unmarshal(data, &movies); err == nil {
			return movies, nil
		}
	}

	movies, err := p.inner.Popular(ctx, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(movies); err == nil {
		_ = p.redis.Set(ctx, key, data, cacheTTL).Err()
	}
	return movies, nil
}

// Search is not cached: queries are long-tail and the provider is fast.
func (p *CachedProvider) Search(ctx context.Context, query string) ([]models.Movie, error) {
	return p.inner.Search(ctx, query)
}
