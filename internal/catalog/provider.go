// Package catalog talks to the external movie metadata provider. The rest
// of the system treats it as an opaque collaborator behind the Provider
// interface.
package catalog

import (
	"context"

	"github.com/Aidos2201/ReelRivals/internal/models"
)

// Provider serves read-only movie metadata.
type Provider interface {
	Movie(ctx context.Context, id int) (*models.Movie, error)
	Movies(ctx context.Context, ids []int) ([]models.Movie, error)
	Popular(ctx context.Context, limit int) ([]models.Movie, error)
	Search(ctx context.Context, query string) ([]models.Movie, error)
}
