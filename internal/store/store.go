// Package store provides profile persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/ashureev/dogtrainer/internal/domain"
)

// Repository defines the interface for persisting dog profiles. The store
// holds one JSON document per user, keyed by the platform's opaque user ID,
// and every mutation rewrites the document whole.
type Repository interface {
	// GetDog retrieves the profile for a user. Absent profiles return (nil, nil).
	GetDog(ctx context.Context, userID string) (*domain.Dog, error)

	// PutDog writes the full profile document for a user, stamping
	// CreatedAt on first persist and UpdatedAt on every persist.
	PutDog(ctx context.Context, userID string, dog *domain.Dog) error

	// Ping verifies connectivity to the backing store.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}
