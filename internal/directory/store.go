package directory

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no resource has the requested id.
var ErrNotFound = errors.New("resource not found")

// ListOptions narrows List.
type ListOptions struct {
	// Status keeps only resources with this status. Empty lists all.
	Status Status
}

// Store is the persistence interface of the resource directory.
type Store interface {
	// Migrate brings the schema up to date.
	Migrate(ctx context.Context) error
	// List returns resources ordered by name.
	List(ctx context.Context, opts ListOptions) ([]*Resource, error)
	// Get returns the resource with id or ErrNotFound.
	Get(ctx context.Context, id string) (*Resource, error)
	// Upsert inserts r or replaces the stored copy. An empty ID is filled in.
	Upsert(ctx context.Context, r *Resource) error
	// ToggleStatus flips a resource between ACTIVE and SUSPENDED and returns
	// the new status.
	ToggleStatus(ctx context.Context, id string) (Status, error)
	// Close releases the connection.
	Close() error
}
