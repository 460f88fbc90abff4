// Package repository defines the item store interface and its MongoDB and
// in-memory implementations.
package repository

import (
	"context"

	"github.com/okian/items/internal/domain/model"
)

// Store provides read/write access to the items collection.
//
// Errors returned by a Store carry a fault kind: malformed ids are
// validation faults, unknown ids are not-found faults and transport
// failures are connection faults.
type Store interface {
	// List returns every item ordered by createdAt desc, then id desc.
	List(ctx context.Context) ([]model.Item, error)

	// Insert assigns an id and a creation time to in and persists it.
	Insert(ctx context.Context, in model.NewItem) (model.Item, error)

	// Delete removes the item with the given id.
	// Returns a not-found fault if no such item exists.
	Delete(ctx context.Context, id string) error

	// Ping checks that the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
