package repository

import (
	"context"
	"sync"

	"github.com/tidwall/btree"

	"github.com/okian/items/internal/domain/fault"
	"github.com/okian/items/internal/domain/model"
)

// MemoryStore keeps items in process memory.
//
// Items are held in a B-tree ordered newest first so List is a plain scan.
// An index by id serves Delete. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	opts   options
	tree   *btree.BTreeG[model.Item]
	byID   map[string]model.Item
	closed bool
}

var _ Store = (*MemoryStore)(nil)

// newestFirst orders by createdAt desc, then id desc.
func newestFirst(a, b model.Item) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		opts: newOptions(opts),
		tree: btree.NewBTreeGOptions(newestFirst, btree.Options{NoLocks: true}),
		byID: make(map[string]model.Item),
	}
}

// List returns a copy of every item, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]model.Item, error) {
	const op = "repository.memory.list"
	if err := ctx.Err(); err != nil {
		return nil, fault.New(op, fault.KindConnection, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fault.New(op, fault.KindConnection, ErrClosed)
	}

	items := make([]model.Item, 0, s.tree.Len())
	s.tree.Scan(func(it model.Item) bool {
		items = append(items, it.Clone())
		return true
	})
	return items, nil
}

// Insert stores a new item stamped with the store clock.
func (s *MemoryStore) Insert(ctx context.Context, in model.NewItem) (model.Item, error) {
	const op = "repository.memory.insert"
	if err := ctx.Err(); err != nil {
		return model.Item{}, fault.New(op, fault.KindConnection, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Item{}, fault.New(op, fault.KindConnection, ErrClosed)
	}

	now := model.Timestamp(s.opts.clock())
	item := in.Build(newID(now).Hex(), now)
	s.tree.Set(item)
	s.byID[item.ID] = item
	return item.Clone(), nil
}

// Delete removes the item with the given id.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	const op = "repository.memory.delete"
	if _, err := parseID(op, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fault.New(op, fault.KindConnection, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fault.New(op, fault.KindConnection, ErrClosed)
	}

	item, ok := s.byID[id]
	if !ok {
		return fault.Newf(op, fault.KindNotFound, "%w: %s", ErrNotFound, id)
	}
	s.tree.Delete(item)
	delete(s.byID, id)
	return nil
}

// Ping reports whether the store is still open.
func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fault.New("repository.memory.ping", fault.KindConnection, ErrClosed)
	}
	return nil
}

// Close marks the store closed; later calls fail with a connection fault.
func (s *MemoryStore) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Len returns the number of stored items.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Len()
}
