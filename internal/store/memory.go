// ABOUTME: In-memory ConfigStore used by package tests across the module
// ABOUTME: Holds private copies of every board behind a single mutex

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/2389/homarr-board/internal/board"
)

type memoryRecord struct {
	cfg       *board.Config
	updatedAt time.Time
}

// MemoryStore is an in-memory ConfigStore. Documents are copied on the way in
// and out so callers never share state with the store.
type MemoryStore struct {
	mu     sync.Mutex
	boards map[string]*memoryRecord
	now    func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		boards: make(map[string]*memoryRecord),
		now:    time.Now,
	}
}

// Create stores a copy of cfg.
func (m *MemoryStore) Create(ctx context.Context, cfg *board.Config) error {
	next, err := prepareCreate(cfg)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.boards[next.Name]; ok {
		return ErrBoardExists
	}
	m.boards[next.Name] = &memoryRecord{cfg: next, updatedAt: m.now().UTC()}
	cfg.Version = next.Version
	return nil
}

// Get returns a copy of the board.
func (m *MemoryStore) Get(ctx context.Context, name string) (*board.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.boards[name]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.cfg.Clone(), nil
}

// List returns all boards ordered by name.
func (m *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Summary, 0, len(m.boards))
	for _, rec := range m.boards {
		out = append(out, Summary{
			Name:      rec.cfg.Name,
			Version:   rec.cfg.Version,
			Apps:      len(rec.cfg.Apps),
			Widgets:   len(rec.cfg.Widgets),
			UpdatedAt: rec.updatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Update applies mutate while holding the store lock.
func (m *MemoryStore) Update(ctx context.Context, name string, mutate Mutator, guard Guard) (*board.Config, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.boards[name]
	if !ok {
		return nil, false, ErrNotFound
	}

	next, err := applyUpdate(rec.cfg, mutate, guard)
	if err != nil {
		return nil, false, err
	}
	if next == nil {
		return rec.cfg.Clone(), false, nil
	}

	rec.cfg = next
	rec.updatedAt = m.now().UTC()
	return next.Clone(), true, nil
}

// Delete removes the board.
func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.boards[name]; !ok {
		return ErrNotFound
	}
	delete(m.boards, name)
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

// prepareCreate validates cfg and returns the copy to persist, starting at version 1.
func prepareCreate(cfg *board.Config) (*board.Config, error) {
	next := cfg.Clone()
	if next.Version == 0 {
		next.Version = 1
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}
