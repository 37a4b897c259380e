// ABOUTME: ConfigStore interface and shared update semantics for board documents
// ABOUTME: Atomic read-modify-write with optional guard, version bumps on accepted writes

package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/2389/homarr-board/internal/board"
)

// ErrNotFound is returned when a requested board does not exist
var ErrNotFound = errors.New("not found")

// ErrBoardExists is returned when creating a board whose name is taken
var ErrBoardExists = errors.New("board already exists")

// ErrVersionConflict is returned when a stored document changed underneath an update
var ErrVersionConflict = errors.New("board version conflict")

// Mutator derives the next document from the previous one. It receives a
// private copy and may modify it in place. Returning a document equal to the
// previous one means "no change".
type Mutator func(prev *board.Config) *board.Config

// Guard decides whether an update is accepted. It observes the pre-update
// document and the mutator's result from the same atomic update.
type Guard func(prev, next *board.Config) bool

// Summary describes a stored board without its items
type Summary struct {
	Name      string    `json:"name"`
	Version   uint64    `json:"version"`
	Apps      int       `json:"apps"`
	Widgets   int       `json:"widgets"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConfigStore persists board documents
type ConfigStore interface {
	// Create stores a new board. Returns ErrBoardExists if the name is taken.
	Create(ctx context.Context, cfg *board.Config) error

	// Get returns a copy of the current document. Returns ErrNotFound if missing.
	Get(ctx context.Context, name string) (*board.Config, error)

	// List returns summaries of all boards ordered by name.
	List(ctx context.Context) ([]Summary, error)

	// Update applies mutate atomically. When guard is non-nil and returns false,
	// or the mutator changed nothing, the document and its version stay as they
	// were and applied is false. The returned document is the current one.
	Update(ctx context.Context, name string, mutate Mutator, guard Guard) (cfg *board.Config, applied bool, err error)

	// Delete removes a board. Returns ErrNotFound if missing.
	Delete(ctx context.Context, name string) error

	// Close releases any resources held by the store
	Close() error
}

// applyUpdate runs the shared update pipeline on a document read by a store
// implementation: mutate a private copy, detect no-ops, consult the guard,
// bump the version and validate. The caller holds whatever lock makes the
// read-modify-write atomic. A nil result means the update was not applied.
func applyUpdate(prev *board.Config, mutate Mutator, guard Guard) (*board.Config, error) {
	if mutate == nil {
		return nil, fmt.Errorf("mutator is required")
	}
	base := prev.Clone()
	next := mutate(prev.Clone())
	if next == nil || reflect.DeepEqual(base, next) {
		return nil, nil
	}
	if guard != nil && !guard(base, next) {
		return nil, nil
	}

	next.Name = prev.Name
	next.Version = prev.Version + 1
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}

// Notifier is told about every accepted update
type Notifier interface {
	BoardUpdated(name string, version uint64)
}

// notifyingStore decorates a ConfigStore and reports accepted writes
type notifyingStore struct {
	ConfigStore
	notifier Notifier
}

// WithNotifier wraps s so that n observes every accepted create, update and delete.
func WithNotifier(s ConfigStore, n Notifier) ConfigStore {
	if n == nil {
		return s
	}
	return &notifyingStore{ConfigStore: s, notifier: n}
}

func (s *notifyingStore) Create(ctx context.Context, cfg *board.Config) error {
	if err := s.ConfigStore.Create(ctx, cfg); err != nil {
		return err
	}
	s.notifier.BoardUpdated(cfg.Name, cfg.Version)
	return nil
}

func (s *notifyingStore) Update(ctx context.Context, name string, mutate Mutator, guard Guard) (*board.Config, bool, error) {
	cfg, applied, err := s.ConfigStore.Update(ctx, name, mutate, guard)
	if err == nil && applied {
		s.notifier.BoardUpdated(cfg.Name, cfg.Version)
	}
	return cfg, applied, err
}

func (s *notifyingStore) Delete(ctx context.Context, name string) error {
	if err := s.ConfigStore.Delete(ctx, name); err != nil {
		return err
	}
	s.notifier.BoardUpdated(name, 0)
	return nil
}
