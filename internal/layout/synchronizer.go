// ABOUTME: Per-area layout synchronizer between the board store and a grid engine
// ABOUTME: Loads the engine from the area's items and writes engine events back to the store

package layout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/2389/homarr-board/internal/board"
	"github.com/2389/homarr-board/internal/store"
)

// Result reasons for events that were not written back.
const (
	ReasonReadOnly      = "edit mode disabled"
	ReasonMalformed     = "malformed"
	ReasonUnknownItem   = "item not found"
	ReasonUnchanged     = "unchanged"
	ReasonAreaUnchanged = "area unchanged"
	ReasonInvalid       = "invalid layout"
	ReasonDuplicate     = "duplicate"
)

// Result reports the outcome of one engine event.
type Result struct {
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
	Version uint64 `json:"version"`
}

// SynchronizerConfig holds the dependencies of a Synchronizer.
type SynchronizerConfig struct {
	AreaType  board.AreaType
	AreaID    string
	Session   *Session
	Store     store.ConfigStore
	Engine    Engine
	Publisher MetricsPublisher
	Logger    *slog.Logger
}

// Synchronizer keeps one area's grid engine consistent with the stored board
// and turns engine events into store updates.
type Synchronizer struct {
	mu sync.Mutex

	area      board.Area
	session   *Session
	store     store.ConfigStore
	engine    Engine
	publisher MetricsPublisher
	logger    *slog.Logger

	filter   *board.AreaFilter
	registry *board.Registry

	// inputs of the last engine load
	loaded        bool
	loadedApps    []board.App
	loadedWidgets []board.Widget
	loadedEngine  Engine
	loadedColumns int
}

// NewSynchronizer creates a synchronizer for one area.
func NewSynchronizer(cfg SynchronizerConfig) (*Synchronizer, error) {
	area, err := board.NewArea(cfg.AreaType, cfg.AreaID)
	if err != nil {
		return nil, err
	}
	if cfg.Session == nil {
		return nil, errors.New("session is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		area:      area,
		session:   cfg.Session,
		store:     cfg.Store,
		engine:    cfg.Engine,
		publisher: cfg.Publisher,
		logger:    logger.With("component", "layout", "board", cfg.Session.Board(), "area", area.String()),
		filter:    board.NewAreaFilter(area.Type, area.Key()),
		registry:  board.NewRegistry(),
	}, nil
}

// Area returns the area this synchronizer serves.
func (s *Synchronizer) Area() board.Area {
	return s.area
}

// Items returns the area's apps and widgets in document order. The slices are
// the same values across calls until the board's version or item count changes.
func (s *Synchronizer) Items(ctx context.Context) ([]board.App, []board.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.Metrics().Validate(); err != nil {
		return nil, nil, err
	}
	return s.itemsLocked(ctx)
}

func (s *Synchronizer) itemsLocked(ctx context.Context) ([]board.App, []board.Widget, error) {
	cfg, err := s.store.Get(ctx, s.session.Board())
	if err != nil {
		return nil, nil, err
	}
	apps := s.filter.Apps(cfg)
	widgets := s.filter.Widgets(cfg)
	s.registry.Sync(apps, widgets)
	return apps, widgets, nil
}

// BindEngine attaches the synchronizer to a (new) engine container. The next
// Refresh reloads it.
func (s *Synchronizer) BindEngine(e Engine) {
	s.mu.Lock()
	s.engine = e
	s.mu.Unlock()
}

// Initialize loads the engine from the current items unconditionally.
func (s *Synchronizer) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.session.Metrics()
	if err := m.Validate(); err != nil {
		return err
	}
	apps, widgets, err := s.itemsLocked(ctx)
	if err != nil {
		return err
	}
	s.loadLocked(apps, widgets, m)
	return nil
}

// Refresh reloads the engine if the area's items, the engine or the column
// count changed since the last load. It reports whether a reload happened.
func (s *Synchronizer) Refresh(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Synchronizer) refreshLocked(ctx context.Context) (bool, error) {
	m := s.session.Metrics()
	if err := m.Validate(); err != nil {
		return false, err
	}
	apps, widgets, err := s.itemsLocked(ctx)
	if err != nil {
		return false, err
	}
	if s.loaded &&
		sameSlice(apps, s.loadedApps) &&
		sameSlice(widgets, s.loadedWidgets) &&
		s.engine == s.loadedEngine &&
		m.ColumnCount == s.loadedColumns {
		return false, nil
	}
	s.loadLocked(apps, widgets, m)
	return true, nil
}

// loadLocked rebuilds the engine from scratch.
func (s *Synchronizer) loadLocked(apps []board.App, widgets []board.Widget, m Metrics) {
	s.loaded = true
	s.loadedApps = apps
	s.loadedWidgets = widgets
	s.loadedEngine = s.engine
	s.loadedColumns = m.ColumnCount

	if s.engine == nil {
		return
	}
	nodes := make([]Node, 0, len(apps)+len(widgets))
	for _, a := range apps {
		nodes = append(nodes, s.node(board.ItemRef{Kind: board.KindApp, ID: a.ID}, a.Shape[m.SizeClass]))
	}
	for _, w := range widgets {
		nodes = append(nodes, s.node(board.ItemRef{Kind: board.KindWidget, ID: w.ID}, w.Shape[m.SizeClass]))
	}
	s.engine.Load(Layout{
		Area:        s.area,
		Nodes:       nodes,
		EditMode:    s.session.EditMode(),
		ColumnCount: m.ColumnCount,
		SizeClass:   m.SizeClass,
		CellHeight:  m.CellWidth(),
	})
	s.logger.Debug("engine loaded", "nodes", len(nodes), "columns", m.ColumnCount)
}

// node builds the engine node of an item. The handle is nil when the registry
// has not been synced for the item yet.
func (s *Synchronizer) node(ref board.ItemRef, entry board.ShapeEntry) Node {
	h, _ := s.registry.Lookup(ref.ID)
	return Node{Handle: h, Ref: ref, Location: entry.Location, Size: entry.Size}
}

// Resize recomputes the style variables, publishes them and rescales the
// engine's cell height.
func (s *Synchronizer) Resize() (StyleVars, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.session.Metrics()
	if err := m.Validate(); err != nil {
		return StyleVars{}, err
	}
	vars := StyleVars{WidgetWidth: m.CellWidth(), ColumnCount: m.ColumnCount}
	if s.publisher != nil {
		s.publisher.Publish(s.session.Board(), vars)
	}
	if s.engine != nil {
		s.engine.SetCellHeight(vars.WidgetWidth)
	}
	return vars, nil
}

// HandleChange writes an in-area move or resize back to the store.
func (s *Synchronizer) HandleChange(ctx context.Context, ev NodeEvent) (Result, error) {
	return s.handle(ctx, ev, false)
}

// HandleAdd writes a move into this area back to the store. The write is
// skipped when the item already lives in this area.
func (s *Synchronizer) HandleAdd(ctx context.Context, ev NodeEvent) (Result, error) {
	return s.handle(ctx, ev, true)
}

func (s *Synchronizer) handle(ctx context.Context, ev NodeEvent, add bool) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.session.Metrics()
	if err := m.Validate(); err != nil {
		return Result{}, err
	}
	if !s.session.EditMode() {
		return Result{Reason: ReasonReadOnly}, nil
	}
	ref, ok := ev.Ref()
	if !ok {
		s.logger.Debug("ignoring malformed event", "op", ev.Op, "event_id", ev.EventID)
		return Result{Reason: ReasonMalformed}, nil
	}

	var found, guardRejected bool
	mutate := func(prev *board.Config) *board.Config {
		_, found = prev.PlacementOf(ref)
		if add {
			return ReduceAdd(prev, ref, ev, s.area, m.SizeClass)
		}
		return ReduceChange(prev, ref, ev, m.SizeClass)
	}
	var guard store.Guard
	if add {
		areaChanged := AreaChanged(ref)
		guard = func(prev, next *board.Config) bool {
			ok := areaChanged(prev, next)
			guardRejected = !ok
			return ok
		}
	}

	cfg, applied, err := s.store.Update(ctx, s.session.Board(), mutate, guard)
	switch {
	case errors.Is(err, board.ErrInvalidConfig):
		s.logger.Debug("rejected layout event", "item", ref.ID, "error", err)
		return Result{Reason: ReasonInvalid}, nil
	case err != nil:
		return Result{}, fmt.Errorf("update board: %w", err)
	}
	if !applied {
		reason := ReasonUnchanged
		switch {
		case !found:
			reason = ReasonUnknownItem
		case guardRejected:
			reason = ReasonAreaUnchanged
		}
		return Result{Reason: reason, Version: cfg.Version}, nil
	}

	s.logger.Info("layout written", "op", ev.Op, "item", ref.ID, "version", cfg.Version)
	if _, err := s.refreshLocked(ctx); err != nil {
		s.logger.Warn("engine refresh failed", "error", err)
	}
	return Result{Applied: true, Version: cfg.Version}, nil
}

// sameSlice reports whether a and b are the same slice value.
func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return a != nil && b != nil
	}
	return &a[0] == &b[0]
}
