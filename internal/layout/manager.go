// ABOUTME: Manager owning board sessions and their per-area synchronizers
// ABOUTME: Routes engine events, applies session settings and refreshes sibling areas

package layout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/2389/homarr-board/internal/board"
	"github.com/2389/homarr-board/internal/store"
)

// Deduper reports whether an event key was seen before, marking it otherwise.
// Forget releases a key whose event was not written.
type Deduper interface {
	Seen(key string) bool
	Forget(key string)
}

// ManagerConfig holds the dependencies of a Manager.
type ManagerConfig struct {
	Store     store.ConfigStore
	Publisher MetricsPublisher
	Deduper   Deduper
	Logger    *slog.Logger
}

// SessionSettings is a partial update of a session. Nil fields are kept.
type SessionSettings struct {
	EditMode      *bool            `json:"edit_mode,omitempty"`
	MainAreaWidth *float64         `json:"main_area_width,omitempty"`
	ColumnCount   *int             `json:"column_count,omitempty"`
	SizeClass     *board.SizeClass `json:"size_class,omitempty"`
}

// SessionState describes a session after settings were applied.
type SessionState struct {
	Board    string    `json:"board"`
	EditMode bool      `json:"edit_mode"`
	Metrics  Metrics   `json:"metrics"`
	Ready    bool      `json:"ready"`
	Style    StyleVars `json:"style"`
}

type areaKey struct {
	areaType board.AreaType
	areaID   string
}

type boardSession struct {
	session *Session
	areas   map[areaKey]*Synchronizer
	views   map[areaKey]*View
	order   []areaKey
}

// Manager owns one Session per open board and one Synchronizer per area of it.
// Every synchronizer renders into a View.
type Manager struct {
	store     store.ConfigStore
	publisher MetricsPublisher
	deduper   Deduper
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*boardSession
}

// NewManager creates a Manager.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:     cfg.Store,
		publisher: cfg.Publisher,
		deduper:   cfg.Deduper,
		logger:    logger,
		sessions:  make(map[string]*boardSession),
	}
}

// sessionFor returns the session of a board, starting one if needed.
func (m *Manager) sessionFor(name string) *boardSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	bs, ok := m.sessions[name]
	if !ok {
		bs = &boardSession{
			session: NewSession(name),
			areas:   make(map[areaKey]*Synchronizer),
			views:   make(map[areaKey]*View),
		}
		m.sessions[name] = bs
		m.logger.Debug("session started", "board", name)
	}
	return bs
}

// lookup returns the session of a board without starting one.
func (m *Manager) lookup(name string) (*boardSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bs, ok := m.sessions[name]
	return bs, ok
}

// Session returns the session of a board, starting one if needed.
func (m *Manager) Session(name string) *Session {
	return m.sessionFor(name).session
}

// Boards returns the names of the boards with an open session.
func (m *Manager) Boards() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sessions))
	for name := range m.sessions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// End discards the session of a board and every synchronizer bound to it.
func (m *Manager) End(name string) {
	m.mu.Lock()
	_, ok := m.sessions[name]
	delete(m.sessions, name)
	m.mu.Unlock()
	if ok {
		if ss, isSheet := m.publisher.(*StyleSheet); isSheet {
			ss.Forget(name)
		}
		m.logger.Debug("session ended", "board", name)
	}
}

// synchronizers returns the synchronizers of a board in creation order.
func (m *Manager) synchronizers(name string) []*Synchronizer {
	m.mu.Lock()
	defer m.mu.Unlock()
	bs, ok := m.sessions[name]
	if !ok {
		return nil
	}
	out := make([]*Synchronizer, 0, len(bs.order))
	for _, k := range bs.order {
		out = append(out, bs.areas[k])
	}
	return out
}

// Configure applies settings to a board's session. Once all metrics are set
// every area is resized and refreshed.
func (m *Manager) Configure(ctx context.Context, name string, settings SessionSettings) (SessionState, error) {
	if settings.SizeClass != nil {
		if _, err := board.ParseSizeClass(string(*settings.SizeClass)); err != nil {
			return SessionState{}, fmt.Errorf("%w: %v", board.ErrInvalidConfig, err)
		}
	}
	if _, err := m.store.Get(ctx, name); err != nil {
		return SessionState{}, err
	}
	s := m.Session(name)

	if settings.EditMode != nil {
		s.SetEditMode(*settings.EditMode)
	}
	metrics := s.Metrics()
	if settings.MainAreaWidth != nil {
		metrics.MainAreaWidth = *settings.MainAreaWidth
	}
	if settings.ColumnCount != nil {
		metrics.ColumnCount = *settings.ColumnCount
	}
	if settings.SizeClass != nil {
		metrics.SizeClass = *settings.SizeClass
	}
	s.SetMetrics(metrics)

	state := SessionState{Board: name, EditMode: s.EditMode(), Metrics: metrics}
	if metrics.Validate() != nil {
		return state, nil
	}
	state.Ready = true
	state.Style = StyleVars{WidgetWidth: metrics.CellWidth(), ColumnCount: metrics.ColumnCount}
	if m.publisher != nil {
		m.publisher.Publish(name, state.Style)
	}
	for _, syncer := range m.synchronizers(name) {
		if _, err := syncer.Resize(); err != nil {
			return state, err
		}
		if _, err := syncer.Refresh(ctx); err != nil {
			return state, err
		}
	}
	return state, nil
}

// Area returns the synchronizer of an area, creating and initializing it on
// first use, and its current view.
func (m *Manager) Area(ctx context.Context, name string, areaType board.AreaType, areaID string) (*Synchronizer, *View, error) {
	if _, err := m.store.Get(ctx, name); err != nil {
		return nil, nil, err
	}
	bs := m.sessionFor(name)
	if err := bs.session.Metrics().Validate(); err != nil {
		return nil, nil, err
	}
	key := areaKey{areaType: areaType, areaID: areaID}

	m.mu.Lock()
	syncer, ok := bs.areas[key]
	view := bs.views[key]
	if !ok {
		view = NewView()
		var err error
		syncer, err = NewSynchronizer(SynchronizerConfig{
			AreaType:  areaType,
			AreaID:    areaID,
			Session:   bs.session,
			Store:     m.store,
			Engine:    view,
			Publisher: m.publisher,
			Logger:    m.logger,
		})
		if err != nil {
			m.mu.Unlock()
			return nil, nil, err
		}
		bs.areas[key] = syncer
		bs.views[key] = view
		bs.order = append(bs.order, key)
	}
	m.mu.Unlock()

	if _, err := syncer.Refresh(ctx); err != nil {
		return nil, nil, err
	}
	if !ok {
		if _, err := syncer.Resize(); err != nil {
			return nil, nil, err
		}
	}
	return syncer, view, nil
}

// Apply routes an engine event to the area's synchronizer. Accepted writes
// refresh the other areas of the board, which may have lost the item.
func (m *Manager) Apply(ctx context.Context, name string, areaType board.AreaType, areaID string, ev NodeEvent) (Result, error) {
	syncer, _, err := m.Area(ctx, name, areaType, areaID)
	if err != nil {
		return Result{}, err
	}
	var key string
	if ev.EventID != "" && m.deduper != nil {
		key = name + "/" + ev.EventID
		if m.deduper.Seen(key) {
			return Result{Reason: ReasonDuplicate}, nil
		}
	}

	var res Result
	switch ev.Op {
	case OpChange:
		res, err = syncer.HandleChange(ctx, ev)
	case OpAdd:
		res, err = syncer.HandleAdd(ctx, ev)
	default:
		res = Result{Reason: ReasonMalformed}
	}
	if err != nil || !res.Applied {
		// A retry of an event that was not written must be handled again.
		if key != "" {
			m.deduper.Forget(key)
		}
		return res, err
	}

	m.RefreshBoard(ctx, name, syncer)
	return res, nil
}

// RefreshBoard refreshes every synchronizer of a board except skip. Errors are
// logged; a board that vanished ends its session.
func (m *Manager) RefreshBoard(ctx context.Context, name string, skip *Synchronizer) {
	for _, other := range m.synchronizers(name) {
		if other == skip {
			continue
		}
		if _, err := other.Refresh(ctx); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				m.End(name)
				return
			}
			m.logger.Warn("area refresh failed", "board", name, "area", other.Area().String(), "error", err)
		}
	}
}

// Describe returns the current state of a board's session. A board without an
// open session is described as a new one; no session is started.
func (m *Manager) Describe(ctx context.Context, name string) (SessionState, error) {
	if _, err := m.store.Get(ctx, name); err != nil {
		return SessionState{}, err
	}
	state := SessionState{Board: name}
	bs, ok := m.lookup(name)
	if !ok {
		return state, nil
	}
	metrics := bs.session.Metrics()
	state.EditMode = bs.session.EditMode()
	state.Metrics = metrics
	if metrics.Validate() == nil {
		state.Ready = true
		state.Style = StyleVars{WidgetWidth: metrics.CellWidth(), ColumnCount: metrics.ColumnCount}
	}
	return state, nil
}
