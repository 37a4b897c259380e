// ABOUTME: Board session state shared by every area synchronizer of one board
// ABOUTME: Holds edit mode and layout metrics; metrics gate every synchronizer call

package layout

import (
	"errors"
	"fmt"
	"sync"

	"github.com/2389/homarr-board/internal/board"
)

// ErrMetricsNotReady is returned when a synchronizer runs before the main area
// width, column count and size class have been established.
var ErrMetricsNotReady = errors.New("layout metrics not ready")

// Metrics are the global layout measurements of a board session.
type Metrics struct {
	MainAreaWidth float64         `json:"main_area_width"`
	ColumnCount   int             `json:"column_count"`
	SizeClass     board.SizeClass `json:"size_class"`
}

// Validate returns ErrMetricsNotReady naming the first missing metric.
func (m Metrics) Validate() error {
	if m.MainAreaWidth <= 0 {
		return fmt.Errorf("%w: main area width", ErrMetricsNotReady)
	}
	if m.SizeClass == "" {
		return fmt.Errorf("%w: size class", ErrMetricsNotReady)
	}
	if m.ColumnCount <= 0 {
		return fmt.Errorf("%w: column count", ErrMetricsNotReady)
	}
	return nil
}

// CellWidth is the width of one grid column.
func (m Metrics) CellWidth() float64 {
	return m.MainAreaWidth / float64(m.ColumnCount)
}

// StyleVars is the rendering hint published for presentation styling.
type StyleVars struct {
	WidgetWidth float64 `json:"widget_width"`
	ColumnCount int     `json:"column_count"`
}

// MetricsPublisher receives the style variables of a board whenever they are
// recomputed.
type MetricsPublisher interface {
	Publish(boardName string, vars StyleVars)
}

// Session is the application state of one open board: which board it is,
// whether edit mode is on, and the current layout metrics. It is created when
// the board session starts and discarded when it ends.
type Session struct {
	mu       sync.RWMutex
	board    string
	editMode bool
	metrics  Metrics
}

// NewSession creates a session for the named board with edit mode off.
func NewSession(boardName string) *Session {
	return &Session{board: boardName}
}

// Board returns the name of the board the session edits.
func (s *Session) Board() string {
	return s.board
}

// EditMode reports whether layout edits are written back.
func (s *Session) EditMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editMode
}

// SetEditMode toggles edit mode.
func (s *Session) SetEditMode(enabled bool) {
	s.mu.Lock()
	s.editMode = enabled
	s.mu.Unlock()
}

// Metrics returns the current layout metrics.
func (s *Session) Metrics() Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// SetMetrics replaces the layout metrics.
func (s *Session) SetMetrics(m Metrics) {
	s.mu.Lock()
	s.metrics = m
	s.mu.Unlock()
}

// StyleSheet is an in-memory MetricsPublisher keeping the last published
// variables of every board.
type StyleSheet struct {
	mu   sync.RWMutex
	vars map[string]StyleVars
}

// NewStyleSheet creates an empty StyleSheet.
func NewStyleSheet() *StyleSheet {
	return &StyleSheet{vars: make(map[string]StyleVars)}
}

// Publish records vars for the board.
func (s *StyleSheet) Publish(boardName string, vars StyleVars) {
	s.mu.Lock()
	s.vars[boardName] = vars
	s.mu.Unlock()
}

// Get returns the last published vars of the board.
func (s *StyleSheet) Get(boardName string) (StyleVars, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[boardName]
	return v, ok
}

// Forget drops the vars of a board.
func (s *StyleSheet) Forget(boardName string) {
	s.mu.Lock()
	delete(s.vars, boardName)
	s.mu.Unlock()
}
