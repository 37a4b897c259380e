// ABOUTME: Grid engine contract and the in-process View that records a derived layout
// ABOUTME: The engine is always rebuilt from the store, never the other way round

package layout

import (
	"sync"

	"github.com/2389/homarr-board/internal/board"
)

// Node is one item as handed to the grid engine.
type Node struct {
	Handle   *board.Handle  `json:"-"`
	Ref      board.ItemRef  `json:"item"`
	Location board.Location `json:"location"`
	Size     board.Size     `json:"size"`
}

// Layout is the complete input of one engine load.
type Layout struct {
	Area        board.Area      `json:"area"`
	Nodes       []Node          `json:"nodes"`
	EditMode    bool            `json:"edit_mode"`
	ColumnCount int             `json:"column_count"`
	SizeClass   board.SizeClass `json:"size_class"`
	CellHeight  float64         `json:"cell_height"`
}

// Engine is a grid engine bound to one area container.
type Engine interface {
	// Load discards any engine state and rebuilds it from layout.
	Load(layout Layout)

	// SetCellHeight rescales the live grid without reloading it.
	SetCellHeight(height float64)
}

// View is an Engine that keeps the last loaded layout so it can be served to
// rendering clients.
type View struct {
	mu     sync.RWMutex
	layout Layout
	loads  int
}

// NewView creates an empty View.
func NewView() *View {
	return &View{}
}

// Load replaces the recorded layout.
func (v *View) Load(layout Layout) {
	nodes := make([]Node, len(layout.Nodes))
	copy(nodes, layout.Nodes)
	layout.Nodes = nodes

	v.mu.Lock()
	v.layout = layout
	v.loads++
	v.mu.Unlock()
}

// SetCellHeight updates the cell height of the recorded layout.
func (v *View) SetCellHeight(height float64) {
	v.mu.Lock()
	v.layout.CellHeight = height
	v.mu.Unlock()
}

// Snapshot returns a copy of the recorded layout.
func (v *View) Snapshot() Layout {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := v.layout
	out.Nodes = make([]Node, len(v.layout.Nodes))
	copy(out.Nodes, v.layout.Nodes)
	return out
}

// Loads returns how many times the view has been (re)built.
func (v *View) Loads() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loads
}
