// ABOUTME: Layout events reported by a grid engine and the reducers applying them
// ABOUTME: Reducers are pure: (previous document, event) -> next document

package layout

import (
	"github.com/2389/homarr-board/internal/board"
	"github.com/2389/homarr-board/internal/store"
)

// Op is the kind of engine event.
type Op string

// Engine event kinds
const (
	OpChange Op = "change"
	OpAdd    Op = "add"
)

// Element attribute names carried by rendered items.
const (
	AttrType = "data-type"
	AttrID   = "data-id"
)

// NodeEvent is a node change or addition reported by the grid engine. Nil
// coordinates mean "unchanged".
type NodeEvent struct {
	EventID string `json:"event_id,omitempty"`
	Op      Op     `json:"op"`

	// Item identifies the node. When absent, Attributes is consulted for the
	// data-type / data-id pair of the rendered element.
	Item       *board.ItemRef    `json:"item,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`

	X *int `json:"x,omitempty"`
	Y *int `json:"y,omitempty"`
	W *int `json:"w,omitempty"`
	H *int `json:"h,omitempty"`
}

// Ref resolves the item the event refers to.
func (e NodeEvent) Ref() (board.ItemRef, bool) {
	if e.Item != nil {
		return *e.Item, e.Item.Valid()
	}
	return ItemRefFromAttributes(e.Attributes)
}

// ItemRefFromAttributes reads the data-type / data-id pair of a rendered element.
func ItemRefFromAttributes(attrs map[string]string) (board.ItemRef, bool) {
	kind, ok := board.ParseItemKind(attrs[AttrType])
	if !ok {
		return board.ItemRef{}, false
	}
	ref := board.ItemRef{Kind: kind, ID: attrs[AttrID]}
	return ref, ref.Valid()
}

// ReduceChange merges the event's coordinates into the item's shape for size.
// It returns prev unchanged when the item does not exist.
func ReduceChange(prev *board.Config, ref board.ItemRef, ev NodeEvent, size board.SizeClass) *board.Config {
	next, ok := prev.ReplaceItem(ref, func(p *board.Placement) {
		p.Shape[size] = p.Shape[size].Merge(ev.X, ev.Y, ev.W, ev.H)
	})
	if !ok {
		return prev
	}
	return next
}

// ReduceAdd moves the item into area and merges the event's coordinates into
// its shape for size. It returns prev unchanged when the item does not exist.
func ReduceAdd(prev *board.Config, ref board.ItemRef, ev NodeEvent, area board.Area, size board.SizeClass) *board.Config {
	next, ok := prev.ReplaceItem(ref, func(p *board.Placement) {
		p.Area = area
		p.Shape[size] = p.Shape[size].Merge(ev.X, ev.Y, ev.W, ev.H)
	})
	if !ok {
		return prev
	}
	return next
}

// AreaChanged accepts an update only if the item's area differs between the
// two documents, by type or by any property value.
func AreaChanged(ref board.ItemRef) store.Guard {
	return func(prev, next *board.Config) bool {
		before, ok := prev.PlacementOf(ref)
		if !ok {
			return false
		}
		after, ok := next.PlacementOf(ref)
		if !ok {
			return false
		}
		return !before.Area.Equal(after.Area)
	}
}
