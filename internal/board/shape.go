// ABOUTME: Per-size-class location and size records attached to placeable items
// ABOUTME: Merge fills only the fields a layout event actually reports

package board

import "fmt"

// SizeClass is a responsive breakpoint under which an item has its own shape.
type SizeClass string

// Size classes
const (
	SizeSmall  SizeClass = "sm"
	SizeMedium SizeClass = "md"
	SizeLarge  SizeClass = "lg"
)

// ParseSizeClass converts a raw string into a SizeClass.
func ParseSizeClass(s string) (SizeClass, error) {
	switch SizeClass(s) {
	case SizeSmall, SizeMedium, SizeLarge:
		return SizeClass(s), nil
	default:
		return "", fmt.Errorf("unknown size class %q", s)
	}
}

// Location is a grid cell.
type Location struct {
	X int `json:"x" yaml:"x" toml:"x"`
	Y int `json:"y" yaml:"y" toml:"y"`
}

// Size is a width and height in cells.
type Size struct {
	Width  int `json:"width" yaml:"width" toml:"width"`
	Height int `json:"height" yaml:"height" toml:"height"`
}

// ShapeEntry is the placement of an item under one size class.
type ShapeEntry struct {
	Location Location `json:"location" yaml:"location" toml:"location"`
	Size     Size     `json:"size" yaml:"size" toml:"size"`
}

// Merge returns e with every non-nil value applied. Nil values keep the
// current field.
func (e ShapeEntry) Merge(x, y, w, h *int) ShapeEntry {
	if x != nil {
		e.Location.X = *x
	}
	if y != nil {
		e.Location.Y = *y
	}
	if w != nil {
		e.Size.Width = *w
	}
	if h != nil {
		e.Size.Height = *h
	}
	return e
}

// Shape maps size classes to placements.
type Shape map[SizeClass]ShapeEntry

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s Shape) validate(columns map[SizeClass]int) error {
	for class, entry := range s {
		if _, err := ParseSizeClass(string(class)); err != nil {
			return err
		}
		if entry.Location.X < 0 || entry.Location.Y < 0 {
			return fmt.Errorf("%s: negative location (%d,%d)", class, entry.Location.X, entry.Location.Y)
		}
		if entry.Size.Width < 0 || entry.Size.Height < 0 {
			return fmt.Errorf("%s: negative size %dx%d", class, entry.Size.Width, entry.Size.Height)
		}
		if cols, ok := columns[class]; ok && cols > 0 {
			if entry.Location.X+entry.Size.Width > cols {
				return fmt.Errorf("%s: item overflows %d columns", class, cols)
			}
		}
	}
	return nil
}
