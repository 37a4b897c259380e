// ABOUTME: Area tagged union for item placement regions (wrapper, category, sidebar)
// ABOUTME: Construction rules, validation, matching and equality for areas

package board

import (
	"errors"
	"fmt"
)

// ErrInvalidArea is returned when an area type or its properties are not valid.
var ErrInvalidArea = errors.New("invalid area")

// AreaType names the kind of placement region.
type AreaType string

// Area types
const (
	AreaWrapper  AreaType = "wrapper"
	AreaCategory AreaType = "category"
	AreaSidebar  AreaType = "sidebar"
)

// SidebarLocation is the side a sidebar area is rendered on.
type SidebarLocation string

// Sidebar locations
const (
	SidebarLeft  SidebarLocation = "left"
	SidebarRight SidebarLocation = "right"
)

// ParseAreaType converts a raw string into an AreaType.
func ParseAreaType(s string) (AreaType, error) {
	switch AreaType(s) {
	case AreaWrapper, AreaCategory, AreaSidebar:
		return AreaType(s), nil
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidArea, s)
	}
}

// AreaProperties holds the discriminating properties of an area.
// Wrapper and category areas use ID, sidebars use Location.
type AreaProperties struct {
	ID       string          `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Location SidebarLocation `json:"location,omitempty" yaml:"location,omitempty" toml:"location,omitempty"`
}

// Area is the region an item belongs to.
type Area struct {
	Type       AreaType       `json:"type" yaml:"type" toml:"type"`
	Properties AreaProperties `json:"properties" yaml:"properties" toml:"properties"`
}

// NewArea builds the area for (areaType, areaID). For sidebars areaID is the
// location ("left" or "right"), otherwise it is the wrapper or category id.
func NewArea(areaType AreaType, areaID string) (Area, error) {
	switch areaType {
	case AreaSidebar:
		loc := SidebarLocation(areaID)
		if loc != SidebarLeft && loc != SidebarRight {
			return Area{}, fmt.Errorf("%w: sidebar location %q", ErrInvalidArea, areaID)
		}
		return Area{Type: AreaSidebar, Properties: AreaProperties{Location: loc}}, nil
	case AreaWrapper, AreaCategory:
		if areaID == "" {
			return Area{}, fmt.Errorf("%w: %s id is required", ErrInvalidArea, areaType)
		}
		return Area{Type: areaType, Properties: AreaProperties{ID: areaID}}, nil
	default:
		return Area{}, fmt.Errorf("%w: unknown type %q", ErrInvalidArea, areaType)
	}
}

// Key returns the identifier of the area within its type: the location for
// sidebars, the id otherwise.
func (a Area) Key() string {
	if a.Type == AreaSidebar {
		return string(a.Properties.Location)
	}
	return a.Properties.ID
}

// Matches reports whether the area is the one addressed by (areaType, areaID).
func (a Area) Matches(areaType AreaType, areaID string) bool {
	if a.Type != areaType {
		return false
	}
	if a.Type == AreaSidebar {
		return string(a.Properties.Location) == areaID
	}
	return a.Properties.ID == areaID
}

// Equal reports whether two areas have the same type and property values.
func (a Area) Equal(other Area) bool {
	return a.Type == other.Type && a.Properties == other.Properties
}

// Validate checks that the area is well formed.
func (a Area) Validate() error {
	_, err := NewArea(a.Type, a.Key())
	if err != nil {
		return err
	}
	if a.Type == AreaSidebar && a.Properties.ID != "" {
		return fmt.Errorf("%w: sidebar must not carry an id", ErrInvalidArea)
	}
	if a.Type != AreaSidebar && a.Properties.Location != "" {
		return fmt.Errorf("%w: %s must not carry a location", ErrInvalidArea, a.Type)
	}
	return nil
}

// String renders the area as "type:key".
func (a Area) String() string {
	return string(a.Type) + ":" + a.Key()
}
