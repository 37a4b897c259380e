// ABOUTME: Board configuration document: apps, widgets, settings and version counter
// ABOUTME: Deep copy, validation, lookup and single-item replacement helpers

package board

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidConfig is returned when a document fails validation.
var ErrInvalidConfig = errors.New("invalid board config")

// ItemKind distinguishes apps from widgets.
type ItemKind string

// Item kinds
const (
	KindApp    ItemKind = "app"
	KindWidget ItemKind = "widget"
)

// ParseItemKind converts a raw string into an ItemKind.
func ParseItemKind(s string) (ItemKind, bool) {
	switch ItemKind(s) {
	case KindApp, KindWidget:
		return ItemKind(s), true
	default:
		return "", false
	}
}

// ItemRef addresses one placeable item.
type ItemRef struct {
	Kind ItemKind `json:"type"`
	ID   string   `json:"id"`
}

// Valid reports whether both kind and id are set to usable values.
func (r ItemRef) Valid() bool {
	_, ok := ParseItemKind(string(r.Kind))
	return ok && r.ID != ""
}

// App is a link to a self-hosted service.
type App struct {
	ID    string `json:"id" yaml:"id" toml:"id"`
	Name  string `json:"name" yaml:"name" toml:"name"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon,omitempty"`
	Area  Area   `json:"area" yaml:"area" toml:"area"`
	Shape Shape  `json:"shape" yaml:"shape" toml:"shape"`
}

// Widget is a small embedded tool such as a notebook or a clock.
type Widget struct {
	ID         string         `json:"id" yaml:"id" toml:"id"`
	Type       string         `json:"type" yaml:"type" toml:"type"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty" toml:"properties,omitempty"`
	Area       Area           `json:"area" yaml:"area" toml:"area"`
	Shape      Shape          `json:"shape" yaml:"shape" toml:"shape"`
}

// Settings holds board-wide options.
type Settings struct {
	Locale       string            `json:"locale,omitempty" yaml:"locale,omitempty" toml:"locale,omitempty"`
	ColumnCounts map[SizeClass]int `json:"column_counts,omitempty" yaml:"column_counts,omitempty" toml:"column_counts,omitempty"`
}

// Config is one board document.
type Config struct {
	Name     string   `json:"name" yaml:"name" toml:"name"`
	Version  uint64   `json:"version" yaml:"version" toml:"version"`
	Settings Settings `json:"settings" yaml:"settings" toml:"settings"`
	Apps     []App    `json:"apps" yaml:"apps" toml:"apps"`
	Widgets  []Widget `json:"widgets" yaml:"widgets" toml:"widgets"`
}

// New returns an empty board with the given name.
func New(name string) *Config {
	return &Config{
		Name:    name,
		Apps:    []App{},
		Widgets: []Widget{},
	}
}

// Clone returns a deep copy of c. Mutating the copy never affects c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := &Config{
		Name:    c.Name,
		Version: c.Version,
		Settings: Settings{
			Locale: c.Settings.Locale,
		},
		Apps:    make([]App, len(c.Apps)),
		Widgets: make([]Widget, len(c.Widgets)),
	}
	if c.Settings.ColumnCounts != nil {
		out.Settings.ColumnCounts = make(map[SizeClass]int, len(c.Settings.ColumnCounts))
		for k, v := range c.Settings.ColumnCounts {
			out.Settings.ColumnCounts[k] = v
		}
	}
	for i, a := range c.Apps {
		a.Shape = a.Shape.Clone()
		out.Apps[i] = a
	}
	for i, w := range c.Widgets {
		w.Shape = w.Shape.Clone()
		w.Properties = cloneProperties(w.Properties)
		out.Widgets[i] = w
	}
	return out
}

func cloneProperties(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneProperties(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}

// FindApp returns the index of the app with the given id.
func (c *Config) FindApp(id string) (int, bool) {
	i := slices.IndexFunc(c.Apps, func(a App) bool { return a.ID == id })
	return i, i >= 0
}

// FindWidget returns the index of the widget with the given id.
func (c *Config) FindWidget(id string) (int, bool) {
	i := slices.IndexFunc(c.Widgets, func(w Widget) bool { return w.ID == id })
	return i, i >= 0
}

// Placement is the positional state of one item, detached from its collection.
type Placement struct {
	Area  Area
	Shape Shape
}

// PlacementOf returns a copy of the placement of the item addressed by ref.
func (c *Config) PlacementOf(ref ItemRef) (Placement, bool) {
	switch ref.Kind {
	case KindApp:
		if i, ok := c.FindApp(ref.ID); ok {
			return Placement{Area: c.Apps[i].Area, Shape: c.Apps[i].Shape.Clone()}, true
		}
	case KindWidget:
		if i, ok := c.FindWidget(ref.ID); ok {
			return Placement{Area: c.Widgets[i].Area, Shape: c.Widgets[i].Shape.Clone()}, true
		}
	}
	return Placement{}, false
}

// ReplaceItem returns a copy of c in which the item addressed by ref has been
// passed through fn, removed from its collection and appended at the end.
// All other items keep their relative order. It returns false, and c itself,
// when the item does not exist.
func (c *Config) ReplaceItem(ref ItemRef, fn func(p *Placement)) (*Config, bool) {
	switch ref.Kind {
	case KindApp:
		i, ok := c.FindApp(ref.ID)
		if !ok {
			return c, false
		}
		next := c.Clone()
		item := next.Apps[i]
		p := Placement{Area: item.Area, Shape: nonNilShape(item.Shape)}
		fn(&p)
		item.Area, item.Shape = p.Area, p.Shape
		next.Apps = append(slices.Delete(next.Apps, i, i+1), item)
		return next, true
	case KindWidget:
		i, ok := c.FindWidget(ref.ID)
		if !ok {
			return c, false
		}
		next := c.Clone()
		item := next.Widgets[i]
		p := Placement{Area: item.Area, Shape: nonNilShape(item.Shape)}
		fn(&p)
		item.Area, item.Shape = p.Area, p.Shape
		next.Widgets = append(slices.Delete(next.Widgets, i, i+1), item)
		return next, true
	default:
		return c, false
	}
}

func nonNilShape(s Shape) Shape {
	if s == nil {
		return Shape{}
	}
	return s
}

// Validate checks ids, areas and shapes of every item.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	seen := make(map[string]ItemKind, len(c.Apps)+len(c.Widgets))
	check := func(kind ItemKind, id string, area Area, shape Shape) error {
		if id == "" {
			return fmt.Errorf("%w: %s without id", ErrInvalidConfig, kind)
		}
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate id %q (%s and %s)", ErrInvalidConfig, id, prev, kind)
		}
		seen[id] = kind
		if err := area.Validate(); err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalidConfig, kind, id, err)
		}
		if err := shape.validate(c.Settings.ColumnCounts); err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalidConfig, kind, id, err)
		}
		return nil
	}
	for _, a := range c.Apps {
		if err := check(KindApp, a.ID, a.Area, a.Shape); err != nil {
			return err
		}
	}
	for _, w := range c.Widgets {
		if w.Type == "" {
			return fmt.Errorf("%w: widget %q without type", ErrInvalidConfig, w.ID)
		}
		if err := check(KindWidget, w.ID, w.Area, w.Shape); err != nil {
			return err
		}
	}
	return nil
}
