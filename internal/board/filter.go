// ABOUTME: Area filter projecting a board document onto the items of one area
// ABOUTME: Memoized on (version, collection length) so results stay referentially stable

package board

// FilterApps returns the apps placed in (areaType, areaID), in document order.
func FilterApps(c *Config, areaType AreaType, areaID string) []App {
	if c == nil {
		return []App{}
	}
	out := []App{}
	for _, a := range c.Apps {
		if a.Area.Matches(areaType, areaID) {
			out = append(out, a)
		}
	}
	return out
}

// FilterWidgets returns the widgets placed in (areaType, areaID), in document order.
func FilterWidgets(c *Config, areaType AreaType, areaID string) []Widget {
	if c == nil {
		return []Widget{}
	}
	out := []Widget{}
	for _, w := range c.Widgets {
		if w.Area.Matches(areaType, areaID) {
			out = append(out, w)
		}
	}
	return out
}

// memoKey identifies the document state a cached projection was computed from.
type memoKey struct {
	version uint64
	length  int
	set     bool
}

func keyOf(version uint64, length int) memoKey {
	return memoKey{version: version, length: length, set: true}
}

// AreaFilter caches the projections of one area. A projection is recomputed
// only when the document version or the length of the projected collection
// changes; otherwise the previously returned slice is returned again.
// AreaFilter is not safe for concurrent use.
type AreaFilter struct {
	areaType AreaType
	areaID   string

	appsKey    memoKey
	apps       []App
	widgetsKey memoKey
	widgets    []Widget
}

// NewAreaFilter creates a filter for (areaType, areaID).
func NewAreaFilter(areaType AreaType, areaID string) *AreaFilter {
	return &AreaFilter{areaType: areaType, areaID: areaID}
}

// Apps returns the memoized apps of the area.
func (f *AreaFilter) Apps(c *Config) []App {
	if c == nil {
		return []App{}
	}
	key := keyOf(c.Version, len(c.Apps))
	if f.appsKey != key {
		f.apps = FilterApps(c, f.areaType, f.areaID)
		f.appsKey = key
	}
	return f.apps
}

// Widgets returns the memoized widgets of the area.
func (f *AreaFilter) Widgets(c *Config) []Widget {
	if c == nil {
		return []Widget{}
	}
	key := keyOf(c.Version, len(c.Widgets))
	if f.widgetsKey != key {
		f.widgets = FilterWidgets(c, f.areaType, f.areaID)
		f.widgetsKey = key
	}
	return f.widgets
}
