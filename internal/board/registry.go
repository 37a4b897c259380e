// ABOUTME: Item reference registry handing out stable per-item handles
// ABOUTME: Handles are created lazily and never replaced or removed

package board

// Handle is the stable reference a grid engine uses to address a rendered item.
// The item kind is resolved once, when the handle is created.
type Handle struct {
	Ref ItemRef
}

// Registry maps item ids to handles. Not safe for concurrent use.
type Registry struct {
	handles map[string]*Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]*Handle)}
}

// Len returns the number of handles.
func (r *Registry) Len() int {
	return len(r.handles)
}

// Lookup returns the handle for id.
func (r *Registry) Lookup(id string) (*Handle, bool) {
	h, ok := r.handles[id]
	return h, ok
}

// Upsert creates a handle for every item lacking one. Existing handles are kept.
func (r *Registry) Upsert(apps []App, widgets []Widget) {
	for _, a := range apps {
		r.ensure(KindApp, a.ID)
	}
	for _, w := range widgets {
		r.ensure(KindWidget, w.ID)
	}
}

func (r *Registry) ensure(kind ItemKind, id string) {
	if _, ok := r.handles[id]; ok {
		return
	}
	r.handles[id] = &Handle{Ref: ItemRef{Kind: kind, ID: id}}
}

// NeedsSync reports whether the registry size differs from the number of items.
func (r *Registry) NeedsSync(apps []App, widgets []Widget) bool {
	return r.Len() != len(apps)+len(widgets)
}

// Sync upserts the items when NeedsSync reports a mismatch and returns whether
// it did so.
func (r *Registry) Sync(apps []App, widgets []Widget) bool {
	if !r.NeedsSync(apps, widgets) {
		return false
	}
	r.Upsert(apps, widgets)
	return true
}
