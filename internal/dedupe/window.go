// ABOUTME: Bounded time window of event keys used to drop redelivered layout events
// ABOUTME: Insertion-ordered list gives O(1) eviction; expiry is pruned lazily on write

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

type entry struct {
	key    string
	marked time.Time
}

// Window is a thread-safe set of recently seen keys.
type Window struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // oldest at front
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

// NewWindow creates a window keeping keys for ttl, holding at most maxSize keys.
func NewWindow(ttl time.Duration, maxSize int) *Window {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Window{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Seen reports whether key was marked within the window. A key not seen is
// marked by the same call, so of several concurrent callers exactly one gets
// false.
func (w *Window) Seen(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.pruneLocked(now)

	if el, ok := w.entries[key]; ok {
		if now.Sub(el.Value.(*entry).marked) < w.ttl {
			return true
		}
		w.order.Remove(el)
		delete(w.entries, key)
	}

	for len(w.entries) >= w.maxSize {
		w.removeLocked(w.order.Front())
	}
	w.entries[key] = w.order.PushBack(&entry{key: key, marked: now})
	return false
}

// Contains reports whether key is in the window without marking it.
func (w *Window) Contains(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	el, ok := w.entries[key]
	return ok && w.now().Sub(el.Value.(*entry).marked) < w.ttl
}

// Forget removes key from the window.
func (w *Window) Forget(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if el, ok := w.entries[key]; ok {
		w.removeLocked(el)
	}
}

// Len returns the number of keys currently held, expired ones included until
// the next write prunes them.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// pruneLocked drops expired keys from the front. Keys are marked in time
// order, so the first live key ends the scan.
func (w *Window) pruneLocked(now time.Time) {
	for el := w.order.Front(); el != nil; el = w.order.Front() {
		if now.Sub(el.Value.(*entry).marked) < w.ttl {
			return
		}
		w.removeLocked(el)
	}
}

func (w *Window) removeLocked(el *list.Element) {
	if el == nil {
		return
	}
	w.order.Remove(el)
	delete(w.entries, el.Value.(*entry).key)
}
