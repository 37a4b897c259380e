// Package dedupe drops engine events that are delivered more than once.
//
// A Window remembers event keys for a fixed time and up to a fixed count.
// Seen marks a key and reports whether it had already been marked:
//
//	w := dedupe.NewWindow(5*time.Minute, 10_000)
//	if w.Seen("default/evt-42") {
//		return // retry of an event that was already applied
//	}
//
// Expired keys are pruned while marking, so no background goroutine is
// needed. When the window is full the oldest key is evicted.
package dedupe
