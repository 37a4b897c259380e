// ABOUTME: In-memory fan-out of board update events to stream subscribers
// ABOUTME: Implements store.Notifier so every accepted write reaches open SSE streams

package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// subscriberBufferSize is the channel buffer for each subscriber.
	subscriberBufferSize = 64

	// EventBoardUpdated is the event name sent for every accepted board write.
	EventBoardUpdated = "board.updated"
)

// BoardEvent reports a new version of a board. Version 0 means the board was deleted.
type BoardEvent struct {
	Type    string    `json:"type"`
	Board   string    `json:"board"`
	Version uint64    `json:"version"`
	Deleted bool      `json:"deleted,omitempty"`
	At      time.Time `json:"at"`
}

// Broadcaster provides in-memory pub/sub for board events. Subscribers
// register for a board name and receive its events as writes are accepted.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan BoardEvent // board -> subID -> ch
	closed      bool
	now         func() time.Time
	logger      *slog.Logger
}

// New creates a broadcaster. Pass nil logger for default.
func New(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		subscribers: make(map[string]map[string]chan BoardEvent),
		now:         time.Now,
		logger:      logger.With("component", "broadcast"),
	}
}

// Subscribe registers a subscriber for events of the named board. The returned
// channel is closed when ctx is cancelled, on Unsubscribe, or on Close.
func (b *Broadcaster) Subscribe(ctx context.Context, boardName string) (<-chan BoardEvent, string) {
	subID := uuid.New().String()
	ch := make(chan BoardEvent, subscriberBufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, subID
	}
	if _, ok := b.subscribers[boardName]; !ok {
		b.subscribers[boardName] = make(map[string]chan BoardEvent)
	}
	b.subscribers[boardName][subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "board", boardName, "sub_id", subID)

	go func() {
		<-ctx.Done()
		b.Unsubscribe(boardName, subID)
	}()

	return ch, subID
}

// Publish sends an event to all subscribers of its board.
// Non-blocking: events are dropped for subscribers whose channels are full.
func (b *Broadcaster) Publish(event BoardEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers[event.Board] {
		select {
		case ch <- event:
		default:
			b.logger.Debug("dropped event for slow subscriber",
				"board", event.Board,
				"version", event.Version,
				"sub_id", id)
		}
	}
}

// BoardUpdated publishes a board.updated event.
func (b *Broadcaster) BoardUpdated(name string, version uint64) {
	b.Publish(BoardEvent{
		Type:    EventBoardUpdated,
		Board:   name,
		Version: version,
		Deleted: version == 0,
		At:      b.now().UTC(),
	})
}

// Subscribers returns the number of subscribers of a board.
func (b *Broadcaster) Subscribers(boardName string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[boardName])
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(boardName, subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[boardName]
	if !ok {
		return
	}
	ch, exists := subs[subID]
	if !exists {
		return
	}

	delete(subs, subID)
	close(ch)

	if len(subs) == 0 {
		delete(b.subscribers, boardName)
	}

	b.logger.Debug("subscriber removed", "board", boardName, "sub_id", subID)
}

// Close shuts down the broadcaster and closes all subscriber channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for name, subs := range b.subscribers {
		for subID, ch := range subs {
			close(ch)
			delete(subs, subID)
		}
		delete(b.subscribers, name)
	}
	b.closed = true

	b.logger.Debug("broadcaster closed")
}
