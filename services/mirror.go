package services

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/lborres/tipon/core"
)

// EventMirror keeps an in-memory copy of the shared events collection, kept
// current by a live subscription. Each backend notification replaces the
// whole snapshot; the store delivers complete document sets, so no merge
// happens here.
//
// Every mirror is owned by exactly one session generation. Close is the
// deterministic cancellation paired with the subscription: after Close, an
// in-flight notification is a no-op.
type EventMirror struct {
	mu       sync.Mutex
	events   []core.Event
	closed   bool
	frozen   bool
	cancel   core.Unsubscribe
	onChange func()
	log      zerolog.Logger
}

// NewEventMirror subscribes to the events collection. onChange fires after
// every applied snapshot; it must not call back into the mirror's Close.
func NewEventMirror(store core.DocumentStore, onChange func(), log zerolog.Logger) (*EventMirror, error) {
	m := &EventMirror{onChange: onChange, log: log}

	cancel, err := store.SubscribeCollection(core.EventsCollection, m.apply, m.fail)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cancel = cancel
	closed := m.closed
	m.mu.Unlock()

	// Close raced the subscription; pair it with its cancellation anyway
	if closed {
		cancel()
	}
	return m, nil
}

func (m *EventMirror) apply(docs []core.Document) {
	m.mu.Lock()
	if m.closed || m.frozen {
		m.mu.Unlock()
		return
	}
	events := make([]core.Event, 0, len(docs))
	for _, doc := range docs {
		events = append(events, core.EventFromDocument(doc))
	}
	m.events = events
	onChange := m.onChange
	m.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

// fail freezes the mirror at its last snapshot. Degraded but alive: the
// projector keeps working off stale data instead of crashing.
func (m *EventMirror) fail(err error) {
	m.mu.Lock()
	m.frozen = true
	m.mu.Unlock()
	m.log.Error().Err(err).Str("collection", core.EventsCollection).Msg("event subscription terminated, mirror frozen")
}

// Snapshot returns the current event list in provider-delivered order.
func (m *EventMirror) Snapshot() []core.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Event, len(m.events))
	copy(out, m.events)
	return out
}

// Frozen reports whether the subscription died and the mirror holds a
// stale snapshot.
func (m *EventMirror) Frozen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frozen
}

// Close cancels the subscription and drops any notification that is still
// in flight.
func (m *EventMirror) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// FavoriteMirror keeps the set of event ids the owning user has favorited,
// scoped to that user's favorites collection. Same ownership and teardown
// contract as EventMirror.
type FavoriteMirror struct {
	mu       sync.Mutex
	ids      map[string]bool
	closed   bool
	frozen   bool
	cancel   core.Unsubscribe
	onChange func()
	log      zerolog.Logger
}

func NewFavoriteMirror(store core.DocumentStore, userID string, onChange func(), log zerolog.Logger) (*FavoriteMirror, error) {
	m := &FavoriteMirror{ids: make(map[string]bool), onChange: onChange, log: log}

	path := core.FavoritesCollection(userID)
	cancel, err := store.SubscribeCollection(path, m.apply, func(err error) {
		m.mu.Lock()
		m.frozen = true
		m.mu.Unlock()
		log.Error().Err(err).Str("collection", path).Msg("favorites subscription terminated, mirror frozen")
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cancel = cancel
	closed := m.closed
	m.mu.Unlock()

	if closed {
		cancel()
	}
	return m, nil
}

func (m *FavoriteMirror) apply(docs []core.Document) {
	m.mu.Lock()
	if m.closed || m.frozen {
		m.mu.Unlock()
		return
	}
	ids := make(map[string]bool, len(docs))
	for _, doc := range docs {
		// The mark's document id is the favorited event's id
		ids[doc.ID] = true
	}
	m.ids = ids
	onChange := m.onChange
	m.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

// IDs returns the favorited event ids.
func (m *FavoriteMirror) IDs() map[string]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool, len(m.ids))
	for id := range m.ids {
		out[id] = true
	}
	return out
}

func (m *FavoriteMirror) Frozen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frozen
}

func (m *FavoriteMirror) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
