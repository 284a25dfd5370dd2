package services

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/lborres/tipon/core"
)

// Lifecycle tracks the current session and owns everything scoped to it: the
// event mirror, the favorites mirror, the pending-creation overlay and the
// projection computed from them. Session transitions from the identity
// provider tear the previous generation down before the next one starts, so
// a stale subscription can never mutate state that outlived it.
type Lifecycle struct {
	store core.DocumentStore
	log   zerolog.Logger

	mu            sync.Mutex
	userID        string
	generation    uint64
	events        *EventMirror
	favorites     *FavoriteMirror
	pending       []core.Event
	projection    []core.ProjectedEvent
	nextID        int
	listeners     map[int]func([]core.ProjectedEvent)
	unsubIdentity core.Unsubscribe
	closed        bool
}

// NewLifecycle binds to the identity provider's session notifications. Until
// the first notification there is no session and the projection is empty.
func NewLifecycle(store core.DocumentStore, identity core.IdentityProvider, log zerolog.Logger) *Lifecycle {
	l := &Lifecycle{
		store:     store,
		log:       log,
		listeners: make(map[int]func([]core.ProjectedEvent)),
	}
	l.unsubIdentity = identity.OnSessionChange(l.handleSessionChange)
	return l
}

// UserID returns the active session's user id, or "" when signed out.
func (l *Lifecycle) UserID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.userID
}

// Projection returns the latest computed projection.
func (l *Lifecycle) Projection() []core.ProjectedEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.ProjectedEvent, len(l.projection))
	copy(out, l.projection)
	return out
}

// OnProjectionChange registers a listener invoked with each recomputed
// projection. The returned Unsubscribe stops further calls.
func (l *Lifecycle) OnProjectionChange(fn func([]core.ProjectedEvent)) core.Unsubscribe {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.listeners, id)
		l.mu.Unlock()
	}
}

// AddPending records an optimistically applied creation. The entry shows up
// in the projection marked Pending until the events snapshot confirms its id,
// at which point it is discarded.
func (l *Lifecycle) AddPending(ev core.Event) {
	l.mu.Lock()
	if l.closed || l.userID == "" || l.userID != ev.OwnerID {
		l.mu.Unlock()
		return
	}
	l.pending = append(l.pending, ev)
	gen := l.generation
	l.mu.Unlock()

	l.recompute(gen)
}

// DropPending discards a pending entry whose write failed.
func (l *Lifecycle) DropPending(id string) {
	l.mu.Lock()
	kept := l.pending[:0]
	for _, ev := range l.pending {
		if ev.ID != id {
			kept = append(kept, ev)
		}
	}
	l.pending = kept
	gen := l.generation
	l.mu.Unlock()

	l.recompute(gen)
}

// handleSessionChange replaces the session atomically: the previous
// generation's subscriptions are cancelled first, then fresh mirrors are
// created for the new user. An empty userID means signed out; the projection
// clears and no subscriptions exist until the next sign-in.
func (l *Lifecycle) handleSessionChange(userID string) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}

	oldEvents, oldFavorites := l.events, l.favorites
	l.events, l.favorites = nil, nil
	l.pending = nil
	l.userID = userID
	l.generation++
	gen := l.generation
	l.mu.Unlock()

	if oldEvents != nil {
		oldEvents.Close()
	}
	if oldFavorites != nil {
		oldFavorites.Close()
	}

	if userID == "" {
		l.recompute(gen)
		return
	}

	onChange := func() { l.recompute(gen) }

	events, err := NewEventMirror(l.store, onChange, l.log)
	if err != nil {
		l.log.Error().Err(err).Msg("event mirror subscription failed")
	}
	favorites, err := NewFavoriteMirror(l.store, userID, onChange, l.log)
	if err != nil {
		l.log.Error().Err(err).Str("userId", userID).Msg("favorites mirror subscription failed")
	}

	l.mu.Lock()
	if l.generation != gen || l.closed {
		// Another transition won the race; these mirrors belong to a
		// generation that no longer exists
		l.mu.Unlock()
		if events != nil {
			events.Close()
		}
		if favorites != nil {
			favorites.Close()
		}
		return
	}
	l.events = events
	l.favorites = favorites
	l.mu.Unlock()

	l.recompute(gen)
}

// recompute rebuilds the projection from whatever the latest snapshot of
// each mirror is. The two mirrors advance independently; there is no barrier
// forcing them to agree, and recomputation is total.
func (l *Lifecycle) recompute(gen uint64) {
	l.mu.Lock()
	if l.generation != gen || l.closed {
		l.mu.Unlock()
		return
	}

	var events []core.Event
	if l.events != nil {
		events = l.events.Snapshot()
	}
	favorites := map[string]bool{}
	if l.favorites != nil {
		favorites = l.favorites.IDs()
	}

	// Confirmed ids retire their pending entries
	if len(l.pending) > 0 {
		confirmed := make(map[string]bool, len(events))
		for _, ev := range events {
			confirmed[ev.ID] = true
		}
		kept := l.pending[:0]
		for _, ev := range l.pending {
			if !confirmed[ev.ID] {
				kept = append(kept, ev)
			}
		}
		l.pending = kept
	}

	l.projection = ProjectWithPending(events, l.pending, favorites, l.userID)

	out := make([]core.ProjectedEvent, len(l.projection))
	copy(out, l.projection)
	fns := make([]func([]core.ProjectedEvent), 0, len(l.listeners))
	for _, fn := range l.listeners {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(out)
	}
}

// Close detaches from the identity provider and cancels any live
// subscriptions. The lifecycle delivers nothing after Close returns.
func (l *Lifecycle) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	events, favorites := l.events, l.favorites
	l.events, l.favorites = nil, nil
	unsub := l.unsubIdentity
	l.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if events != nil {
		events.Close()
	}
	if favorites != nil {
		favorites.Close()
	}
}
