package core

// EventsCollection is the shared collection every user's events live in.
const EventsCollection = "events"

// FavoritesCollection returns the per-user collection holding favorite marks.
// A mark's document id is the favorited event's id, which is what makes the
// toggle operation idempotent per (user, event).
func FavoritesCollection(userID string) string {
	return "users/" + userID + "/favorites"
}

// Event is a shared calendar entry.
//
// Date is an opaque "YYYY-MM-DD" string, validated on write but never
// normalized or parsed into a temporal type afterwards.
type Event struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Date    string `json:"date"`
	OwnerID string `json:"userId"`
}

// Data returns the document payload for an event, using the stored
// field names.
func (e Event) Data() map[string]any {
	return map[string]any{
		"name":   e.Name,
		"date":   e.Date,
		"userId": e.OwnerID,
	}
}

// EventFromDocument decodes an event document. Missing or mistyped fields
// decode to zero values rather than failing; mirrors must stay total.
func EventFromDocument(doc Document) Event {
	e := Event{ID: doc.ID}
	if v, ok := doc.Data["name"].(string); ok {
		e.Name = v
	}
	if v, ok := doc.Data["date"].(string); ok {
		e.Date = v
	}
	if v, ok := doc.Data["userId"].(string); ok {
		e.OwnerID = v
	}
	return e
}

// FavoriteMark records that a user favorited an event. Its existence is the
// whole payload; there is no further state.
type FavoriteMark struct {
	EventID string `json:"eventId"`
	OwnerID string `json:"userId"`
}

// Data returns the document payload for a favorite mark.
func (m FavoriteMark) Data() map[string]any {
	return map[string]any{"eventId": m.EventID}
}

// ProjectedEvent is an Event annotated for the active session. Derived only,
// never persisted.
type ProjectedEvent struct {
	Event
	IsFavorite           bool `json:"isFavorite"`
	IsOwnedByCurrentUser bool `json:"isOwnedByCurrentUser"`

	// Pending marks an optimistically applied creation that the events
	// collection has not confirmed yet.
	Pending bool `json:"pending,omitempty"`
}
