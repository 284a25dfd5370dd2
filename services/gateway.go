package services

import (
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/lborres/tipon/core"
)

var dateShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateEventDate checks the two-step rule the organizer has always used:
// the string must have the exact YYYY-MM-DD shape AND name a real calendar
// date. "2024-2-3" fails the first check, "2024-02-30" the second.
func ValidateEventDate(date string) error {
	if date == "" {
		return core.ErrEventDateRequired
	}
	if !dateShape.MatchString(date) {
		return core.ErrInvalidEventDate
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return core.ErrInvalidEventDate
	}
	return nil
}

func validateEventInput(name, date string) error {
	if name == "" {
		return core.ErrEventNameRequired
	}
	return ValidateEventDate(date)
}

// Gateway is the only component that writes to the document store. Every
// operation validates before any write is attempted; the mirrors pick up the
// resulting change notification, so the gateway never touches mirror state.
type Gateway struct {
	store core.DocumentStore
	log   zerolog.Logger
}

// Ensure Gateway satisfies the port HTTP adapters consume
var _ core.EventService = (*Gateway)(nil)

func NewGateway(store core.DocumentStore, log zerolog.Logger) *Gateway {
	return &Gateway{store: store, log: log}
}

// CreateEvent validates and writes a new event owned by ownerUserID,
// returning the assigned id. It does not wait for the mirror to reflect the
// write; callers either watch the next snapshot or apply the record
// optimistically as a pending entry.
func (g *Gateway) CreateEvent(name, date, ownerUserID string) (string, error) {
	if ownerUserID == "" {
		return "", core.ErrNoActiveSession
	}
	if err := validateEventInput(name, date); err != nil {
		return "", err
	}

	ev := core.Event{Name: name, Date: date, OwnerID: ownerUserID}
	id, err := g.store.CreateDocument(core.EventsCollection, ev.Data())
	if err != nil {
		g.log.Error().Err(err).Msg("create event write failed")
		return "", fmt.Errorf("failed to create event: %w", err)
	}
	return id, nil
}

// UpdateEvent validates and rewrites an event's name and date. Ownership is
// not verified here; hiding edit controls is left to the presentation layer,
// matching the original access model.
func (g *Gateway) UpdateEvent(id, name, date string) error {
	if err := validateEventInput(name, date); err != nil {
		return err
	}

	err := g.store.UpdateDocument(core.EventsCollection, id, map[string]any{
		"name": name,
		"date": date,
	})
	if err == core.ErrDocumentNotFound {
		return core.ErrEventNotFound
	}
	if err != nil {
		g.log.Error().Err(err).Str("eventId", id).Msg("update event write failed")
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event. Idempotent: deleting an id that no longer
// exists is a success, matching backend delete semantics. The event's
// favorite marks are not cascaded; the projector drops dangling marks.
func (g *Gateway) DeleteEvent(id string) error {
	err := g.store.DeleteDocument(core.EventsCollection, id)
	if err == core.ErrDocumentNotFound {
		return nil
	}
	if err != nil {
		g.log.Error().Err(err).Str("eventId", id).Msg("delete event write failed")
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// ToggleFavorite flips the existence of the user's favorite mark for an
// event and reports the new state. Rapid toggles resolve last-write-wins on
// the mark's existence; no transaction is needed because existence is the
// mark's only state.
func (g *Gateway) ToggleFavorite(eventID, userID string) (bool, error) {
	if userID == "" {
		return false, core.ErrNoActiveSession
	}

	path := core.FavoritesCollection(userID)

	_, err := g.store.GetDocument(path, eventID)
	switch err {
	case nil:
		if err := g.store.DeleteDocument(path, eventID); err != nil {
			g.log.Error().Err(err).Str("eventId", eventID).Msg("unfavorite write failed")
			return false, fmt.Errorf("failed to remove favorite: %w", err)
		}
		return false, nil
	case core.ErrDocumentNotFound:
		mark := core.FavoriteMark{EventID: eventID, OwnerID: userID}
		if err := g.store.SetDocument(path, eventID, mark.Data()); err != nil {
			g.log.Error().Err(err).Str("eventId", eventID).Msg("favorite write failed")
			return false, fmt.Errorf("failed to add favorite: %w", err)
		}
		return true, nil
	default:
		g.log.Error().Err(err).Str("eventId", eventID).Msg("favorite lookup failed")
		return false, fmt.Errorf("failed to read favorite: %w", err)
	}
}

// ListEvents computes the projection for one user from a one-shot read of
// both collections. HTTP adapters use this; embedded callers read the live
// projection off the Lifecycle instead.
func (g *Gateway) ListEvents(userID string) ([]core.ProjectedEvent, error) {
	if userID == "" {
		return nil, core.ErrNoActiveSession
	}

	eventDocs, err := g.store.GetCollection(core.EventsCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	favoriteDocs, err := g.store.GetCollection(core.FavoritesCollection(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	events := make([]core.Event, 0, len(eventDocs))
	for _, doc := range eventDocs {
		events = append(events, core.EventFromDocument(doc))
	}
	favorites := make(map[string]bool, len(favoriteDocs))
	for _, doc := range favoriteDocs {
		favorites[doc.ID] = true
	}

	return Project(events, favorites, userID), nil
}
