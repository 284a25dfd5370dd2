package services

import (
	"github.com/lborres/tipon/core"
)

// Project joins an event snapshot with a favorite-id set for one user. It is
// a pure function of its inputs and is total: it never fails, and no session
// yields an empty projection.
//
// Events keep provider-delivered order; no re-sorting is imposed. Favorite
// ids that reference no event in the snapshot (dangling marks left behind by
// a deleted event) are dropped silently - they never surface as phantom
// entries.
func Project(events []core.Event, favorites map[string]bool, userID string) []core.ProjectedEvent {
	if userID == "" {
		return nil
	}

	out := make([]core.ProjectedEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, core.ProjectedEvent{
			Event:                ev,
			IsFavorite:           favorites[ev.ID],
			IsOwnedByCurrentUser: ev.OwnerID == userID,
		})
	}
	return out
}

// ProjectWithPending overlays optimistically created events on top of the
// confirmed snapshot. A pending entry whose id already appears in the
// snapshot has been confirmed and is skipped; the caller reconciles its
// pending list separately.
func ProjectWithPending(events, pending []core.Event, favorites map[string]bool, userID string) []core.ProjectedEvent {
	out := Project(events, favorites, userID)
	if userID == "" || len(pending) == 0 {
		return out
	}

	confirmed := make(map[string]bool, len(events))
	for _, ev := range events {
		confirmed[ev.ID] = true
	}

	for _, ev := range pending {
		if confirmed[ev.ID] {
			continue
		}
		out = append(out, core.ProjectedEvent{
			Event:                ev,
			IsFavorite:           favorites[ev.ID],
			IsOwnedByCurrentUser: ev.OwnerID == userID,
			Pending:              true,
		})
	}
	return out
}
