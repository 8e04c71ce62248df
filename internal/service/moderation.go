package service

import (
	"github.com/noah-isme/elan-api/internal/models"
	appErrors "github.com/noah-isme/elan-api/pkg/errors"
)

// ListingEvent is an input to the moderation state machine.
type ListingEvent string

const (
	EventCreate  ListingEvent = "create"
	EventApprove ListingEvent = "approve"
	EventReject  ListingEvent = "reject"
	EventEdit    ListingEvent = "edit"
	EventDelete  ListingEvent = "delete"
)

// transitionTable lists, per event, the legal source states and where they lead.
// Create has no source state and is handled separately.
var transitionTable = map[ListingEvent]map[models.ListingStatus]models.ListingStatus{
	EventApprove: {
		models.StatusPending:  models.StatusApproved,
		models.StatusApproved: models.StatusApproved,
	},
	EventReject: {
		models.StatusPending:  models.StatusRejected,
		models.StatusRejected: models.StatusRejected,
	},
	EventEdit: {
		models.StatusPending:  models.StatusPending,
		models.StatusApproved: models.StatusApproved,
	},
	EventDelete: {
		models.StatusPending:  models.StatusPending,
		models.StatusApproved: models.StatusApproved,
		models.StatusRejected: models.StatusRejected,
	},
}

// InitialStatus is the state every new listing starts in.
func InitialStatus() models.ListingStatus {
	return models.StatusPending
}

// Transition resolves (from, event). noop is true when the event is legal but leaves the
// status unchanged.
func Transition(from models.ListingStatus, event ListingEvent) (to models.ListingStatus, noop bool, err error) {
	targets, ok := transitionTable[event]
	if !ok {
		return "", false, appErrors.Clone(appErrors.ErrInvalidTransition, "unknown event "+string(event))
	}
	to, ok = targets[from]
	if !ok {
		return "", false, appErrors.Clone(appErrors.ErrInvalidTransition, "cannot "+string(event)+" a "+string(from)+" listing")
	}
	return to, to == from, nil
}

// changingSources returns the states from which event actually moves the listing elsewhere.
// They become the guard of the conditional status update.
func changingSources(event ListingEvent) []models.ListingStatus {
	var sources []models.ListingStatus
	for _, from := range []models.ListingStatus{models.StatusPending, models.StatusApproved, models.StatusRejected} {
		if to, ok := transitionTable[event][from]; ok && to != from {
			sources = append(sources, from)
		}
	}
	return sources
}

// requiresAdmin reports whether only an administrator may fire the event.
func requiresAdmin(event ListingEvent) bool {
	return event == EventApprove || event == EventReject
}

// authorize applies the actor guard of an event against a stored listing. A caller without
// an identity gets UNAUTHORIZED (401). A signed-in caller lacking the capability, such as a
// member approving or rejecting, gets FORBIDDEN (403).
func authorize(actor models.Actor, event ListingEvent, listing *models.Listing) error {
	if !actor.Authenticated() {
		return appErrors.ErrUnauthorized
	}
	switch {
	case requiresAdmin(event):
		if !actor.Admin {
			return appErrors.Clone(appErrors.ErrForbidden, "admin capability required")
		}
	case event == EventCreate:
		return nil
	default:
		if !actor.Admin && !actor.Owns(listing) {
			return appErrors.Clone(appErrors.ErrForbidden, "only the owner or an admin may "+string(event)+" this listing")
		}
	}
	return nil
}
