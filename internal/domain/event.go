package domain

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID                 uuid.UUID  `json:"id"`
	Slug               string     `json:"slug"`
	Name               string     `json:"name"`
	Subline            string     `json:"subline,omitempty"`
	Description        string     `json:"description,omitempty"`
	StartTime          time.Time  `json:"startTime"`
	EndTime            time.Time  `json:"endTime"`
	ParticipationUntil *time.Time `json:"participationUntil,omitempty"`
	ParticipantLimit   int        `json:"participantLimit"` // 0 means unlimited
	VenueName          string     `json:"venueName,omitempty"`
	VenueStreet        string     `json:"venueStreet,omitempty"`
	VenueStreetNumber  string     `json:"venueStreetNumber,omitempty"`
	VenueZipCode       string     `json:"venueZipCode,omitempty"`
	VenueCity          string     `json:"venueCity,omitempty"`
	Published          bool       `json:"published"`
	Canceled           bool       `json:"canceled"`
	ParentEventID      *uuid.UUID `json:"parentEventId,omitempty"`
	Background         string     `json:"background,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// ParticipationOpen reports whether profiles may still sign up at now
func (e *Event) ParticipationOpen(now time.Time) bool {
	if !e.Published || e.Canceled {
		return false
	}
	deadline := e.EndTime
	if e.ParticipationUntil != nil {
		deadline = *e.ParticipationUntil
	}
	return now.Before(deadline)
}

func (e *Event) Summary() EventSummary {
	return EventSummary{
		ID:         e.ID,
		Slug:       e.Slug,
		Name:       e.Name,
		Subline:    e.Subline,
		StartTime:  e.StartTime,
		EndTime:    e.EndTime,
		Background: e.Background,
		Published:  e.Published,
		Canceled:   e.Canceled,
	}
}

type EventSummary struct {
	ID         uuid.UUID `json:"id"`
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
	Subline    string    `json:"subline,omitempty"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Background string    `json:"background,omitempty"`
	Published  bool      `json:"published"`
	Canceled   bool      `json:"canceled"`
}

type EventFilter struct {
	From time.Time
	// ViewerID additionally lists unpublished events the viewer administers
	ViewerID *uuid.UUID
	Page     Page
}

type ParticipationState string

const (
	ParticipationNone        ParticipationState = "none"
	ParticipationParticipant ParticipationState = "participant"
	ParticipationWaiting     ParticipationState = "waiting"
)

// Relation names a profile list attached to an event or project
type Relation string

const (
	RelationAdmins   Relation = "admins"
	RelationTeam     Relation = "team"
	RelationSpeakers Relation = "speakers"
)

type Document struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	Key         string    `json:"-"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	MimeType    string    `json:"mimeType"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
