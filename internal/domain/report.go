package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReportEntityType string

const (
	ReportEntityProfile      ReportEntityType = "profile"
	ReportEntityOrganization ReportEntityType = "organization"
	ReportEntityEvent        ReportEntityType = "event"
	ReportEntityProject      ReportEntityType = "project"
)

func (t ReportEntityType) Valid() bool {
	switch t {
	case ReportEntityProfile, ReportEntityOrganization, ReportEntityEvent, ReportEntityProject:
		return true
	}
	return false
}

type ReportStatus string

const (
	ReportStatusOpen   ReportStatus = "open"
	ReportStatusClosed ReportStatus = "closed"
)

var ReportReasons = []string{
	"spam",
	"hate_speech",
	"harassment",
	"misinformation",
	"illegal_content",
	"copyright",
	"impersonation",
	"other",
}

type AbuseReport struct {
	ID         uuid.UUID        `json:"id"`
	ReporterID uuid.UUID        `json:"reporterId"`
	EntityType ReportEntityType `json:"entityType"`
	EntityID   uuid.UUID        `json:"entityId"`
	EntitySlug string           `json:"entitySlug"`
	Reasons    []string         `json:"reasons"`
	Reason     string           `json:"reason,omitempty"`
	Status     ReportStatus     `json:"status"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}
