package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusCanceled Status = "canceled"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// ProfileInvite invites a profile into an organization as admin or team member
type ProfileInvite struct {
	OrganizationID uuid.UUID            `json:"organizationId"`
	ProfileID      uuid.UUID            `json:"profileId"`
	Role           Role                 `json:"role"`
	Status         Status               `json:"status"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
	Organization   *OrganizationSummary `json:"organization,omitempty"`
	Profile        *ProfileSummary      `json:"profile,omitempty"`
}

// MembershipRequest is a profile asking to join an organization's team
type MembershipRequest struct {
	OrganizationID uuid.UUID            `json:"organizationId"`
	ProfileID      uuid.UUID            `json:"profileId"`
	Status         Status               `json:"status"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
	Organization   *OrganizationSummary `json:"organization,omitempty"`
	Profile        *ProfileSummary      `json:"profile,omitempty"`
}

type NetworkJoinKind string

const (
	NetworkJoinInvite  NetworkJoinKind = "invite"
	NetworkJoinRequest NetworkJoinKind = "request"
)

// NetworkJoin links a network and an organization through an invite or a request
type NetworkJoin struct {
	NetworkID      uuid.UUID            `json:"networkId"`
	OrganizationID uuid.UUID            `json:"organizationId"`
	Kind           NetworkJoinKind      `json:"kind"`
	Status         Status               `json:"status"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
	Network        *OrganizationSummary `json:"network,omitempty"`
	Organization   *OrganizationSummary `json:"organization,omitempty"`
}
