package repository

import (
	"context"
	"errors"
	"time"

	"community-platform-backend/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrConflict  = errors.New("record already exists")
	ErrLastAdmin = errors.New("cannot remove the last admin")
)

// Unique constraints callers tell apart on ErrConflict
const (
	ConstraintProfileUsername = "profiles_username_key"
	ConstraintProfileEmail    = "profiles_email_lower_idx"
)

// ConflictError is an ErrConflict naming the violated unique constraint
type ConflictError struct {
	Constraint string
}

func (e *ConflictError) Error() string {
	return ErrConflict.Error() + ": " + e.Constraint
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ConstraintOf returns the constraint behind a conflict, empty when unknown
func ConstraintOf(err error) string {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict.Constraint
	}
	return ""
}

type ProfileRepository interface {
	Create(ctx context.Context, p *domain.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	GetByUsername(ctx context.Context, username string) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, p *domain.Profile) error
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateImage(ctx context.Context, id uuid.UUID, field domain.ImageField, key string) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Areas
	ListAreas(ctx context.Context, profileID uuid.UUID) ([]domain.Area, error)
	ReplaceAreas(ctx context.Context, profileID uuid.UUID, areaIDs []uuid.UUID) error

	// ListSoleAdministrations returns every organization, event and project
	// in which the profile is the only admin
	ListSoleAdministrations(ctx context.Context, profileID uuid.UUID) ([]domain.EntityRef, error)

	// Score
	ListScoreFlags(ctx context.Context) ([]domain.ProfileScoreFlags, error)
	UpdateScore(ctx context.Context, id uuid.UUID, score int) error
}

type OrganizationRepository interface {
	// Create inserts the organization and makes creatorID its first admin and team member
	Create(ctx context.Context, o *domain.Organization, creatorID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Organization, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter domain.OrganizationFilter) ([]domain.OrganizationSummary, int, error)
	Update(ctx context.Context, o *domain.Organization) error
	UpdateTypes(ctx context.Context, id uuid.UUID, types []string) error
	UpdateImage(ctx context.Context, id uuid.UUID, field domain.ImageField, key string) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Areas
	ListAreas(ctx context.Context, organizationID uuid.UUID) ([]domain.Area, error)
	ReplaceAreas(ctx context.Context, organizationID uuid.UUID, areaIDs []uuid.UUID) error

	// Admins and team
	IsAdmin(ctx context.Context, organizationID, profileID uuid.UUID) (bool, error)
	IsMember(ctx context.Context, organizationID, profileID uuid.UUID) (bool, error)
	ListAdmins(ctx context.Context, organizationID uuid.UUID) ([]domain.ProfileSummary, error)
	ListTeam(ctx context.Context, organizationID uuid.UUID) ([]domain.ProfileSummary, error)
	RemoveAdmin(ctx context.Context, organizationID, profileID uuid.UUID) error
	RemoveMember(ctx context.Context, organizationID, profileID uuid.UUID) error
	ListAdministeredBy(ctx context.Context, profileID uuid.UUID) ([]domain.OrganizationSummary, error)
	ListMemberOf(ctx context.Context, profileID uuid.UUID) ([]domain.OrganizationSummary, error)

	// Score
	ListScoreFlags(ctx context.Context) ([]domain.OrganizationScoreFlags, error)
	UpdateScore(ctx context.Context, id uuid.UUID, score int) error
}

// MembershipRepository stores invites and requests between profiles and organizations
type MembershipRepository interface {
	UpsertInvite(ctx context.Context, invite *domain.ProfileInvite) error
	GetInvite(ctx context.Context, organizationID, profileID uuid.UUID, role domain.Role) (*domain.ProfileInvite, error)
	UpdateInviteStatus(ctx context.Context, organizationID, profileID uuid.UUID, role domain.Role, status domain.Status) error
	// AcceptInvite marks the invite accepted and adds the profile in its role
	AcceptInvite(ctx context.Context, organizationID, profileID uuid.UUID, role domain.Role) error
	ListInvitesForProfile(ctx context.Context, profileID uuid.UUID, status domain.Status) ([]domain.ProfileInvite, error)
	ListInvitesForOrganization(ctx context.Context, organizationID uuid.UUID, status domain.Status) ([]domain.ProfileInvite, error)

	UpsertRequest(ctx context.Context, req *domain.MembershipRequest) error
	GetRequest(ctx context.Context, organizationID, profileID uuid.UUID) (*domain.MembershipRequest, error)
	UpdateRequestStatus(ctx context.Context, organizationID, profileID uuid.UUID, status domain.Status) error
	// AcceptRequest marks the request accepted and adds the profile to the team
	AcceptRequest(ctx context.Context, organizationID, profileID uuid.UUID) error
	ListRequestsForProfile(ctx context.Context, profileID uuid.UUID, status domain.Status) ([]domain.MembershipRequest, error)
	ListRequestsForOrganization(ctx context.Context, organizationID uuid.UUID, status domain.Status) ([]domain.MembershipRequest, error)
}

type NetworkRepository interface {
	UpsertJoin(ctx context.Context, join *domain.NetworkJoin) error
	GetJoin(ctx context.Context, kind domain.NetworkJoinKind, networkID, organizationID uuid.UUID) (*domain.NetworkJoin, error)
	UpdateJoinStatus(ctx context.Context, kind domain.NetworkJoinKind, networkID, organizationID uuid.UUID, status domain.Status) error
	// AcceptJoin marks the invite or request accepted and adds the network member
	AcceptJoin(ctx context.Context, kind domain.NetworkJoinKind, networkID, organizationID uuid.UUID) error
	ListJoinsForNetwork(ctx context.Context, kind domain.NetworkJoinKind, networkID uuid.UUID, status domain.Status) ([]domain.NetworkJoin, error)
	ListJoinsForOrganization(ctx context.Context, kind domain.NetworkJoinKind, organizationID uuid.UUID, status domain.Status) ([]domain.NetworkJoin, error)

	IsMember(ctx context.Context, networkID, organizationID uuid.UUID) (bool, error)
	RemoveMember(ctx context.Context, networkID, organizationID uuid.UUID) error
	ListMembers(ctx context.Context, networkID uuid.UUID) ([]domain.OrganizationSummary, error)
	ListNetworksOf(ctx context.Context, organizationID uuid.UUID) ([]domain.OrganizationSummary, error)
}

type EventRepository interface {
	// Create inserts the event and makes creatorID its first admin and team member
	Create(ctx context.Context, e *domain.Event, creatorID uuid.UUID) error
	GetBySlug(ctx context.Context, slug string) (*domain.Event, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter domain.EventFilter) ([]domain.EventSummary, int, error)
	Update(ctx context.Context, e *domain.Event) error
	SetPublished(ctx context.Context, id uuid.UUID, published bool) error
	SetCanceled(ctx context.Context, id uuid.UUID, canceled bool) error
	UpdateImage(ctx context.Context, id uuid.UUID, field domain.ImageField, key string) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListChildren hides unpublished children unless viewerID administers them
	ListChildren(ctx context.Context, id, viewerID uuid.UUID) ([]domain.EventSummary, error)
	ListForProfile(ctx context.Context, profileID uuid.UUID, from time.Time) ([]domain.EventSummary, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID, from time.Time) ([]domain.EventSummary, error)

	// Relations
	IsAdmin(ctx context.Context, eventID, profileID uuid.UUID) (bool, error)
	ListRelation(ctx context.Context, eventID uuid.UUID, relation domain.Relation) ([]domain.ProfileSummary, error)
	AddRelation(ctx context.Context, eventID uuid.UUID, relation domain.Relation, profileID uuid.UUID) error
	RemoveRelation(ctx context.Context, eventID uuid.UUID, relation domain.Relation, profileID uuid.UUID) error
	ListResponsibleOrganizations(ctx context.Context, eventID uuid.UUID) ([]domain.OrganizationSummary, error)
	AddResponsibleOrganization(ctx context.Context, eventID, organizationID uuid.UUID) error
	RemoveResponsibleOrganization(ctx context.Context, eventID, organizationID uuid.UUID) error

	// Participation
	Participate(ctx context.Context, eventID, profileID uuid.UUID) (domain.ParticipationState, error)
	// Withdraw removes the profile from participants or waiting list and
	// returns the waiting profiles promoted into free seats
	Withdraw(ctx context.Context, eventID, profileID uuid.UUID) ([]domain.ProfileSummary, error)
	// FillFromWaitingList promotes waiting profiles up to the participant limit
	FillFromWaitingList(ctx context.Context, eventID uuid.UUID) ([]domain.ProfileSummary, error)
	GetParticipationState(ctx context.Context, eventID, profileID uuid.UUID) (domain.ParticipationState, error)
	CountParticipants(ctx context.Context, eventID uuid.UUID) (participants int, waiting int, err error)

	// Documents
	AddDocument(ctx context.Context, eventID uuid.UUID, doc *domain.Document) error
	ListDocuments(ctx context.Context, eventID uuid.UUID) ([]domain.Document, error)
	GetDocument(ctx context.Context, eventID, documentID uuid.UUID) (*domain.Document, error)
	DeleteDocument(ctx context.Context, documentID uuid.UUID) error
}

type ProjectRepository interface {
	// Create inserts the project and makes creatorID its first admin and team member
	Create(ctx context.Context, p *domain.Project, creatorID uuid.UUID) error
	GetBySlug(ctx context.Context, slug string) (*domain.Project, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, page domain.Page) ([]domain.ProjectSummary, int, error)
	Update(ctx context.Context, p *domain.Project) error
	UpdateImage(ctx context.Context, id uuid.UUID, field domain.ImageField, key string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListForProfile(ctx context.Context, profileID uuid.UUID) ([]domain.ProjectSummary, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]domain.ProjectSummary, error)

	// Relations
	IsAdmin(ctx context.Context, projectID, profileID uuid.UUID) (bool, error)
	ListRelation(ctx context.Context, projectID uuid.UUID, relation domain.Relation) ([]domain.ProfileSummary, error)
	AddRelation(ctx context.Context, projectID uuid.UUID, relation domain.Relation, profileID uuid.UUID) error
	RemoveRelation(ctx context.Context, projectID uuid.UUID, relation domain.Relation, profileID uuid.UUID) error
	ListResponsibleOrganizations(ctx context.Context, projectID uuid.UUID) ([]domain.OrganizationSummary, error)
	AddResponsibleOrganization(ctx context.Context, projectID, organizationID uuid.UUID) error
	RemoveResponsibleOrganization(ctx context.Context, projectID, organizationID uuid.UUID) error

	// Awards
	CreateAward(ctx context.Context, a *domain.Award) error
	AddAward(ctx context.Context, projectID, awardID uuid.UUID) error
	ListAwards(ctx context.Context, projectID uuid.UUID) ([]domain.Award, error)
}

// RegionPlan is the reconciliation of imported states and districts
type RegionPlan struct {
	StateInserts    []domain.State
	StateUpdates    []domain.State
	StateDeletes    []domain.State
	DistrictInserts []domain.District
	DistrictUpdates []domain.District
	DistrictDeletes []domain.District
}

type AreaRepository interface {
	ListAreas(ctx context.Context) ([]domain.Area, error)
	CountExisting(ctx context.Context, ids []uuid.UUID) (int, error)
	ListStates(ctx context.Context) ([]domain.State, error)
	ListDistricts(ctx context.Context) ([]domain.District, error)
	// ApplyRegionPlan writes the plan and keeps state and district areas in sync
	ApplyRegionPlan(ctx context.Context, plan RegionPlan) error
}

type ReportRepository interface {
	Create(ctx context.Context, r *domain.AbuseReport) error
	ExistsOpen(ctx context.Context, reporterID uuid.UUID, entityType domain.ReportEntityType, entityID uuid.UUID) (bool, error)
	ListByStatus(ctx context.Context, status domain.ReportStatus) ([]domain.AbuseReport, error)
	CountByStatus(ctx context.Context, status domain.ReportStatus) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) error
}
