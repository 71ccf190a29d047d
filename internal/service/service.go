package service

import (
	"context"
	"io"
	"time"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/regions"
	"community-platform-backend/internal/repository"

	"github.com/google/uuid"
)

// Actor ids are uuid.Nil for anonymous visitors.

// Repositories bundles the storage dependencies of the services
type Repositories struct {
	Profiles      repository.ProfileRepository
	Organizations repository.OrganizationRepository
	Memberships   repository.MembershipRepository
	Networks      repository.NetworkRepository
	Events        repository.EventRepository
	Projects      repository.ProjectRepository
	Areas         repository.AreaRepository
	Reports       repository.ReportRepository
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Profile, error)
	Login(ctx context.Context, email, password string) (*domain.Profile, error)
	// IsPlatformAdmin reports whether the profile may moderate the platform
	IsPlatformAdmin(ctx context.Context, profileID uuid.UUID) (bool, error)
}

type ProfileService interface {
	GetProfile(ctx context.Context, viewerID uuid.UUID, username string) (*ProfileDetail, error)
	UpdateGeneral(ctx context.Context, actorID uuid.UUID, username string, input ProfileGeneralInput) error
	ChangeEmail(ctx context.Context, actorID uuid.UUID, username, email, password string) error
	ChangePassword(ctx context.Context, actorID uuid.UUID, username, current, next string) error
	UploadImage(ctx context.Context, actorID uuid.UUID, username string, field domain.ImageField, file FileInput) error
	RemoveImage(ctx context.Context, actorID uuid.UUID, username string, field domain.ImageField) error
	DeleteAccount(ctx context.Context, actorID uuid.UUID, username, password string) error
}

type OrganizationService interface {
	ListOrganizations(ctx context.Context, filter domain.OrganizationFilter) (*OrganizationList, error)
	GetOrganization(ctx context.Context, viewerID uuid.UUID, slug string) (*OrganizationDetail, error)
	CreateOrganization(ctx context.Context, actorID uuid.UUID, name string) (*domain.Organization, error)
	UpdateGeneral(ctx context.Context, actorID uuid.UUID, slug string, input OrganizationGeneralInput) error
	UploadImage(ctx context.Context, actorID uuid.UUID, slug string, field domain.ImageField, file FileInput) error
	RemoveImage(ctx context.Context, actorID uuid.UUID, slug string, field domain.ImageField) error
	DeleteOrganization(ctx context.Context, actorID uuid.UUID, slug string) error

	// Admins and team
	GetTeamSettings(ctx context.Context, actorID uuid.UUID, slug string) (*TeamSettings, error)
	InviteProfile(ctx context.Context, actorID uuid.UUID, slug string, profileID uuid.UUID, role domain.Role) error
	CancelInvite(ctx context.Context, actorID uuid.UUID, slug string, profileID uuid.UUID, role domain.Role) error
	RemoveAdmin(ctx context.Context, actorID uuid.UUID, slug string, profileID uuid.UUID) error
	RemoveMember(ctx context.Context, actorID uuid.UUID, slug string, profileID uuid.UUID) error

	// Invites and requests seen from the profile side
	ListMyInvitations(ctx context.Context, profileID uuid.UUID) (*MyInvitations, error)
	AcceptInvite(ctx context.Context, profileID, organizationID uuid.UUID, role domain.Role) error
	RejectInvite(ctx context.Context, profileID, organizationID uuid.UUID, role domain.Role) error
	RequestMembership(ctx context.Context, profileID uuid.UUID, slug string) error
	CancelRequest(ctx context.Context, profileID, organizationID uuid.UUID) error
	AcceptRequest(ctx context.Context, actorID uuid.UUID, slug string, profileID uuid.UUID) error
	RejectRequest(ctx context.Context, actorID uuid.UUID, slug string, profileID uuid.UUID) error
}

type NetworkService interface {
	GetOverview(ctx context.Context, actorID uuid.UUID, slug string) (*NetworkOverview, error)
	// Network side
	InviteOrganization(ctx context.Context, actorID uuid.UUID, networkSlug string, organizationID uuid.UUID) error
	CancelInvite(ctx context.Context, actorID uuid.UUID, networkSlug string, organizationID uuid.UUID) error
	AcceptRequest(ctx context.Context, actorID uuid.UUID, networkSlug string, organizationID uuid.UUID) error
	RejectRequest(ctx context.Context, actorID uuid.UUID, networkSlug string, organizationID uuid.UUID) error
	RemoveMember(ctx context.Context, actorID uuid.UUID, networkSlug string, organizationID uuid.UUID) error
	// Organization side
	RequestToJoin(ctx context.Context, actorID uuid.UUID, organizationSlug string, networkID uuid.UUID) error
	CancelRequest(ctx context.Context, actorID uuid.UUID, organizationSlug string, networkID uuid.UUID) error
	AcceptInvite(ctx context.Context, actorID uuid.UUID, organizationSlug string, networkID uuid.UUID) error
	RejectInvite(ctx context.Context, actorID uuid.UUID, organizationSlug string, networkID uuid.UUID) error
	Leave(ctx context.Context, actorID uuid.UUID, organizationSlug string, networkID uuid.UUID) error
}

type EventService interface {
	ListEvents(ctx context.Context, viewerID uuid.UUID, page domain.Page) (*EventList, error)
	GetEvent(ctx context.Context, viewerID uuid.UUID, slug string) (*EventDetail, error)
	CreateEvent(ctx context.Context, actorID uuid.UUID, input EventCreateInput) (*domain.Event, error)
	UpdateGeneral(ctx context.Context, actorID uuid.UUID, slug string, input EventGeneralInput) error
	SetPublished(ctx context.Context, actorID uuid.UUID, slug string, published bool) error
	Cancel(ctx context.Context, actorID uuid.UUID, slug string) error
	DeleteEvent(ctx context.Context, actorID uuid.UUID, slug string) error
	UploadImage(ctx context.Context, actorID uuid.UUID, slug string, file FileInput) error
	RemoveImage(ctx context.Context, actorID uuid.UUID, slug string) error

	AddRelation(ctx context.Context, actorID uuid.UUID, slug string, relation domain.Relation, profileID uuid.UUID) error
	RemoveRelation(ctx context.Context, actorID uuid.UUID, slug string, relation domain.Relation, profileID uuid.UUID) error
	AddOrganization(ctx context.Context, actorID uuid.UUID, slug string, organizationID uuid.UUID) error
	RemoveOrganization(ctx context.Context, actorID uuid.UUID, slug string, organizationID uuid.UUID) error

	UploadDocument(ctx context.Context, actorID uuid.UUID, slug string, input DocumentInput) (*domain.Document, error)
	DeleteDocument(ctx context.Context, actorID uuid.UUID, slug string, documentID uuid.UUID) error
	DocumentURL(ctx context.Context, viewerID uuid.UUID, slug string, documentID uuid.UUID) (string, error)

	Participate(ctx context.Context, profileID uuid.UUID, slug string) (domain.ParticipationState, error)
	Withdraw(ctx context.Context, profileID uuid.UUID, slug string) error
}

type ProjectService interface {
	ListProjects(ctx context.Context, page domain.Page) (*ProjectList, error)
	GetProject(ctx context.Context, viewerID uuid.UUID, slug string) (*ProjectDetail, error)
	CreateProject(ctx context.Context, actorID uuid.UUID, name string) (*domain.Project, error)
	UpdateGeneral(ctx context.Context, actorID uuid.UUID, slug string, input ProjectGeneralInput) error
	UploadImage(ctx context.Context, actorID uuid.UUID, slug string, field domain.ImageField, file FileInput) error
	RemoveImage(ctx context.Context, actorID uuid.UUID, slug string, field domain.ImageField) error
	DeleteProject(ctx context.Context, actorID uuid.UUID, slug string) error
	AddRelation(ctx context.Context, actorID uuid.UUID, slug string, relation domain.Relation, profileID uuid.UUID) error
	RemoveRelation(ctx context.Context, actorID uuid.UUID, slug string, relation domain.Relation, profileID uuid.UUID) error
	AddOrganization(ctx context.Context, actorID uuid.UUID, slug string, organizationID uuid.UUID) error
	RemoveOrganization(ctx context.Context, actorID uuid.UUID, slug string, organizationID uuid.UUID) error
}

type ReportService interface {
	Report(ctx context.Context, reporterID uuid.UUID, input ReportInput) (*domain.AbuseReport, error)
	ListOpen(ctx context.Context, actorID uuid.UUID) ([]domain.AbuseReport, error)
	Close(ctx context.Context, actorID, reportID uuid.UUID) error
	SendDigest(ctx context.Context) (int, error)
}

type ScoreService interface {
	RecalculateAll(ctx context.Context) (*ScoreResult, error)
}

type RegionService interface {
	ListAreas(ctx context.Context) ([]domain.Area, error)
	// Import reconciles the stored states and districts with ds. With
	// dryRun set the plan is returned without writing it.
	Import(ctx context.Context, ds *regions.Dataset, dryRun bool) (*repository.RegionPlan, error)
}

type EmailService interface {
	SendWelcome(ctx context.Context, p *domain.Profile) error
	SendOrganizationInvite(ctx context.Context, invitee *domain.Profile, inviterName string, org *domain.Organization, role domain.Role) error
	SendMembershipRequest(ctx context.Context, admins []domain.ProfileSummary, requester *domain.Profile, org *domain.Organization) error
	SendNetworkInvite(ctx context.Context, admins []domain.ProfileSummary, network, org *domain.Organization) error
	SendNetworkRequest(ctx context.Context, admins []domain.ProfileSummary, network, org *domain.Organization) error
	SendWaitingListPromotion(ctx context.Context, p *domain.ProfileSummary, e *domain.Event) error
	SendAbuseReport(ctx context.Context, reporter *domain.Profile, report *domain.AbuseReport, entity domain.EntityRef) error
	SendEmailChanged(ctx context.Context, p *domain.Profile, oldEmail string) error
	SendReportDigest(ctx context.Context, openCount int) error
}

// FileInput is an uploaded file as received from a multipart form
type FileInput struct {
	Filename string
	Body     io.Reader
	Size     int64
}

type RegisterInput struct {
	FirstName     string
	LastName      string
	Email         string
	Password      string
	TermsAccepted bool
}

type ProfileGeneralInput struct {
	FirstName     string
	LastName      string
	AcademicTitle string
	Position      string
	Bio           string
	Phone         string
	Website       string
	PublicFields  []string
	AreaIDs       []uuid.UUID
}

type OrganizationGeneralInput struct {
	Name           string
	Email          string
	Phone          string
	Website        string
	Street         string
	StreetNumber   string
	ZipCode        string
	City           string
	Bio            string
	SupportMessage string
	Types          []string
	PublicFields   []string
	AreaIDs        []uuid.UUID
}

type EventCreateInput struct {
	Name       string
	StartTime  time.Time
	EndTime    time.Time
	ParentSlug string
}

type EventGeneralInput struct {
	Name               string
	Subline            string
	Description        string
	StartTime          time.Time
	EndTime            time.Time
	ParticipationUntil *time.Time
	ParticipantLimit   int
	VenueName          string
	VenueStreet        string
	VenueStreetNumber  string
	VenueZipCode       string
	VenueCity          string
}

type DocumentInput struct {
	FileInput
	Title       string
	Description string
}

type ProjectGeneralInput struct {
	Name        string
	Headline    string
	Excerpt     string
	Description string
	Website     string
	Published   bool
}

type ReportInput struct {
	EntityType domain.ReportEntityType
	Slug       string
	Reasons    []string
	Reason     string
}

type ProfileDetail struct {
	Profile       *domain.Profile              `json:"profile"`
	AvatarURL     string                       `json:"avatarUrl,omitempty"`
	BackgroundURL string                       `json:"backgroundUrl,omitempty"`
	Areas         []domain.Area                `json:"areas"`
	Administers   []domain.OrganizationSummary `json:"administeredOrganizations"`
	MemberOf      []domain.OrganizationSummary `json:"organizations"`
	Events        []domain.EventSummary        `json:"events"`
	Projects      []domain.ProjectSummary      `json:"projects"`
	IsOwner       bool                         `json:"isOwner"`
}

type OrganizationList struct {
	Items []domain.OrganizationSummary `json:"items"`
	Total int                          `json:"total"`
	Page  domain.Page                  `json:"-"`
}

type OrganizationDetail struct {
	Organization   *domain.Organization         `json:"organization"`
	LogoURL        string                       `json:"logoUrl,omitempty"`
	BackgroundURL  string                       `json:"backgroundUrl,omitempty"`
	Areas          []domain.Area                `json:"areas"`
	Admins         []domain.ProfileSummary      `json:"admins"`
	Team           []domain.ProfileSummary      `json:"team"`
	Networks       []domain.OrganizationSummary `json:"networks"`
	NetworkMembers []domain.OrganizationSummary `json:"networkMembers"`
	Events         []domain.EventSummary        `json:"events"`
	Projects       []domain.ProjectSummary      `json:"projects"`
	IsAdmin        bool                         `json:"isAdmin"`
	IsMember       bool                         `json:"isMember"`
}

type TeamSettings struct {
	Admins         []domain.ProfileSummary    `json:"admins"`
	Team           []domain.ProfileSummary    `json:"team"`
	PendingInvites []domain.ProfileInvite     `json:"pendingInvites"`
	Requests       []domain.MembershipRequest `json:"requests"`
}

type MyInvitations struct {
	Invites  []domain.ProfileInvite     `json:"invites"`
	Requests []domain.MembershipRequest `json:"requests"`
}

type NetworkOverview struct {
	IsNetwork        bool                         `json:"isNetwork"`
	Members          []domain.OrganizationSummary `json:"members"`
	Networks         []domain.OrganizationSummary `json:"networks"`
	InvitesSent      []domain.NetworkJoin         `json:"invitesSent"`
	RequestsReceived []domain.NetworkJoin         `json:"requestsReceived"`
	InvitesReceived  []domain.NetworkJoin         `json:"invitesReceived"`
	RequestsSent     []domain.NetworkJoin         `json:"requestsSent"`
}

type EventList struct {
	Items []domain.EventSummary `json:"items"`
	Total int                   `json:"total"`
}

type EventDetail struct {
	Event              *domain.Event                `json:"event"`
	BackgroundURL      string                       `json:"backgroundUrl,omitempty"`
	Admins             []domain.ProfileSummary      `json:"admins"`
	Team               []domain.ProfileSummary      `json:"team"`
	Speakers           []domain.ProfileSummary      `json:"speakers"`
	Organizations      []domain.OrganizationSummary `json:"organizations"`
	Documents          []domain.Document            `json:"documents"`
	Children           []domain.EventSummary        `json:"childEvents"`
	ParticipantCount   int                          `json:"participantCount"`
	WaitingCount       int                          `json:"waitingCount"`
	ParticipationState domain.ParticipationState    `json:"participationState"`
	ParticipationOpen  bool                         `json:"participationOpen"`
	IsAdmin            bool                         `json:"isAdmin"`
}

type ProjectList struct {
	Items []domain.ProjectSummary `json:"items"`
	Total int                     `json:"total"`
}

type ProjectDetail struct {
	Project       *domain.Project              `json:"project"`
	LogoURL       string                       `json:"logoUrl,omitempty"`
	BackgroundURL string                       `json:"backgroundUrl,omitempty"`
	Admins        []domain.ProfileSummary      `json:"admins"`
	Team          []domain.ProfileSummary      `json:"team"`
	Organizations []domain.OrganizationSummary `json:"organizations"`
	Awards        []domain.Award               `json:"awards"`
	IsAdmin       bool                         `json:"isAdmin"`
}

type ScoreResult struct {
	Profiles      int `json:"profiles"`
	Organizations int `json:"organizations"`
}
