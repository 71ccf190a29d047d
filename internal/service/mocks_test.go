package service_test

import (
	"context"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/geo"
	"community-platform-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// The repository mocks embed their interface so only the methods a test
// exercises need an implementation. Calling anything else panics.

type mockProfileRepo struct {
	mock.Mock
	repository.ProfileRepository
}

func (m *mockProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *mockProfileRepo) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *mockProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *mockProfileRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockProfileRepo) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	args := m.Called(ctx, id, email)
	return args.Error(0)
}

func (m *mockProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProfileRepo) ListSoleAdministrations(ctx context.Context, profileID uuid.UUID) ([]domain.EntityRef, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).([]domain.EntityRef), args.Error(1)
}

func (m *mockProfileRepo) ListScoreFlags(ctx context.Context) ([]domain.ProfileScoreFlags, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ProfileScoreFlags), args.Error(1)
}

func (m *mockProfileRepo) UpdateScore(ctx context.Context, id uuid.UUID, score int) error {
	args := m.Called(ctx, id, score)
	return args.Error(0)
}

type mockOrgRepo struct {
	mock.Mock
	repository.OrganizationRepository
}

func (m *mockOrgRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *mockOrgRepo) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *mockOrgRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrgRepo) Create(ctx context.Context, o *domain.Organization, creatorID uuid.UUID) error {
	args := m.Called(ctx, o, creatorID)
	return args.Error(0)
}

func (m *mockOrgRepo) Update(ctx context.Context, o *domain.Organization) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrgRepo) UpdateTypes(ctx context.Context, id uuid.UUID, types []string) error {
	args := m.Called(ctx, id, types)
	return args.Error(0)
}

func (m *mockOrgRepo) ReplaceAreas(ctx context.Context, organizationID uuid.UUID, areaIDs []uuid.UUID) error {
	args := m.Called(ctx, organizationID, areaIDs)
	return args.Error(0)
}

func (m *mockOrgRepo) IsAdmin(ctx context.Context, organizationID, profileID uuid.UUID) (bool, error) {
	args := m.Called(ctx, organizationID, profileID)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrgRepo) IsMember(ctx context.Context, organizationID, profileID uuid.UUID) (bool, error) {
	args := m.Called(ctx, organizationID, profileID)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrgRepo) ListAdmins(ctx context.Context, organizationID uuid.UUID) ([]domain.ProfileSummary, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).([]domain.ProfileSummary), args.Error(1)
}

func (m *mockOrgRepo) RemoveAdmin(ctx context.Context, organizationID, profileID uuid.UUID) error {
	args := m.Called(ctx, organizationID, profileID)
	return args.Error(0)
}

func (m *mockOrgRepo) ListScoreFlags(ctx context.Context) ([]domain.OrganizationScoreFlags, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.OrganizationScoreFlags), args.Error(1)
}

func (m *mockOrgRepo) UpdateScore(ctx context.Context, id uuid.UUID, score int) error {
	args := m.Called(ctx, id, score)
	return args.Error(0)
}

type mockMembershipRepo struct {
	mock.Mock
	repository.MembershipRepository
}

func (m *mockMembershipRepo) UpsertInvite(ctx context.Context, invite *domain.ProfileInvite) error {
	args := m.Called(ctx, invite)
	return args.Error(0)
}

func (m *mockMembershipRepo) GetInvite(ctx context.Context, organizationID, profileID uuid.UUID, role domain.Role) (*domain.ProfileInvite, error) {
	args := m.Called(ctx, organizationID, profileID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfileInvite), args.Error(1)
}

func (m *mockMembershipRepo) AcceptInvite(ctx context.Context, organizationID, profileID uuid.UUID, role domain.Role) error {
	args := m.Called(ctx, organizationID, profileID, role)
	return args.Error(0)
}

type mockNetworkRepo struct {
	mock.Mock
	repository.NetworkRepository
}

func (m *mockNetworkRepo) UpsertJoin(ctx context.Context, join *domain.NetworkJoin) error {
	args := m.Called(ctx, join)
	return args.Error(0)
}

func (m *mockNetworkRepo) GetJoin(ctx context.Context, kind domain.NetworkJoinKind, networkID, organizationID uuid.UUID) (*domain.NetworkJoin, error) {
	args := m.Called(ctx, kind, networkID, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NetworkJoin), args.Error(1)
}

func (m *mockNetworkRepo) AcceptJoin(ctx context.Context, kind domain.NetworkJoinKind, networkID, organizationID uuid.UUID) error {
	args := m.Called(ctx, kind, networkID, organizationID)
	return args.Error(0)
}

func (m *mockNetworkRepo) IsMember(ctx context.Context, networkID, organizationID uuid.UUID) (bool, error) {
	args := m.Called(ctx, networkID, organizationID)
	return args.Bool(0), args.Error(1)
}

type mockEventRepo struct {
	mock.Mock
	repository.EventRepository
}

func (m *mockEventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *mockEventRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *mockEventRepo) Create(ctx context.Context, e *domain.Event, creatorID uuid.UUID) error {
	args := m.Called(ctx, e, creatorID)
	return args.Error(0)
}

func (m *mockEventRepo) IsAdmin(ctx context.Context, eventID, profileID uuid.UUID) (bool, error) {
	args := m.Called(ctx, eventID, profileID)
	return args.Bool(0), args.Error(1)
}

func (m *mockEventRepo) RemoveRelation(ctx context.Context, eventID uuid.UUID, relation domain.Relation, profileID uuid.UUID) error {
	args := m.Called(ctx, eventID, relation, profileID)
	return args.Error(0)
}

func (m *mockEventRepo) Participate(ctx context.Context, eventID, profileID uuid.UUID) (domain.ParticipationState, error) {
	args := m.Called(ctx, eventID, profileID)
	return args.Get(0).(domain.ParticipationState), args.Error(1)
}

func (m *mockEventRepo) Withdraw(ctx context.Context, eventID, profileID uuid.UUID) ([]domain.ProfileSummary, error) {
	args := m.Called(ctx, eventID, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProfileSummary), args.Error(1)
}

func (m *mockEventRepo) Update(ctx context.Context, e *domain.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *mockEventRepo) FillFromWaitingList(ctx context.Context, eventID uuid.UUID) ([]domain.ProfileSummary, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProfileSummary), args.Error(1)
}

type mockProjectRepo struct {
	mock.Mock
	repository.ProjectRepository
}

func (m *mockProjectRepo) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *mockProjectRepo) IsAdmin(ctx context.Context, projectID, profileID uuid.UUID) (bool, error) {
	args := m.Called(ctx, projectID, profileID)
	return args.Bool(0), args.Error(1)
}

type mockAreaRepo struct {
	mock.Mock
	repository.AreaRepository
}

func (m *mockAreaRepo) ListStates(ctx context.Context) ([]domain.State, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.State), args.Error(1)
}

func (m *mockAreaRepo) ListDistricts(ctx context.Context) ([]domain.District, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.District), args.Error(1)
}

func (m *mockAreaRepo) ApplyRegionPlan(ctx context.Context, plan repository.RegionPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

type mockReportRepo struct {
	mock.Mock
	repository.ReportRepository
}

func (m *mockReportRepo) Create(ctx context.Context, r *domain.AbuseReport) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReportRepo) ExistsOpen(ctx context.Context, reporterID uuid.UUID, entityType domain.ReportEntityType, entityID uuid.UUID) (bool, error) {
	args := m.Called(ctx, reporterID, entityType, entityID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReportRepo) CountByStatus(ctx context.Context, status domain.ReportStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

func (m *mockReportRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// mockEmailService records notifications instead of sending them
type mockEmailService struct {
	mock.Mock
}

func (m *mockEmailService) SendWelcome(ctx context.Context, p *domain.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockEmailService) SendOrganizationInvite(ctx context.Context, invitee *domain.Profile, inviterName string, org *domain.Organization, role domain.Role) error {
	args := m.Called(ctx, invitee, inviterName, org, role)
	return args.Error(0)
}

func (m *mockEmailService) SendMembershipRequest(ctx context.Context, admins []domain.ProfileSummary, requester *domain.Profile, org *domain.Organization) error {
	args := m.Called(ctx, admins, requester, org)
	return args.Error(0)
}

func (m *mockEmailService) SendNetworkInvite(ctx context.Context, admins []domain.ProfileSummary, network, org *domain.Organization) error {
	args := m.Called(ctx, admins, network, org)
	return args.Error(0)
}

func (m *mockEmailService) SendNetworkRequest(ctx context.Context, admins []domain.ProfileSummary, network, org *domain.Organization) error {
	args := m.Called(ctx, admins, network, org)
	return args.Error(0)
}

func (m *mockEmailService) SendWaitingListPromotion(ctx context.Context, p *domain.ProfileSummary, e *domain.Event) error {
	args := m.Called(ctx, p, e)
	return args.Error(0)
}

func (m *mockEmailService) SendAbuseReport(ctx context.Context, reporter *domain.Profile, report *domain.AbuseReport, entity domain.EntityRef) error {
	args := m.Called(ctx, reporter, report, entity)
	return args.Error(0)
}

func (m *mockEmailService) SendEmailChanged(ctx context.Context, p *domain.Profile, oldEmail string) error {
	args := m.Called(ctx, p, oldEmail)
	return args.Error(0)
}

func (m *mockEmailService) SendReportDigest(ctx context.Context, openCount int) error {
	args := m.Called(ctx, openCount)
	return args.Error(0)
}

func (m *mockNetworkRepo) ListMembers(ctx context.Context, networkID uuid.UUID) ([]domain.OrganizationSummary, error) {
	args := m.Called(ctx, networkID)
	return args.Get(0).([]domain.OrganizationSummary), args.Error(1)
}

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Geocode(ctx context.Context, addr geo.Address) (*geo.Coordinates, error) {
	args := m.Called(ctx, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geo.Coordinates), args.Error(1)
}
