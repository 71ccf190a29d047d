package http

import (
	"context"
	"io"
	"strings"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockAuthService struct {
	service.AuthService
	mock.Mock
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*domain.Profile, error) {
	args := m.Called(ctx, email, password)
	p, _ := args.Get(0).(*domain.Profile)
	return p, args.Error(1)
}

func (m *mockAuthService) Register(ctx context.Context, input service.RegisterInput) (*domain.Profile, error) {
	args := m.Called(ctx, input)
	p, _ := args.Get(0).(*domain.Profile)
	return p, args.Error(1)
}

func (m *mockAuthService) IsPlatformAdmin(ctx context.Context, profileID uuid.UUID) (bool, error) {
	args := m.Called(ctx, profileID)
	return args.Bool(0), args.Error(1)
}

type mockOrganizationService struct {
	service.OrganizationService
	mock.Mock
}

func (m *mockOrganizationService) GetOrganization(ctx context.Context, viewerID uuid.UUID, slug string) (*service.OrganizationDetail, error) {
	args := m.Called(ctx, viewerID, slug)
	d, _ := args.Get(0).(*service.OrganizationDetail)
	return d, args.Error(1)
}

func (m *mockOrganizationService) CreateOrganization(ctx context.Context, actorID uuid.UUID, name string) (*domain.Organization, error) {
	args := m.Called(ctx, actorID, name)
	o, _ := args.Get(0).(*domain.Organization)
	return o, args.Error(1)
}

func (m *mockOrganizationService) InviteProfile(ctx context.Context, actorID uuid.UUID, slug string, profileID uuid.UUID, role domain.Role) error {
	return m.Called(ctx, actorID, slug, profileID, role).Error(0)
}

type mockProfileService struct {
	service.ProfileService
	mock.Mock
}

func (m *mockProfileService) DeleteAccount(ctx context.Context, actorID uuid.UUID, username, password string) error {
	return m.Called(ctx, actorID, username, password).Error(0)
}

type mockNetworkService struct {
	service.NetworkService
	mock.Mock
}

func (m *mockNetworkService) AcceptInvite(ctx context.Context, actorID uuid.UUID, organizationSlug string, networkID uuid.UUID) error {
	return m.Called(ctx, actorID, organizationSlug, networkID).Error(0)
}

type mockEventService struct {
	service.EventService
	mock.Mock
}

func (m *mockEventService) AddRelation(ctx context.Context, actorID uuid.UUID, slug string, relation domain.Relation, profileID uuid.UUID) error {
	return m.Called(ctx, actorID, slug, relation, profileID).Error(0)
}

func (m *mockEventService) DocumentURL(ctx context.Context, viewerID uuid.UUID, slug string, documentID uuid.UUID) (string, error) {
	args := m.Called(ctx, viewerID, slug, documentID)
	return args.String(0), args.Error(1)
}

type mockReportService struct {
	service.ReportService
	mock.Mock
}

func (m *mockReportService) Report(ctx context.Context, reporterID uuid.UUID, input service.ReportInput) (*domain.AbuseReport, error) {
	args := m.Called(ctx, reporterID, input)
	r, _ := args.Get(0).(*domain.AbuseReport)
	return r, args.Error(1)
}

func (m *mockReportService) ListOpen(ctx context.Context, actorID uuid.UUID) ([]domain.AbuseReport, error) {
	args := m.Called(ctx, actorID)
	r, _ := args.Get(0).([]domain.AbuseReport)
	return r, args.Error(1)
}

type mockRegionService struct {
	service.RegionService
	mock.Mock
}

func (m *mockRegionService) ListAreas(ctx context.Context) ([]domain.Area, error) {
	args := m.Called(ctx)
	a, _ := args.Get(0).([]domain.Area)
	return a, args.Error(1)
}

// memFiles serves files from a map
type memFiles map[string]string

func (f memFiles) ReadFile(key string) (io.ReadCloser, error) {
	body, ok := f[key]
	if !ok {
		return nil, io.EOF
	}
	return io.NopCloser(strings.NewReader(body)), nil
}
