package service_test

import (
	"context"
	"testing"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/repository"
	"community-platform-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type networkFixture struct {
	admin    uuid.UUID
	network  *domain.Organization
	org      *domain.Organization
	orgs     *mockOrgRepo
	networks *mockNetworkRepo
	emails   *mockEmailService
	svc      service.NetworkService
}

func newNetworkFixture(ctx context.Context) *networkFixture {
	f := &networkFixture{
		admin:    uuid.New(),
		network:  &domain.Organization{ID: uuid.New(), Slug: "netz", Name: "Netz", Types: []string{domain.OrganizationTypeNetwork}},
		org:      &domain.Organization{ID: uuid.New(), Slug: "acme", Name: "Acme", Types: []string{"company"}},
		orgs:     new(mockOrgRepo),
		networks: new(mockNetworkRepo),
		emails:   new(mockEmailService),
	}
	f.svc = service.NewNetworkService(service.Repositories{Organizations: f.orgs, Networks: f.networks}, f.emails)

	f.orgs.On("GetBySlug", ctx, "netz").Return(f.network, nil)
	f.orgs.On("GetBySlug", ctx, "acme").Return(f.org, nil)
	f.orgs.On("GetByID", ctx, f.network.ID).Return(f.network, nil)
	f.orgs.On("GetByID", ctx, f.org.ID).Return(f.org, nil)
	f.orgs.On("IsAdmin", ctx, mock.Anything, f.admin).Return(true, nil)
	return f
}

func TestNetworkService_InviteOrganization(t *testing.T) {
	ctx := context.Background()
	f := newNetworkFixture(ctx)
	admins := []domain.ProfileSummary{{ID: uuid.New(), Email: "boss@acme.example"}}

	f.networks.On("IsMember", ctx, f.network.ID, f.org.ID).Return(false, nil)
	f.networks.On("UpsertJoin", ctx, mock.MatchedBy(func(j *domain.NetworkJoin) bool {
		return j.Kind == domain.NetworkJoinInvite && j.NetworkID == f.network.ID && j.OrganizationID == f.org.ID
	})).Return(nil)
	f.orgs.On("ListAdmins", ctx, f.org.ID).Return(admins, nil)
	f.emails.On("SendNetworkInvite", ctx, admins, f.network, f.org).Return(nil)

	require.NoError(t, f.svc.InviteOrganization(ctx, f.admin, "netz", f.org.ID))
	f.networks.AssertExpectations(t)
	f.emails.AssertExpectations(t)
}

func TestNetworkService_InviteOrganization_Rejects(t *testing.T) {
	ctx := context.Background()
	f := newNetworkFixture(ctx)

	assert.ErrorIs(t, f.svc.InviteOrganization(ctx, f.admin, "netz", f.network.ID), service.ErrSelfReference)
	assert.ErrorIs(t, f.svc.InviteOrganization(ctx, f.admin, "acme", f.network.ID), service.ErrNotANetwork)

	f.networks.On("IsMember", ctx, f.network.ID, f.org.ID).Return(true, nil)
	assert.ErrorIs(t, f.svc.InviteOrganization(ctx, f.admin, "netz", f.org.ID), service.ErrAlreadyMember)
}

func TestNetworkService_AcceptInvite(t *testing.T) {
	ctx := context.Background()
	f := newNetworkFixture(ctx)
	pending := &domain.NetworkJoin{Kind: domain.NetworkJoinInvite, Status: domain.StatusPending}

	f.networks.On("GetJoin", ctx, domain.NetworkJoinInvite, f.network.ID, f.org.ID).Return(pending, nil)
	f.networks.On("AcceptJoin", ctx, domain.NetworkJoinInvite, f.network.ID, f.org.ID).Return(nil).Once()
	require.NoError(t, f.svc.AcceptInvite(ctx, f.admin, "acme", f.network.ID))

	f.networks.On("AcceptJoin", ctx, domain.NetworkJoinInvite, f.network.ID, f.org.ID).Return(repository.ErrNotFound).Once()
	assert.ErrorIs(t, f.svc.AcceptInvite(ctx, f.admin, "acme", f.network.ID), service.ErrInviteNotPending)
}

func TestNetworkService_AcceptRequest_Missing(t *testing.T) {
	ctx := context.Background()
	f := newNetworkFixture(ctx)
	f.networks.On("GetJoin", ctx, domain.NetworkJoinRequest, f.network.ID, f.org.ID).Return(nil, repository.ErrNotFound)

	assert.ErrorIs(t, f.svc.AcceptRequest(ctx, f.admin, "netz", f.org.ID), service.ErrRequestNotFound)
	assert.ErrorIs(t, f.svc.AcceptRequest(ctx, f.admin, "acme", f.org.ID), service.ErrNotANetwork)
}
