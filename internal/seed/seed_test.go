package seed

import (
	"context"
	"testing"
	"time"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/repository"
	"community-platform-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type profileRepo struct {
	repository.ProfileRepository
	mock.Mock
	created []*domain.Profile
}

func (m *profileRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	for _, p := range m.created {
		if p.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *profileRepo) Create(ctx context.Context, p *domain.Profile) error {
	p.ID = uuid.New()
	m.created = append(m.created, p)
	return m.Called(ctx, p).Error(0)
}

type orgRepo struct {
	repository.OrganizationRepository
	mock.Mock
}

func (m *orgRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	return false, nil
}

func (m *orgRepo) Create(ctx context.Context, o *domain.Organization, creatorID uuid.UUID) error {
	o.ID = uuid.New()
	return m.Called(ctx, o, creatorID).Error(0)
}

func (m *orgRepo) IsMember(ctx context.Context, organizationID, profileID uuid.UUID) (bool, error) {
	return false, nil
}

type membershipRepo struct {
	repository.MembershipRepository
	mock.Mock
}

func (m *membershipRepo) UpsertInvite(ctx context.Context, invite *domain.ProfileInvite) error {
	return m.Called(ctx, invite).Error(0)
}

func (m *membershipRepo) AcceptInvite(ctx context.Context, organizationID, profileID uuid.UUID, role domain.Role) error {
	return m.Called(ctx, organizationID, profileID, role).Error(0)
}

func newStore() (service.Repositories, *profileRepo, *orgRepo, *membershipRepo) {
	profiles := &profileRepo{}
	orgs := &orgRepo{}
	memberships := &membershipRepo{}
	profiles.On("Create", mock.Anything, mock.Anything).Return(nil)
	orgs.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	memberships.On("UpsertInvite", mock.Anything, mock.Anything).Return(nil)
	memberships.On("AcceptInvite", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return service.Repositories{Profiles: profiles, Organizations: orgs, Memberships: memberships}, profiles, orgs, memberships
}

func smallOptions() Options {
	return Options{Profiles: 5, Organizations: 1, Password: "community-dev", Seed: 42, Now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func TestRun(t *testing.T) {
	store, profiles, orgs, memberships := newStore()

	result, err := Run(context.Background(), store, smallOptions())
	require.NoError(t, err)

	assert.Equal(t, 5, result.Profiles)
	assert.Equal(t, 1, result.Organizations)
	assert.Equal(t, 1, result.Networks)
	assert.GreaterOrEqual(t, result.Memberships, 1)
	assert.Len(t, profiles.created, 5)

	// The first organization is always a network and starts with an admin
	org := orgs.Calls[0].Arguments.Get(1).(*domain.Organization)
	assert.True(t, org.IsNetwork())
	invite := memberships.Calls[0].Arguments.Get(1).(*domain.ProfileInvite)
	assert.Equal(t, domain.RoleAdmin, invite.Role)
	assert.Equal(t, org.ID, invite.OrganizationID)

	usernames := map[string]bool{}
	for _, p := range profiles.created {
		assert.False(t, usernames[p.Username], "duplicate username %s", p.Username)
		usernames[p.Username] = true
		assert.NotEmpty(t, p.PasswordHash)
	}
}

func TestRun_Deterministic(t *testing.T) {
	first, profilesA, _, _ := newStore()
	second, profilesB, _, _ := newStore()

	_, err := Run(context.Background(), first, smallOptions())
	require.NoError(t, err)
	_, err = Run(context.Background(), second, smallOptions())
	require.NoError(t, err)

	for i := range profilesA.created {
		assert.Equal(t, profilesA.created[i].Username, profilesB.created[i].Username)
	}
}

func TestRun_RequiresProfiles(t *testing.T) {
	store, _, _, _ := newStore()
	_, err := Run(context.Background(), store, Options{})
	assert.Error(t, err)
}
