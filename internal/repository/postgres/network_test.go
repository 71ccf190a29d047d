package postgres

import (
	"context"
	"testing"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkRepository_AcceptJoin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewNetworkRepository(db)
	ctx := context.Background()
	networkID, orgID := uuid.New(), uuid.New()

	t.Run("Invite", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE invites_for_organizations_to_join_networks SET status='accepted'").
			WithArgs(sqlmock.AnyArg(), networkID, orgID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO members_of_networks").
			WithArgs(networkID, orgID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("(?s)UPDATE requests_to_networks_to_add_organizations SET status='accepted'.*status='pending'").
			WithArgs(sqlmock.AnyArg(), networkID, orgID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.AcceptJoin(ctx, domain.NetworkJoinInvite, networkID, orgID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RequestSettlesPendingInvite", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE requests_to_networks_to_add_organizations SET status='accepted'").
			WithArgs(sqlmock.AnyArg(), networkID, orgID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO members_of_networks").
			WithArgs(networkID, orgID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE invites_for_organizations_to_join_networks SET status='accepted'").
			WithArgs(sqlmock.AnyArg(), networkID, orgID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		assert.NoError(t, repo.AcceptJoin(ctx, domain.NetworkJoinRequest, networkID, orgID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RequestNotPending", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE requests_to_networks_to_add_organizations SET status='accepted'").
			WithArgs(sqlmock.AnyArg(), networkID, orgID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.AcceptJoin(ctx, domain.NetworkJoinRequest, networkID, orgID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownKind", func(t *testing.T) {
		err := repo.AcceptJoin(ctx, domain.NetworkJoinKind("merge"), networkID, orgID)
		assert.Error(t, err)
	})
}

func TestMembershipRepository_AcceptInvite(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMembershipRepository(db)
	orgID, profileID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE invites_for_profiles_to_join_organizations SET status='accepted'").
		WithArgs(sqlmock.AnyArg(), orgID, profileID, domain.RoleAdmin).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO admins_of_organizations").
		WithArgs(orgID, profileID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.AcceptInvite(context.Background(), orgID, profileID, domain.RoleAdmin))
	assert.NoError(t, mock.ExpectationsWereMet())
}
