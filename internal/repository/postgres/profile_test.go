package postgres

import (
	"context"
	"database/sql"
	"testing"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepository_GetByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewProfileRepository(db)

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM profiles WHERE username").
			WithArgs("nobody").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByUsername(context.Background(), "nobody")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestProfileRepository_UpdateImage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewProfileRepository(db)
	id := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE profiles SET avatar").
			WithArgs("avatars/a.png", sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateImage(context.Background(), id, domain.ImageAvatar, "avatars/a.png"))
	})

	t.Run("UnsupportedField", func(t *testing.T) {
		err := repo.UpdateImage(context.Background(), id, domain.ImageLogo, "x")
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_ReplaceAreas(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewProfileRepository(db)
	profileID, a1, a2 := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM profile_areas").WithArgs(profileID).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO profile_areas").WithArgs(profileID, a1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO profile_areas").WithArgs(profileID, a2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.ReplaceAreas(context.Background(), profileID, []uuid.UUID{a1, a2}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_ListSoleAdministrations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewProfileRepository(db)
	profileID, orgID := uuid.New(), uuid.New()

	mock.ExpectQuery("UNION ALL").
		WithArgs(profileID).
		WillReturnRows(sqlmock.NewRows([]string{"type", "id", "slug", "name"}).
			AddRow("organization", orgID.String(), "acme", "Acme"))

	refs, err := repo.ListSoleAdministrations(context.Background(), profileID)
	require.NoError(t, err)
	assert.Equal(t, []domain.EntityRef{{Type: "organization", ID: orgID, Slug: "acme", Name: "Acme"}}, refs)
}
