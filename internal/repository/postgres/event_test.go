package postgres

import (
	"context"
	"testing"
	"time"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepository_Participate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEventRepository(db)
	ctx := context.Background()
	eventID, profileID := uuid.New(), uuid.New()

	expectLockAndState := func(limit int, participant, waiting bool) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT participant_limit FROM events").
			WithArgs(eventID).
			WillReturnRows(sqlmock.NewRows([]string{"participant_limit"}).AddRow(limit))
		mock.ExpectQuery(`EXISTS\(SELECT 1 FROM participants_of_events`).
			WithArgs(eventID, profileID).
			WillReturnRows(sqlmock.NewRows([]string{"p", "w"}).AddRow(participant, waiting))
	}

	expectCounts := func(participants, waiting int) {
		mock.ExpectQuery(`SELECT count\(\*\) FROM waiting_participants_of_events`).
			WithArgs(eventID).
			WillReturnRows(sqlmock.NewRows([]string{"participants", "waiting"}).AddRow(participants, waiting))
	}

	t.Run("SeatAvailable", func(t *testing.T) {
		expectLockAndState(10, false, false)
		expectCounts(3, 0)
		mock.ExpectExec("INSERT INTO participants_of_events").
			WithArgs(eventID, profileID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		state, err := repo.Participate(ctx, eventID, profileID)
		require.NoError(t, err)
		assert.Equal(t, domain.ParticipationParticipant, state)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("FullGoesToWaitingList", func(t *testing.T) {
		expectLockAndState(2, false, false)
		expectCounts(2, 0)
		mock.ExpectExec("INSERT INTO waiting_participants_of_events").
			WithArgs(eventID, profileID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		state, err := repo.Participate(ctx, eventID, profileID)
		require.NoError(t, err)
		assert.Equal(t, domain.ParticipationWaiting, state)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnlimitedNeverWaits", func(t *testing.T) {
		expectLockAndState(0, false, false)
		expectCounts(500, 0)
		mock.ExpectExec("INSERT INTO participants_of_events").
			WithArgs(eventID, profileID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		state, err := repo.Participate(ctx, eventID, profileID)
		require.NoError(t, err)
		assert.Equal(t, domain.ParticipationParticipant, state)
	})

	t.Run("QueuesBehindWaitingList", func(t *testing.T) {
		expectLockAndState(5, false, false)
		expectCounts(2, 3)
		mock.ExpectExec("INSERT INTO waiting_participants_of_events").
			WithArgs(eventID, profileID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		state, err := repo.Participate(ctx, eventID, profileID)
		require.NoError(t, err)
		assert.Equal(t, domain.ParticipationWaiting, state)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyWaiting", func(t *testing.T) {
		expectLockAndState(2, false, true)
		mock.ExpectCommit()

		state, err := repo.Participate(ctx, eventID, profileID)
		require.NoError(t, err)
		assert.Equal(t, domain.ParticipationWaiting, state)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_Withdraw(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEventRepository(db)
	ctx := context.Background()
	eventID, profileID, waitingID := uuid.New(), uuid.New(), uuid.New()

	t.Run("PromotesOldestWaiting", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT participant_limit FROM events").
			WithArgs(eventID).
			WillReturnRows(sqlmock.NewRows([]string{"participant_limit"}).AddRow(2))
		mock.ExpectExec("DELETE FROM participants_of_events").
			WithArgs(eventID, profileID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT count\(\*\) FROM participants_of_events`).
			WithArgs(eventID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("JOIN waiting_participants_of_events").
			WithArgs(eventID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "first_name", "last_name", "avatar", "email"}).
				AddRow(waitingID.String(), "wartend", "Wanda", "Wartend", "", "wanda@example.org"))
		mock.ExpectExec("DELETE FROM waiting_participants_of_events").
			WithArgs(eventID, waitingID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO participants_of_events").
			WithArgs(eventID, waitingID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		promoted, err := repo.Withdraw(ctx, eventID, profileID)
		require.NoError(t, err)
		require.Len(t, promoted, 1)
		assert.Equal(t, waitingID, promoted[0].ID)
		assert.Equal(t, "wanda@example.org", promoted[0].Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotParticipating", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT participant_limit FROM events").
			WithArgs(eventID).
			WillReturnRows(sqlmock.NewRows([]string{"participant_limit"}).AddRow(2))
		mock.ExpectExec("DELETE FROM participants_of_events").
			WithArgs(eventID, profileID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM waiting_participants_of_events").
			WithArgs(eventID, profileID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.Withdraw(ctx, eventID, profileID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_FillFromWaitingList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEventRepository(db)
	ctx := context.Background()
	eventID := uuid.New()
	waiting := []uuid.UUID{uuid.New(), uuid.New()}
	columns := []string{"id", "username", "first_name", "last_name", "avatar", "email"}

	expectPromotions := func(ids ...uuid.UUID) {
		for _, id := range ids {
			mock.ExpectExec("DELETE FROM waiting_participants_of_events").
				WithArgs(eventID, id).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec("INSERT INTO participants_of_events").
				WithArgs(eventID, id).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
	}

	t.Run("RaisedLimitPromotesOldestFirst", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT participant_limit FROM events").
			WithArgs(eventID).
			WillReturnRows(sqlmock.NewRows([]string{"participant_limit"}).AddRow(4))
		mock.ExpectQuery(`SELECT count\(\*\) FROM participants_of_events`).
			WithArgs(eventID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery(`(?s)JOIN waiting_participants_of_events w .* ORDER BY w.created_at LIMIT \$2`).
			WithArgs(eventID, 2).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(waiting[0].String(), "erste", "Erna", "Erste", "", "erna@example.org").
				AddRow(waiting[1].String(), "zweiter", "Zeno", "Zweiter", "", "zeno@example.org"))
		expectPromotions(waiting...)
		mock.ExpectCommit()

		promoted, err := repo.FillFromWaitingList(ctx, eventID)
		require.NoError(t, err)
		require.Len(t, promoted, 2)
		assert.Equal(t, waiting[0], promoted[0].ID)
		assert.Equal(t, waiting[1], promoted[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnlimitedPromotesEveryone", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT participant_limit FROM events").
			WithArgs(eventID).
			WillReturnRows(sqlmock.NewRows([]string{"participant_limit"}).AddRow(0))
		mock.ExpectQuery("JOIN waiting_participants_of_events").
			WithArgs(eventID, nil).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(waiting[0].String(), "erste", "Erna", "Erste", "", "erna@example.org"))
		expectPromotions(waiting[0])
		mock.ExpectCommit()

		promoted, err := repo.FillFromWaitingList(ctx, eventID)
		require.NoError(t, err)
		assert.Len(t, promoted, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("StillFull", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT participant_limit FROM events").
			WithArgs(eventID).
			WillReturnRows(sqlmock.NewRows([]string{"participant_limit"}).AddRow(2))
		mock.ExpectQuery(`SELECT count\(\*\) FROM participants_of_events`).
			WithArgs(eventID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectCommit()

		promoted, err := repo.FillFromWaitingList(ctx, eventID)
		require.NoError(t, err)
		assert.Empty(t, promoted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_RemoveRelation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEventRepository(db)
	eventID, profileID := uuid.New(), uuid.New()

	t.Run("Speaker", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM speakers_of_events").
			WithArgs(eventID, profileID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.RemoveRelation(context.Background(), eventID, domain.RelationSpeakers, profileID))
	})

	t.Run("LastAdmin", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT 1 FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs(eventID).
			WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))
		mock.ExpectExec("DELETE FROM admins_of_events").
			WithArgs(eventID, profileID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(eventID, profileID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()
		err := repo.RemoveRelation(context.Background(), eventID, domain.RelationAdmins, profileID)
		assert.ErrorIs(t, err, repository.ErrLastAdmin)
	})

	t.Run("UnknownRelation", func(t *testing.T) {
		err := repo.RemoveRelation(context.Background(), eventID, domain.Relation("sponsors"), profileID)
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ListChildren_HidesDrafts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEventRepository(db)
	parentID, childID := uuid.New(), uuid.New()
	start := time.Date(2026, 9, 12, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)WHERE e.parent_event_id = \$1 AND \(e.published\s+OR EXISTS\(SELECT 1 FROM admins_of_events`).
		WithArgs(parentID, uuid.Nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "name", "subline", "start_time", "end_time", "background", "published", "canceled"}).
			AddRow(childID.String(), "workshop", "Workshop", "", start, start.Add(2*time.Hour), "", true, false))

	children, err := repo.ListChildren(context.Background(), parentID, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "workshop", children[0].Slug)
	assert.True(t, children[0].Published)
	assert.NoError(t, mock.ExpectationsWereMet())
}
