package postgres

import (
	"context"
	"database/sql"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"

	"github.com/google/uuid"
)

func participationState(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, eventID, profileID uuid.UUID) (domain.ParticipationState, error) {
	var participant, waiting bool
	err := q.QueryRowContext(ctx, `SELECT
	          EXISTS(SELECT 1 FROM participants_of_events WHERE event_id = $1 AND profile_id = $2),
	          EXISTS(SELECT 1 FROM waiting_participants_of_events WHERE event_id = $1 AND profile_id = $2)`,
		eventID, profileID).Scan(&participant, &waiting)
	if err != nil {
		return domain.ParticipationNone, err
	}
	switch {
	case participant:
		return domain.ParticipationParticipant, nil
	case waiting:
		return domain.ParticipationWaiting, nil
	}
	return domain.ParticipationNone, nil
}

func (r *eventRepository) GetParticipationState(ctx context.Context, eventID, profileID uuid.UUID) (domain.ParticipationState, error) {
	return participationState(ctx, r.db, eventID, profileID)
}

func (r *eventRepository) CountParticipants(ctx context.Context, eventID uuid.UUID) (int, int, error) {
	var participants, waiting int
	err := r.db.QueryRowContext(ctx, `SELECT
	          (SELECT count(*) FROM participants_of_events WHERE event_id = $1),
	          (SELECT count(*) FROM waiting_participants_of_events WHERE event_id = $1)`, eventID).Scan(&participants, &waiting)
	return participants, waiting, err
}

// Participate adds the profile as participant or, when the event is full or
// others are already waiting, to the waiting list. The event row is locked so
// concurrent sign-ups cannot exceed the participant limit.
func (r *eventRepository) Participate(ctx context.Context, eventID, profileID uuid.UUID) (domain.ParticipationState, error) {
	logger.EnterMethod("eventRepository.Participate", "eventID", eventID, "profileID", profileID)
	state := domain.ParticipationNone

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		limit, err := lockEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}

		current, err := participationState(ctx, tx, eventID, profileID)
		if err != nil {
			return err
		}
		if current != domain.ParticipationNone {
			state = current
			return nil
		}

		var count, waiting int
		if err := tx.QueryRowContext(ctx, `SELECT
		          (SELECT count(*) FROM participants_of_events WHERE event_id = $1),
		          (SELECT count(*) FROM waiting_participants_of_events WHERE event_id = $1)`, eventID).Scan(&count, &waiting); err != nil {
			return err
		}

		table := "participants_of_events"
		state = domain.ParticipationParticipant
		if waiting > 0 || (limit > 0 && count >= limit) {
			table = "waiting_participants_of_events"
			state = domain.ParticipationWaiting
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO `+table+` (event_id, profile_id) VALUES ($1, $2)`, eventID, profileID)
		return mapError(err)
	})
	if err != nil {
		logger.ExitMethodWithError("eventRepository.Participate", err)
		return domain.ParticipationNone, err
	}
	logger.ExitMethod("eventRepository.Participate", "state", state)
	return state, nil
}

// Withdraw removes the profile from participants or the waiting list and
// moves waiting profiles into the freed seats.
func (r *eventRepository) Withdraw(ctx context.Context, eventID, profileID uuid.UUID) ([]domain.ProfileSummary, error) {
	logger.EnterMethod("eventRepository.Withdraw", "eventID", eventID, "profileID", profileID)
	var promoted []domain.ProfileSummary

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		limit, err := lockEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM participants_of_events WHERE event_id = $1 AND profile_id = $2`, eventID, profileID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return requireAffected(tx.ExecContext(ctx,
				`DELETE FROM waiting_participants_of_events WHERE event_id = $1 AND profile_id = $2`, eventID, profileID))
		}

		promoted, err = promoteWaiting(ctx, tx, eventID, limit)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("eventRepository.Withdraw", err)
		return nil, err
	}
	logger.ExitMethod("eventRepository.Withdraw", "promoted", len(promoted))
	return promoted, nil
}

// FillFromWaitingList promotes waiting profiles until the current limit is
// reached. Used after the limit was raised or removed.
func (r *eventRepository) FillFromWaitingList(ctx context.Context, eventID uuid.UUID) ([]domain.ProfileSummary, error) {
	logger.EnterMethod("eventRepository.FillFromWaitingList", "eventID", eventID)
	var promoted []domain.ProfileSummary

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		limit, err := lockEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		promoted, err = promoteWaiting(ctx, tx, eventID, limit)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("eventRepository.FillFromWaitingList", err)
		return nil, err
	}
	logger.ExitMethod("eventRepository.FillFromWaitingList", "promoted", len(promoted))
	return promoted, nil
}

func lockEvent(ctx context.Context, tx *sql.Tx, eventID uuid.UUID) (int, error) {
	var limit int
	if err := tx.QueryRowContext(ctx, `SELECT participant_limit FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&limit); err != nil {
		return 0, mapError(err)
	}
	return limit, nil
}

// promoteWaiting moves the oldest waiting profiles into free seats. The caller
// holds the event row lock. A limit of 0 frees a seat for everyone waiting.
func promoteWaiting(ctx context.Context, tx *sql.Tx, eventID uuid.UUID, limit int) ([]domain.ProfileSummary, error) {
	seats := sql.NullInt64{}
	if limit > 0 {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM participants_of_events WHERE event_id = $1`, eventID).Scan(&count); err != nil {
			return nil, err
		}
		if count >= limit {
			return nil, nil
		}
		seats = sql.NullInt64{Int64: int64(limit - count), Valid: true}
	}

	rows, err := tx.QueryContext(ctx, `SELECT `+profileSummaryColumns+` FROM profiles p
	          JOIN waiting_participants_of_events w ON w.profile_id = p.id
	          WHERE w.event_id = $1 ORDER BY w.created_at LIMIT $2`, eventID, seats)
	if err != nil {
		return nil, err
	}
	var waiting []domain.ProfileSummary
	for rows.Next() {
		var p domain.ProfileSummary
		if err := rows.Scan(&p.ID, &p.Username, &p.FirstName, &p.LastName, &p.Avatar, &p.Email); err != nil {
			rows.Close()
			return nil, err
		}
		waiting = append(waiting, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range waiting {
		if _, err := tx.ExecContext(ctx, `DELETE FROM waiting_participants_of_events WHERE event_id = $1 AND profile_id = $2`, eventID, p.ID); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO participants_of_events (event_id, profile_id) VALUES ($1, $2)`, eventID, p.ID); err != nil {
			return nil, mapError(err)
		}
	}
	return waiting, nil
}

func (r *eventRepository) AddDocument(ctx context.Context, eventID uuid.UUID, doc *domain.Document) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `INSERT INTO documents (filename, storage_key, title, description, mime_type, size_bytes)
		          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`
		if err := tx.QueryRowContext(ctx, query, doc.Filename, doc.Key, doc.Title, doc.Description, doc.MimeType, doc.SizeBytes).
			Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return mapError(err)
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO documents_of_events (event_id, document_id) VALUES ($1, $2)`, eventID, doc.ID)
		return mapError(err)
	})
}

const documentSelect = `SELECT d.id, d.filename, d.storage_key, d.title, d.description, d.mime_type, d.size_bytes, d.created_at, d.updated_at
	FROM documents d JOIN documents_of_events de ON de.document_id = d.id`

func scanDocument(row interface{ Scan(...any) error }) (domain.Document, error) {
	var d domain.Document
	err := row.Scan(&d.ID, &d.Filename, &d.Key, &d.Title, &d.Description, &d.MimeType, &d.SizeBytes, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (r *eventRepository) ListDocuments(ctx context.Context, eventID uuid.UUID) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, documentSelect+` WHERE de.event_id = $1 ORDER BY d.created_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *eventRepository) GetDocument(ctx context.Context, eventID, documentID uuid.UUID) (*domain.Document, error) {
	d, err := scanDocument(r.db.QueryRowContext(ctx, documentSelect+` WHERE de.event_id = $1 AND d.id = $2`, eventID, documentID))
	if err != nil {
		return nil, mapError(err)
	}
	return &d, nil
}

func (r *eventRepository) DeleteDocument(ctx context.Context, documentID uuid.UUID) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, documentID))
}
