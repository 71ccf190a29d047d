package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/repository"

	"github.com/google/uuid"
)

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `id, slug, name, subline, description, start_time, end_time, participation_until, participant_limit,
	venue_name, venue_street, venue_street_number, venue_zip_code, venue_city, published, canceled, parent_event_id,
	background, created_at, updated_at`

const eventSummaryColumns = `e.id, e.slug, e.name, e.subline, e.start_time, e.end_time, e.background, e.published, e.canceled`

var eventRelationTables = map[domain.Relation]string{
	domain.RelationAdmins:   "admins_of_events",
	domain.RelationTeam:     "team_members_of_events",
	domain.RelationSpeakers: "speakers_of_events",
}

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var until sql.NullTime
	var parent uuid.NullUUID
	err := row.Scan(&e.ID, &e.Slug, &e.Name, &e.Subline, &e.Description, &e.StartTime, &e.EndTime, &until,
		&e.ParticipantLimit, &e.VenueName, &e.VenueStreet, &e.VenueStreetNumber, &e.VenueZipCode, &e.VenueCity,
		&e.Published, &e.Canceled, &parent, &e.Background, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if until.Valid {
		e.ParticipationUntil = &until.Time
	}
	if parent.Valid {
		e.ParentEventID = &parent.UUID
	}
	return e, nil
}

func eventSummaries(ctx context.Context, db *sql.DB, query string, args ...any) ([]domain.EventSummary, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EventSummary
	for rows.Next() {
		var e domain.EventSummary
		if err := rows.Scan(&e.ID, &e.Slug, &e.Name, &e.Subline, &e.StartTime, &e.EndTime, &e.Background,
			&e.Published, &e.Canceled); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func eventRelationTable(relation domain.Relation) (string, error) {
	table, ok := eventRelationTables[relation]
	if !ok {
		return "", fmt.Errorf("unknown event relation %q", relation)
	}
	return table, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event, creatorID uuid.UUID) error {
	logger.EnterMethod("eventRepository.Create", "slug", e.Slug, "creatorID", creatorID)
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `INSERT INTO events (slug, name, subline, start_time, end_time, participant_limit, parent_event_id, published, created_at, updated_at)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9) RETURNING id`
		if err := tx.QueryRowContext(ctx, query, e.Slug, e.Name, e.Subline, e.StartTime, e.EndTime, e.ParticipantLimit,
			e.ParentEventID, e.Published, now).Scan(&e.ID); err != nil {
			return mapError(err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO admins_of_events (event_id, profile_id) VALUES ($1, $2)`, e.ID, creatorID); err != nil {
			return mapError(err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO team_members_of_events (event_id, profile_id) VALUES ($1, $2)`, e.ID, creatorID); err != nil {
			return mapError(err)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("eventRepository.Create", err, "slug", e.Slug)
		return err
	}
	logger.ExitMethod("eventRepository.Create", "eventID", e.ID)
	return nil
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE slug = $1`
	return scanEvent(r.db.QueryRowContext(ctx, query, slug))
}

func (r *eventRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM events WHERE slug = $1)`, slug)
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]domain.EventSummary, int, error) {
	page := filter.Page.Normalize()
	clause := ` WHERE e.end_time >= $1 AND (e.published`
	args := []any{filter.From}
	if filter.ViewerID != nil {
		args = append(args, *filter.ViewerID)
		clause += ` OR EXISTS(SELECT 1 FROM admins_of_events a WHERE a.event_id = e.id AND a.profile_id = $2)`
	}
	clause += `)`

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM events e`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM events e%s ORDER BY e.start_time LIMIT $%d OFFSET $%d`,
		eventSummaryColumns, clause, len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())
	events, err := eventSummaries(ctx, r.db, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `UPDATE events SET name=$1, subline=$2, description=$3, start_time=$4, end_time=$5, participation_until=$6,
	          participant_limit=$7, venue_name=$8, venue_street=$9, venue_street_number=$10, venue_zip_code=$11,
	          venue_city=$12, updated_at=$13 WHERE id=$14`
	e.UpdatedAt = time.Now().UTC()
	return requireAffected(r.db.ExecContext(ctx, query, e.Name, e.Subline, e.Description, e.StartTime, e.EndTime,
		e.ParticipationUntil, e.ParticipantLimit, e.VenueName, e.VenueStreet, e.VenueStreetNumber, e.VenueZipCode,
		e.VenueCity, e.UpdatedAt, e.ID))
}

func (r *eventRepository) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	return requireAffected(r.db.ExecContext(ctx, `UPDATE events SET published=$1, updated_at=$2 WHERE id=$3`,
		published, time.Now().UTC(), id))
}

func (r *eventRepository) SetCanceled(ctx context.Context, id uuid.UUID, canceled bool) error {
	return requireAffected(r.db.ExecContext(ctx, `UPDATE events SET canceled=$1, updated_at=$2 WHERE id=$3`,
		canceled, time.Now().UTC(), id))
}

func (r *eventRepository) UpdateImage(ctx context.Context, id uuid.UUID, field domain.ImageField, key string) error {
	column, err := imageColumn(field, domain.ImageBackground)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE events SET %s=$1, updated_at=$2 WHERE id=$3`, column)
	return requireAffected(r.db.ExecContext(ctx, query, key, time.Now().UTC(), id))
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id))
}

// ListChildren returns published child events plus the drafts viewerID administers
func (r *eventRepository) ListChildren(ctx context.Context, id, viewerID uuid.UUID) ([]domain.EventSummary, error) {
	query := `SELECT ` + eventSummaryColumns + ` FROM events e
	          WHERE e.parent_event_id = $1 AND (e.published
	            OR EXISTS(SELECT 1 FROM admins_of_events a WHERE a.event_id = e.id AND a.profile_id = $2))
	          ORDER BY e.start_time`
	return eventSummaries(ctx, r.db, query, id, viewerID)
}

func (r *eventRepository) ListForProfile(ctx context.Context, profileID uuid.UUID, from time.Time) ([]domain.EventSummary, error) {
	query := `SELECT ` + eventSummaryColumns + ` FROM events e
	          WHERE e.published AND e.end_time >= $2 AND (
	            EXISTS(SELECT 1 FROM participants_of_events x WHERE x.event_id = e.id AND x.profile_id = $1)
	            OR EXISTS(SELECT 1 FROM speakers_of_events x WHERE x.event_id = e.id AND x.profile_id = $1))
	          ORDER BY e.start_time`
	return eventSummaries(ctx, r.db, query, profileID, from)
}

func (r *eventRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID, from time.Time) ([]domain.EventSummary, error) {
	query := `SELECT ` + eventSummaryColumns + ` FROM events e
	          JOIN responsible_organizations_of_events ro ON ro.event_id = e.id
	          WHERE ro.organization_id = $1 AND e.published AND e.end_time >= $2
	          ORDER BY e.start_time`
	return eventSummaries(ctx, r.db, query, organizationID, from)
}

func (r *eventRepository) IsAdmin(ctx context.Context, eventID, profileID uuid.UUID) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM admins_of_events WHERE event_id = $1 AND profile_id = $2)`, eventID, profileID)
}

func (r *eventRepository) ListRelation(ctx context.Context, eventID uuid.UUID, relation domain.Relation) ([]domain.ProfileSummary, error) {
	table, err := eventRelationTable(relation)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + profileSummaryColumns + ` FROM profiles p
	          JOIN ` + table + ` x ON x.profile_id = p.id
	          WHERE x.event_id = $1 ORDER BY x.created_at`
	return profileSummaries(ctx, r.db, query, eventID)
}

func (r *eventRepository) AddRelation(ctx context.Context, eventID uuid.UUID, relation domain.Relation, profileID uuid.UUID) error {
	table, err := eventRelationTable(relation)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO `+table+` (event_id, profile_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		eventID, profileID)
	return mapError(err)
}

func (r *eventRepository) RemoveRelation(ctx context.Context, eventID uuid.UUID, relation domain.Relation, profileID uuid.UUID) error {
	table, err := eventRelationTable(relation)
	if err != nil {
		return err
	}
	if relation == domain.RelationAdmins {
		return removeAdmin(ctx, r.db, "events", table, "event_id", eventID, profileID)
	}
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE event_id = $1 AND profile_id = $2`,
		eventID, profileID))
}

func (r *eventRepository) ListResponsibleOrganizations(ctx context.Context, eventID uuid.UUID) ([]domain.OrganizationSummary, error) {
	query := `SELECT ` + organizationSummaryColumns + ` FROM organizations o
	          JOIN responsible_organizations_of_events ro ON ro.organization_id = o.id
	          WHERE ro.event_id = $1 ORDER BY o.name`
	return organizationSummaries(ctx, r.db, query, eventID)
}

func (r *eventRepository) AddResponsibleOrganization(ctx context.Context, eventID, organizationID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO responsible_organizations_of_events (event_id, organization_id)
	          VALUES ($1, $2) ON CONFLICT DO NOTHING`, eventID, organizationID)
	return mapError(err)
}

func (r *eventRepository) RemoveResponsibleOrganization(ctx context.Context, eventID, organizationID uuid.UUID) error {
	return requireAffected(r.db.ExecContext(ctx,
		`DELETE FROM responsible_organizations_of_events WHERE event_id = $1 AND organization_id = $2`, eventID, organizationID))
}
