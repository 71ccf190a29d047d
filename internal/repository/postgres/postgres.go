package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sql.DB
	repository.ProfileRepository
	repository.OrganizationRepository
	repository.MembershipRepository
	repository.NetworkRepository
	repository.EventRepository
	repository.ProjectRepository
	repository.AreaRepository
	repository.ReportRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		ProfileRepository:      NewProfileRepository(db),
		OrganizationRepository: NewOrganizationRepository(db),
		MembershipRepository:   NewMembershipRepository(db),
		NetworkRepository:      NewNetworkRepository(db),
		EventRepository:        NewEventRepository(db),
		ProjectRepository:      NewProjectRepository(db),
		AreaRepository:         NewAreaRepository(db),
		ReportRepository:       NewReportRepository(db),
	}
}

// Migrate applies the embedded schema. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	logger.DatabaseCall("EXEC", "schema")
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// mapError translates driver errors into repository errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return &repository.ConflictError{Constraint: pqErr.Constraint}
	}
	return err
}

// withTx runs fn inside a transaction, rolling back on error
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func requireAffected(res sql.Result, err error) error {
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func exists(ctx context.Context, db *sql.DB, query string, args ...any) (bool, error) {
	var ok bool
	if err := db.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func imageColumn(field domain.ImageField, allowed ...domain.ImageField) (string, error) {
	for _, a := range allowed {
		if a == field {
			return string(field), nil
		}
	}
	return "", fmt.Errorf("unsupported image field %q", field)
}

// profileSummaries runs a query selecting id, username, first_name, last_name, avatar, email
func profileSummaries(ctx context.Context, db *sql.DB, query string, args ...any) ([]domain.ProfileSummary, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ProfileSummary
	for rows.Next() {
		var p domain.ProfileSummary
		if err := rows.Scan(&p.ID, &p.Username, &p.FirstName, &p.LastName, &p.Avatar, &p.Email); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// organizationSummaries runs a query selecting id, slug, name, logo, types
func organizationSummaries(ctx context.Context, db *sql.DB, query string, args ...any) ([]domain.OrganizationSummary, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrganizationSummary
	for rows.Next() {
		var o domain.OrganizationSummary
		if err := rows.Scan(&o.ID, &o.Slug, &o.Name, &o.Logo, pq.Array(&o.Types)); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// areas runs a query selecting id, name, type, state_ags_prefix
func areas(ctx context.Context, db *sql.DB, query string, args ...any) ([]domain.Area, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Area
	for rows.Next() {
		var a domain.Area
		var stateAGS sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &stateAGS); err != nil {
			return nil, err
		}
		a.StateAGS = stateAGS.String
		out = append(out, a)
	}
	return out, rows.Err()
}

// replaceAreas swaps the area rows of an owner inside one transaction
func replaceAreas(ctx context.Context, db *sql.DB, table, ownerColumn string, ownerID uuid.UUID, areaIDs []uuid.UUID) error {
	return withTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table, ownerColumn), ownerID); err != nil {
			return err
		}
		for _, id := range areaIDs {
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf(`INSERT INTO %s (%s, area_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, table, ownerColumn),
				ownerID, id); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

// removeAdmin deletes an admin row unless it is the last one of the owner.
// The owner row stays locked until commit, so concurrent removals of
// different admins are serialized and cannot both see a second admin.
func removeAdmin(ctx context.Context, db *sql.DB, ownerTable, table, ownerColumn string, ownerID, profileID uuid.UUID) error {
	return withTx(ctx, db, func(tx *sql.Tx) error {
		var one int
		if err := tx.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT 1 FROM %s WHERE id = $1 FOR UPDATE`, ownerTable), ownerID).Scan(&one); err != nil {
			return mapError(err)
		}

		query := fmt.Sprintf(`DELETE FROM %[1]s WHERE %[2]s = $1 AND profile_id = $2
		          AND (SELECT count(*) FROM %[1]s WHERE %[2]s = $1) > 1`, table, ownerColumn)
		res, err := tx.ExecContext(ctx, query, ownerID, profileID)
		if err != nil {
			return mapError(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		var isAdmin bool
		if err := tx.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND profile_id = $2)`, table, ownerColumn),
			ownerID, profileID).Scan(&isAdmin); err != nil {
			return err
		}
		if isAdmin {
			return repository.ErrLastAdmin
		}
		return repository.ErrNotFound
	})
}

const profileSummaryColumns = `p.id, p.username, p.first_name, p.last_name, p.avatar, p.email`
const organizationSummaryColumns = `o.id, o.slug, o.name, o.logo, o.types`
