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
	"github.com/lib/pq"
)

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `id, username, email, password_hash, first_name, last_name, academic_title, position,
	bio, phone, website, avatar, background, public_fields, score, is_platform_admin, terms_accepted, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*domain.Profile, error) {
	p := &domain.Profile{}
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.PasswordHash, &p.FirstName, &p.LastName, &p.AcademicTitle, &p.Position,
		&p.Bio, &p.Phone, &p.Website, &p.Avatar, &p.Background, pq.Array(&p.PublicFields), &p.Score, &p.IsPlatformAdmin,
		&p.TermsAccepted, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *profileRepository) Create(ctx context.Context, p *domain.Profile) error {
	query := `INSERT INTO profiles (username, email, password_hash, first_name, last_name, academic_title, position,
	          bio, phone, website, public_fields, is_platform_admin, terms_accepted, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14) RETURNING id`
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	err := r.db.QueryRowContext(ctx, query, p.Username, p.Email, p.PasswordHash, p.FirstName, p.LastName, p.AcademicTitle,
		p.Position, p.Bio, p.Phone, p.Website, pq.Array(p.PublicFields), p.IsPlatformAdmin, p.TermsAccepted, now).Scan(&p.ID)
	return mapError(err)
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, query, id))
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE username = $1`
	return scanProfile(r.db.QueryRowContext(ctx, query, username))
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE lower(email) = lower($1)`
	return scanProfile(r.db.QueryRowContext(ctx, query, email))
}

func (r *profileRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM profiles WHERE username = $1)`, username)
}

func (r *profileRepository) Update(ctx context.Context, p *domain.Profile) error {
	query := `UPDATE profiles SET first_name=$1, last_name=$2, academic_title=$3, position=$4, bio=$5, phone=$6,
	          website=$7, public_fields=$8, updated_at=$9 WHERE id=$10`
	p.UpdatedAt = time.Now().UTC()
	return requireAffected(r.db.ExecContext(ctx, query, p.FirstName, p.LastName, p.AcademicTitle, p.Position, p.Bio,
		p.Phone, p.Website, pq.Array(p.PublicFields), p.UpdatedAt, p.ID))
}

func (r *profileRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	query := `UPDATE profiles SET email=$1, updated_at=$2 WHERE id=$3`
	return requireAffected(r.db.ExecContext(ctx, query, email, time.Now().UTC(), id))
}

func (r *profileRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE profiles SET password_hash=$1, updated_at=$2 WHERE id=$3`
	return requireAffected(r.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), id))
}

func (r *profileRepository) UpdateImage(ctx context.Context, id uuid.UUID, field domain.ImageField, key string) error {
	column, err := imageColumn(field, domain.ImageAvatar, domain.ImageBackground)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE profiles SET %s=$1, updated_at=$2 WHERE id=$3`, column)
	return requireAffected(r.db.ExecContext(ctx, query, key, time.Now().UTC(), id))
}

func (r *profileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id))
}

func (r *profileRepository) ListAreas(ctx context.Context, profileID uuid.UUID) ([]domain.Area, error) {
	query := `SELECT a.id, a.name, a.type, a.state_ags_prefix FROM areas a
	          JOIN profile_areas pa ON pa.area_id = a.id
	          WHERE pa.profile_id = $1 ORDER BY a.name`
	return areas(ctx, r.db, query, profileID)
}

func (r *profileRepository) ReplaceAreas(ctx context.Context, profileID uuid.UUID, areaIDs []uuid.UUID) error {
	return replaceAreas(ctx, r.db, "profile_areas", "profile_id", profileID, areaIDs)
}

func (r *profileRepository) ListSoleAdministrations(ctx context.Context, profileID uuid.UUID) ([]domain.EntityRef, error) {
	logger.EnterMethod("profileRepository.ListSoleAdministrations", "profileID", profileID)
	query := `
		SELECT 'organization', o.id, o.slug, o.name FROM organizations o
		JOIN admins_of_organizations a ON a.organization_id = o.id AND a.profile_id = $1
		WHERE (SELECT count(*) FROM admins_of_organizations x WHERE x.organization_id = o.id) = 1
		UNION ALL
		SELECT 'event', e.id, e.slug, e.name FROM events e
		JOIN admins_of_events a ON a.event_id = e.id AND a.profile_id = $1
		WHERE (SELECT count(*) FROM admins_of_events x WHERE x.event_id = e.id) = 1
		UNION ALL
		SELECT 'project', p.id, p.slug, p.name FROM projects p
		JOIN admins_of_projects a ON a.project_id = p.id AND a.profile_id = $1
		WHERE (SELECT count(*) FROM admins_of_projects x WHERE x.project_id = p.id) = 1`
	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		logger.ExitMethodWithError("profileRepository.ListSoleAdministrations", err)
		return nil, err
	}
	defer rows.Close()

	var refs []domain.EntityRef
	for rows.Next() {
		var ref domain.EntityRef
		if err := rows.Scan(&ref.Type, &ref.ID, &ref.Slug, &ref.Name); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	logger.ExitMethod("profileRepository.ListSoleAdministrations", "count", len(refs))
	return refs, rows.Err()
}

func (r *profileRepository) ListScoreFlags(ctx context.Context) ([]domain.ProfileScoreFlags, error) {
	query := `
		SELECT p.id,
			p.avatar <> '',
			p.background <> '',
			p.bio <> '',
			p.position <> '',
			EXISTS(SELECT 1 FROM profile_areas x WHERE x.profile_id = p.id),
			EXISTS(SELECT 1 FROM members_of_organizations x WHERE x.profile_id = p.id),
			EXISTS(SELECT 1 FROM participants_of_events x WHERE x.profile_id = p.id)
				OR EXISTS(SELECT 1 FROM speakers_of_events x WHERE x.profile_id = p.id),
			EXISTS(SELECT 1 FROM team_members_of_projects x WHERE x.profile_id = p.id),
			p.public_fields && ARRAY['email', 'phone', 'website']::text[]
		FROM profiles p`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ProfileScoreFlags
	for rows.Next() {
		var f domain.ProfileScoreFlags
		if err := rows.Scan(&f.ProfileID, &f.HasAvatar, &f.HasBackground, &f.HasBio, &f.HasPosition, &f.HasAreas,
			&f.HasOrganization, &f.HasEvent, &f.HasProject, &f.HasPublicContacts); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *profileRepository) UpdateScore(ctx context.Context, id uuid.UUID, score int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE profiles SET score=$1 WHERE id=$2`, score, id)
	return err
}
