package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type organizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) repository.OrganizationRepository {
	return &organizationRepository{db: db}
}

const organizationColumns = `id, slug, name, email, phone, website, street, street_number, zip_code, city,
	latitude, longitude, bio, support_message, logo, background, types, public_fields, score, created_at, updated_at`

func scanOrganization(row interface{ Scan(...any) error }) (*domain.Organization, error) {
	o := &domain.Organization{}
	var lat, lng sql.NullFloat64
	err := row.Scan(&o.ID, &o.Slug, &o.Name, &o.Email, &o.Phone, &o.Website, &o.Street, &o.StreetNumber, &o.ZipCode,
		&o.City, &lat, &lng, &o.Bio, &o.SupportMessage, &o.Logo, &o.Background, pq.Array(&o.Types),
		pq.Array(&o.PublicFields), &o.Score, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if lat.Valid && lng.Valid {
		o.Latitude, o.Longitude = &lat.Float64, &lng.Float64
	}
	return o, nil
}

func (r *organizationRepository) Create(ctx context.Context, o *domain.Organization, creatorID uuid.UUID) error {
	logger.EnterMethod("organizationRepository.Create", "slug", o.Slug, "creatorID", creatorID)
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	if o.Types == nil {
		o.Types = []string{}
	}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `INSERT INTO organizations (slug, name, email, phone, website, types, public_fields, created_at, updated_at)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING id`
		if err := tx.QueryRowContext(ctx, query, o.Slug, o.Name, o.Email, o.Phone, o.Website, pq.Array(o.Types),
			pq.Array(o.PublicFields), now).Scan(&o.ID); err != nil {
			return mapError(err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO admins_of_organizations (organization_id, profile_id) VALUES ($1, $2)`, o.ID, creatorID); err != nil {
			return mapError(err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO members_of_organizations (organization_id, profile_id) VALUES ($1, $2)`, o.ID, creatorID); err != nil {
			return mapError(err)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("organizationRepository.Create", err, "slug", o.Slug)
		return err
	}
	logger.ExitMethod("organizationRepository.Create", "organizationID", o.ID)
	return nil
}

func (r *organizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`
	return scanOrganization(r.db.QueryRowContext(ctx, query, id))
}

func (r *organizationRepository) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE slug = $1`
	return scanOrganization(r.db.QueryRowContext(ctx, query, slug))
}

func (r *organizationRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM organizations WHERE slug = $1)`, slug)
}

func (r *organizationRepository) List(ctx context.Context, filter domain.OrganizationFilter) ([]domain.OrganizationSummary, int, error) {
	page := filter.Page.Normalize()

	var where []string
	var args []any
	if filter.AreaID != nil {
		args = append(args, *filter.AreaID)
		where = append(where, fmt.Sprintf(`EXISTS(SELECT 1 FROM organization_areas oa WHERE oa.organization_id = o.id AND oa.area_id = $%d)`, len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf(`$%d = ANY(o.types)`, len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM organizations o`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM organizations o%s ORDER BY o.score DESC, o.name LIMIT $%d OFFSET $%d`,
		organizationSummaryColumns, clause, len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())
	orgs, err := organizationSummaries(ctx, r.db, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return orgs, total, nil
}

func (r *organizationRepository) Update(ctx context.Context, o *domain.Organization) error {
	query := `UPDATE organizations SET name=$1, email=$2, phone=$3, website=$4, street=$5, street_number=$6, zip_code=$7,
	          city=$8, latitude=$9, longitude=$10, bio=$11, support_message=$12, public_fields=$13, updated_at=$14
	          WHERE id=$15`
	o.UpdatedAt = time.Now().UTC()
	return requireAffected(r.db.ExecContext(ctx, query, o.Name, o.Email, o.Phone, o.Website, o.Street, o.StreetNumber,
		o.ZipCode, o.City, o.Latitude, o.Longitude, o.Bio, o.SupportMessage, pq.Array(o.PublicFields), o.UpdatedAt, o.ID))
}

func (r *organizationRepository) UpdateTypes(ctx context.Context, id uuid.UUID, types []string) error {
	if types == nil {
		types = []string{}
	}
	query := `UPDATE organizations SET types=$1, updated_at=$2 WHERE id=$3`
	return requireAffected(r.db.ExecContext(ctx, query, pq.Array(types), time.Now().UTC(), id))
}

func (r *organizationRepository) UpdateImage(ctx context.Context, id uuid.UUID, field domain.ImageField, key string) error {
	column, err := imageColumn(field, domain.ImageLogo, domain.ImageBackground)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE organizations SET %s=$1, updated_at=$2 WHERE id=$3`, column)
	return requireAffected(r.db.ExecContext(ctx, query, key, time.Now().UTC(), id))
}

func (r *organizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, id))
}

func (r *organizationRepository) ListAreas(ctx context.Context, organizationID uuid.UUID) ([]domain.Area, error) {
	query := `SELECT a.id, a.name, a.type, a.state_ags_prefix FROM areas a
	          JOIN organization_areas oa ON oa.area_id = a.id
	          WHERE oa.organization_id = $1 ORDER BY a.name`
	return areas(ctx, r.db, query, organizationID)
}

func (r *organizationRepository) ReplaceAreas(ctx context.Context, organizationID uuid.UUID, areaIDs []uuid.UUID) error {
	return replaceAreas(ctx, r.db, "organization_areas", "organization_id", organizationID, areaIDs)
}

func (r *organizationRepository) IsAdmin(ctx context.Context, organizationID, profileID uuid.UUID) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM admins_of_organizations WHERE organization_id = $1 AND profile_id = $2)`,
		organizationID, profileID)
}

func (r *organizationRepository) IsMember(ctx context.Context, organizationID, profileID uuid.UUID) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM members_of_organizations WHERE organization_id = $1 AND profile_id = $2)`,
		organizationID, profileID)
}

func (r *organizationRepository) ListAdmins(ctx context.Context, organizationID uuid.UUID) ([]domain.ProfileSummary, error) {
	query := `SELECT ` + profileSummaryColumns + ` FROM profiles p
	          JOIN admins_of_organizations a ON a.profile_id = p.id
	          WHERE a.organization_id = $1 ORDER BY a.created_at`
	return profileSummaries(ctx, r.db, query, organizationID)
}

func (r *organizationRepository) ListTeam(ctx context.Context, organizationID uuid.UUID) ([]domain.ProfileSummary, error) {
	query := `SELECT ` + profileSummaryColumns + ` FROM profiles p
	          JOIN members_of_organizations m ON m.profile_id = p.id
	          WHERE m.organization_id = $1 ORDER BY m.created_at`
	return profileSummaries(ctx, r.db, query, organizationID)
}

func (r *organizationRepository) RemoveAdmin(ctx context.Context, organizationID, profileID uuid.UUID) error {
	return removeAdmin(ctx, r.db, "organizations", "admins_of_organizations", "organization_id", organizationID, profileID)
}

func (r *organizationRepository) RemoveMember(ctx context.Context, organizationID, profileID uuid.UUID) error {
	return requireAffected(r.db.ExecContext(ctx,
		`DELETE FROM members_of_organizations WHERE organization_id = $1 AND profile_id = $2`, organizationID, profileID))
}

func (r *organizationRepository) ListAdministeredBy(ctx context.Context, profileID uuid.UUID) ([]domain.OrganizationSummary, error) {
	query := `SELECT ` + organizationSummaryColumns + ` FROM organizations o
	          JOIN admins_of_organizations a ON a.organization_id = o.id
	          WHERE a.profile_id = $1 ORDER BY o.name`
	return organizationSummaries(ctx, r.db, query, profileID)
}

func (r *organizationRepository) ListMemberOf(ctx context.Context, profileID uuid.UUID) ([]domain.OrganizationSummary, error) {
	query := `SELECT ` + organizationSummaryColumns + ` FROM organizations o
	          JOIN members_of_organizations m ON m.organization_id = o.id
	          WHERE m.profile_id = $1 ORDER BY o.name`
	return organizationSummaries(ctx, r.db, query, profileID)
}

func (r *organizationRepository) ListScoreFlags(ctx context.Context) ([]domain.OrganizationScoreFlags, error) {
	query := `
		SELECT o.id,
			o.logo <> '',
			o.background <> '',
			o.bio <> '',
			o.latitude IS NOT NULL,
			EXISTS(SELECT 1 FROM organization_areas x WHERE x.organization_id = o.id),
			(SELECT count(*) FROM members_of_organizations x WHERE x.organization_id = o.id) > 1,
			EXISTS(SELECT 1 FROM responsible_organizations_of_events x WHERE x.organization_id = o.id),
			EXISTS(SELECT 1 FROM responsible_organizations_of_projects x WHERE x.organization_id = o.id),
			EXISTS(SELECT 1 FROM members_of_networks x WHERE x.organization_id = o.id OR x.network_id = o.id)
		FROM organizations o`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrganizationScoreFlags
	for rows.Next() {
		var f domain.OrganizationScoreFlags
		if err := rows.Scan(&f.OrganizationID, &f.HasLogo, &f.HasBackground, &f.HasBio, &f.HasAddress, &f.HasAreas,
			&f.HasTeam, &f.HasEvent, &f.HasProject, &f.HasNetwork); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *organizationRepository) UpdateScore(ctx context.Context, id uuid.UUID, score int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE organizations SET score=$1 WHERE id=$2`, score, id)
	return err
}
