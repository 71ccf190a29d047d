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

type projectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) repository.ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `id, slug, name, headline, excerpt, description, logo, background, website, published, created_at, updated_at`

const projectSummaryColumns = `pr.id, pr.slug, pr.name, pr.excerpt, pr.logo, pr.published`

var projectRelationTables = map[domain.Relation]string{
	domain.RelationAdmins: "admins_of_projects",
	domain.RelationTeam:   "team_members_of_projects",
}

func projectRelationTable(relation domain.Relation) (string, error) {
	table, ok := projectRelationTables[relation]
	if !ok {
		return "", fmt.Errorf("unknown project relation %q", relation)
	}
	return table, nil
}

func projectSummaries(ctx context.Context, db *sql.DB, query string, args ...any) ([]domain.ProjectSummary, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ProjectSummary
	for rows.Next() {
		var p domain.ProjectSummary
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Excerpt, &p.Logo, &p.Published); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *projectRepository) Create(ctx context.Context, p *domain.Project, creatorID uuid.UUID) error {
	logger.EnterMethod("projectRepository.Create", "slug", p.Slug, "creatorID", creatorID)
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `INSERT INTO projects (slug, name, headline, excerpt, published, created_at, updated_at)
		          VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`
		if err := tx.QueryRowContext(ctx, query, p.Slug, p.Name, p.Headline, p.Excerpt, p.Published, now).Scan(&p.ID); err != nil {
			return mapError(err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO admins_of_projects (project_id, profile_id) VALUES ($1, $2)`, p.ID, creatorID); err != nil {
			return mapError(err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO team_members_of_projects (project_id, profile_id) VALUES ($1, $2)`, p.ID, creatorID); err != nil {
			return mapError(err)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("projectRepository.Create", err, "slug", p.Slug)
		return err
	}
	logger.ExitMethod("projectRepository.Create", "projectID", p.ID)
	return nil
}

func (r *projectRepository) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	p := &domain.Project{}
	query := `SELECT ` + projectColumns + ` FROM projects WHERE slug = $1`
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&p.ID, &p.Slug, &p.Name, &p.Headline, &p.Excerpt, &p.Description,
		&p.Logo, &p.Background, &p.Website, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *projectRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM projects WHERE slug = $1)`, slug)
}

func (r *projectRepository) List(ctx context.Context, page domain.Page) ([]domain.ProjectSummary, int, error) {
	page = page.Normalize()
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM projects WHERE published`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + projectSummaryColumns + ` FROM projects pr WHERE pr.published ORDER BY pr.name LIMIT $1 OFFSET $2`
	projects, err := projectSummaries(ctx, r.db, query, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *projectRepository) Update(ctx context.Context, p *domain.Project) error {
	query := `UPDATE projects SET name=$1, headline=$2, excerpt=$3, description=$4, website=$5, published=$6, updated_at=$7
	          WHERE id=$8`
	p.UpdatedAt = time.Now().UTC()
	return requireAffected(r.db.ExecContext(ctx, query, p.Name, p.Headline, p.Excerpt, p.Description, p.Website,
		p.Published, p.UpdatedAt, p.ID))
}

func (r *projectRepository) UpdateImage(ctx context.Context, id uuid.UUID, field domain.ImageField, key string) error {
	column, err := imageColumn(field, domain.ImageLogo, domain.ImageBackground)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE projects SET %s=$1, updated_at=$2 WHERE id=$3`, column)
	return requireAffected(r.db.ExecContext(ctx, query, key, time.Now().UTC(), id))
}

func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id))
}

func (r *projectRepository) ListForProfile(ctx context.Context, profileID uuid.UUID) ([]domain.ProjectSummary, error) {
	query := `SELECT ` + projectSummaryColumns + ` FROM projects pr
	          JOIN team_members_of_projects t ON t.project_id = pr.id
	          WHERE t.profile_id = $1 AND pr.published ORDER BY pr.name`
	return projectSummaries(ctx, r.db, query, profileID)
}

func (r *projectRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]domain.ProjectSummary, error) {
	query := `SELECT ` + projectSummaryColumns + ` FROM projects pr
	          JOIN responsible_organizations_of_projects ro ON ro.project_id = pr.id
	          WHERE ro.organization_id = $1 AND pr.published ORDER BY pr.name`
	return projectSummaries(ctx, r.db, query, organizationID)
}

func (r *projectRepository) IsAdmin(ctx context.Context, projectID, profileID uuid.UUID) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM admins_of_projects WHERE project_id = $1 AND profile_id = $2)`, projectID, profileID)
}

func (r *projectRepository) ListRelation(ctx context.Context, projectID uuid.UUID, relation domain.Relation) ([]domain.ProfileSummary, error) {
	table, err := projectRelationTable(relation)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + profileSummaryColumns + ` FROM profiles p
	          JOIN ` + table + ` x ON x.profile_id = p.id
	          WHERE x.project_id = $1 ORDER BY x.created_at`
	return profileSummaries(ctx, r.db, query, projectID)
}

func (r *projectRepository) AddRelation(ctx context.Context, projectID uuid.UUID, relation domain.Relation, profileID uuid.UUID) error {
	table, err := projectRelationTable(relation)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO `+table+` (project_id, profile_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		projectID, profileID)
	return mapError(err)
}

func (r *projectRepository) RemoveRelation(ctx context.Context, projectID uuid.UUID, relation domain.Relation, profileID uuid.UUID) error {
	table, err := projectRelationTable(relation)
	if err != nil {
		return err
	}
	if relation == domain.RelationAdmins {
		return removeAdmin(ctx, r.db, "projects", table, "project_id", projectID, profileID)
	}
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE project_id = $1 AND profile_id = $2`,
		projectID, profileID))
}

func (r *projectRepository) ListResponsibleOrganizations(ctx context.Context, projectID uuid.UUID) ([]domain.OrganizationSummary, error) {
	query := `SELECT ` + organizationSummaryColumns + ` FROM organizations o
	          JOIN responsible_organizations_of_projects ro ON ro.organization_id = o.id
	          WHERE ro.project_id = $1 ORDER BY o.name`
	return organizationSummaries(ctx, r.db, query, projectID)
}

func (r *projectRepository) AddResponsibleOrganization(ctx context.Context, projectID, organizationID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO responsible_organizations_of_projects (project_id, organization_id)
	          VALUES ($1, $2) ON CONFLICT DO NOTHING`, projectID, organizationID)
	return mapError(err)
}

func (r *projectRepository) RemoveResponsibleOrganization(ctx context.Context, projectID, organizationID uuid.UUID) error {
	return requireAffected(r.db.ExecContext(ctx,
		`DELETE FROM responsible_organizations_of_projects WHERE project_id = $1 AND organization_id = $2`, projectID, organizationID))
}

func (r *projectRepository) CreateAward(ctx context.Context, a *domain.Award) error {
	query := `INSERT INTO awards (slug, title, subline, date, logo) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return mapError(r.db.QueryRowContext(ctx, query, a.Slug, a.Title, a.Subline, a.Date, a.Logo).Scan(&a.ID))
}

func (r *projectRepository) AddAward(ctx context.Context, projectID, awardID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO awards_of_projects (project_id, award_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		projectID, awardID)
	return mapError(err)
}

func (r *projectRepository) ListAwards(ctx context.Context, projectID uuid.UUID) ([]domain.Award, error) {
	query := `SELECT a.id, a.slug, a.title, a.subline, a.date, a.logo FROM awards a
	          JOIN awards_of_projects ap ON ap.award_id = a.id
	          WHERE ap.project_id = $1 ORDER BY a.date DESC`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Award
	for rows.Next() {
		var a domain.Award
		if err := rows.Scan(&a.ID, &a.Slug, &a.Title, &a.Subline, &a.Date, &a.Logo); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
