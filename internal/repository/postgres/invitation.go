package postgres

import (
	"context"
	"database/sql"
	"time"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type membershipRepository struct {
	db *sql.DB
}

func NewMembershipRepository(db *sql.DB) repository.MembershipRepository {
	return &membershipRepository{db: db}
}

const inviteSelect = `SELECT i.organization_id, i.profile_id, i.role, i.status, i.created_at, i.updated_at,
	o.id, o.slug, o.name, o.logo, o.types,
	p.id, p.username, p.first_name, p.last_name, p.avatar, p.email
	FROM invites_for_profiles_to_join_organizations i
	JOIN organizations o ON o.id = i.organization_id
	JOIN profiles p ON p.id = i.profile_id`

// UpsertInvite creates the invite or reopens a settled one as pending
func (r *membershipRepository) UpsertInvite(ctx context.Context, inv *domain.ProfileInvite) error {
	query := `INSERT INTO invites_for_profiles_to_join_organizations (organization_id, profile_id, role, status, created_at, updated_at)
	          VALUES ($1, $2, $3, 'pending', $4, $4)
	          ON CONFLICT (organization_id, profile_id, role) DO UPDATE SET status = 'pending', updated_at = $4`
	now := time.Now().UTC()
	inv.Status, inv.CreatedAt, inv.UpdatedAt = domain.StatusPending, now, now
	_, err := r.db.ExecContext(ctx, query, inv.OrganizationID, inv.ProfileID, inv.Role, now)
	return mapError(err)
}

func (r *membershipRepository) GetInvite(ctx context.Context, organizationID, profileID uuid.UUID, role domain.Role) (*domain.ProfileInvite, error) {
	query := inviteSelect + ` WHERE i.organization_id = $1 AND i.profile_id = $2 AND i.role = $3`
	invites, err := r.queryInvites(ctx, query, organizationID, profileID, role)
	if err != nil {
		return nil, err
	}
	if len(invites) == 0 {
		return nil, repository.ErrNotFound
	}
	return &invites[0], nil
}

func (r *membershipRepository) UpdateInviteStatus(ctx context.Context, organizationID, profileID uuid.UUID, role domain.Role, status domain.Status) error {
	query := `UPDATE invites_for_profiles_to_join_organizations SET status=$1, updated_at=$2
	          WHERE organization_id=$3 AND profile_id=$4 AND role=$5 AND status='pending'`
	return requireAffected(r.db.ExecContext(ctx, query, status, time.Now().UTC(), organizationID, profileID, role))
}

func (r *membershipRepository) AcceptInvite(ctx context.Context, organizationID, profileID uuid.UUID, role domain.Role) error {
	logger.EnterMethod("membershipRepository.AcceptInvite", "organizationID", organizationID, "profileID", profileID, "role", role)
	table := "members_of_organizations"
	if role == domain.RoleAdmin {
		table = "admins_of_organizations"
	}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE invites_for_profiles_to_join_organizations SET status='accepted', updated_at=$1
		          WHERE organization_id=$2 AND profile_id=$3 AND role=$4 AND status='pending'`,
			time.Now().UTC(), organizationID, profileID, role)
		if err := requireAffected(res, err); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO `+table+` (organization_id, profile_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			organizationID, profileID)
		return mapError(err)
	})
	if err != nil {
		logger.ExitMethodWithError("membershipRepository.AcceptInvite", err)
		return err
	}
	logger.ExitMethod("membershipRepository.AcceptInvite")
	return nil
}

func (r *membershipRepository) ListInvitesForProfile(ctx context.Context, profileID uuid.UUID, status domain.Status) ([]domain.ProfileInvite, error) {
	query := inviteSelect + ` WHERE i.profile_id = $1 AND i.status = $2 ORDER BY i.created_at DESC`
	return r.queryInvites(ctx, query, profileID, status)
}

func (r *membershipRepository) ListInvitesForOrganization(ctx context.Context, organizationID uuid.UUID, status domain.Status) ([]domain.ProfileInvite, error) {
	query := inviteSelect + ` WHERE i.organization_id = $1 AND i.status = $2 ORDER BY i.created_at DESC`
	return r.queryInvites(ctx, query, organizationID, status)
}

func (r *membershipRepository) queryInvites(ctx context.Context, query string, args ...any) ([]domain.ProfileInvite, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ProfileInvite
	for rows.Next() {
		inv := domain.ProfileInvite{Organization: &domain.OrganizationSummary{}, Profile: &domain.ProfileSummary{}}
		o, p := inv.Organization, inv.Profile
		if err := rows.Scan(&inv.OrganizationID, &inv.ProfileID, &inv.Role, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
			&o.ID, &o.Slug, &o.Name, &o.Logo, pq.Array(&o.Types),
			&p.ID, &p.Username, &p.FirstName, &p.LastName, &p.Avatar, &p.Email); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
