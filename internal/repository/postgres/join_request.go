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

const requestSelect = `SELECT r.organization_id, r.profile_id, r.status, r.created_at, r.updated_at,
	o.id, o.slug, o.name, o.logo, o.types,
	p.id, p.username, p.first_name, p.last_name, p.avatar, p.email
	FROM requests_to_organizations_to_add_profiles r
	JOIN organizations o ON o.id = r.organization_id
	JOIN profiles p ON p.id = r.profile_id`

// UpsertRequest creates the request or reopens a settled one as pending
func (r *membershipRepository) UpsertRequest(ctx context.Context, req *domain.MembershipRequest) error {
	query := `INSERT INTO requests_to_organizations_to_add_profiles (organization_id, profile_id, status, created_at, updated_at)
	          VALUES ($1, $2, 'pending', $3, $3)
	          ON CONFLICT (organization_id, profile_id) DO UPDATE SET status = 'pending', updated_at = $3`
	now := time.Now().UTC()
	req.Status, req.CreatedAt, req.UpdatedAt = domain.StatusPending, now, now
	_, err := r.db.ExecContext(ctx, query, req.OrganizationID, req.ProfileID, now)
	return mapError(err)
}

func (r *membershipRepository) GetRequest(ctx context.Context, organizationID, profileID uuid.UUID) (*domain.MembershipRequest, error) {
	query := requestSelect + ` WHERE r.organization_id = $1 AND r.profile_id = $2`
	reqs, err := r.queryRequests(ctx, query, organizationID, profileID)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, repository.ErrNotFound
	}
	return &reqs[0], nil
}

func (r *membershipRepository) UpdateRequestStatus(ctx context.Context, organizationID, profileID uuid.UUID, status domain.Status) error {
	query := `UPDATE requests_to_organizations_to_add_profiles SET status=$1, updated_at=$2
	          WHERE organization_id=$3 AND profile_id=$4 AND status='pending'`
	return requireAffected(r.db.ExecContext(ctx, query, status, time.Now().UTC(), organizationID, profileID))
}

func (r *membershipRepository) AcceptRequest(ctx context.Context, organizationID, profileID uuid.UUID) error {
	logger.EnterMethod("membershipRepository.AcceptRequest", "organizationID", organizationID, "profileID", profileID)
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE requests_to_organizations_to_add_profiles SET status='accepted', updated_at=$1
		          WHERE organization_id=$2 AND profile_id=$3 AND status='pending'`,
			time.Now().UTC(), organizationID, profileID)
		if err := requireAffected(res, err); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO members_of_organizations (organization_id, profile_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			organizationID, profileID)
		return mapError(err)
	})
	if err != nil {
		logger.ExitMethodWithError("membershipRepository.AcceptRequest", err)
		return err
	}
	logger.ExitMethod("membershipRepository.AcceptRequest")
	return nil
}

func (r *membershipRepository) ListRequestsForProfile(ctx context.Context, profileID uuid.UUID, status domain.Status) ([]domain.MembershipRequest, error) {
	query := requestSelect + ` WHERE r.profile_id = $1 AND r.status = $2 ORDER BY r.created_at DESC`
	return r.queryRequests(ctx, query, profileID, status)
}

func (r *membershipRepository) ListRequestsForOrganization(ctx context.Context, organizationID uuid.UUID, status domain.Status) ([]domain.MembershipRequest, error) {
	query := requestSelect + ` WHERE r.organization_id = $1 AND r.status = $2 ORDER BY r.created_at DESC`
	return r.queryRequests(ctx, query, organizationID, status)
}

func (r *membershipRepository) queryRequests(ctx context.Context, query string, args ...any) ([]domain.MembershipRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MembershipRequest
	for rows.Next() {
		req := domain.MembershipRequest{Organization: &domain.OrganizationSummary{}, Profile: &domain.ProfileSummary{}}
		o, p := req.Organization, req.Profile
		if err := rows.Scan(&req.OrganizationID, &req.ProfileID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
			&o.ID, &o.Slug, &o.Name, &o.Logo, pq.Array(&o.Types),
			&p.ID, &p.Username, &p.FirstName, &p.LastName, &p.Avatar, &p.Email); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}
