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

type networkRepository struct {
	db *sql.DB
}

func NewNetworkRepository(db *sql.DB) repository.NetworkRepository {
	return &networkRepository{db: db}
}

func joinTable(kind domain.NetworkJoinKind) (string, error) {
	switch kind {
	case domain.NetworkJoinInvite:
		return "invites_for_organizations_to_join_networks", nil
	case domain.NetworkJoinRequest:
		return "requests_to_networks_to_add_organizations", nil
	}
	return "", fmt.Errorf("unknown network join kind %q", kind)
}

func oppositeKind(kind domain.NetworkJoinKind) domain.NetworkJoinKind {
	if kind == domain.NetworkJoinInvite {
		return domain.NetworkJoinRequest
	}
	return domain.NetworkJoinInvite
}

func joinSelect(table string) string {
	return `SELECT j.network_id, j.organization_id, j.status, j.created_at, j.updated_at,
	n.id, n.slug, n.name, n.logo, n.types,
	o.id, o.slug, o.name, o.logo, o.types
	FROM ` + table + ` j
	JOIN organizations n ON n.id = j.network_id
	JOIN organizations o ON o.id = j.organization_id`
}

// UpsertJoin creates the invite or request, reopening a settled one as pending
func (r *networkRepository) UpsertJoin(ctx context.Context, join *domain.NetworkJoin) error {
	table, err := joinTable(join.Kind)
	if err != nil {
		return err
	}
	query := `INSERT INTO ` + table + ` (network_id, organization_id, status, created_at, updated_at)
	          VALUES ($1, $2, 'pending', $3, $3)
	          ON CONFLICT (network_id, organization_id) DO UPDATE SET status = 'pending', updated_at = $3`
	now := time.Now().UTC()
	join.Status, join.CreatedAt, join.UpdatedAt = domain.StatusPending, now, now
	_, err = r.db.ExecContext(ctx, query, join.NetworkID, join.OrganizationID, now)
	return mapError(err)
}

func (r *networkRepository) GetJoin(ctx context.Context, kind domain.NetworkJoinKind, networkID, organizationID uuid.UUID) (*domain.NetworkJoin, error) {
	table, err := joinTable(kind)
	if err != nil {
		return nil, err
	}
	joins, err := r.queryJoins(ctx, kind, joinSelect(table)+` WHERE j.network_id = $1 AND j.organization_id = $2`, networkID, organizationID)
	if err != nil {
		return nil, err
	}
	if len(joins) == 0 {
		return nil, repository.ErrNotFound
	}
	return &joins[0], nil
}

func (r *networkRepository) UpdateJoinStatus(ctx context.Context, kind domain.NetworkJoinKind, networkID, organizationID uuid.UUID, status domain.Status) error {
	table, err := joinTable(kind)
	if err != nil {
		return err
	}
	query := `UPDATE ` + table + ` SET status=$1, updated_at=$2 WHERE network_id=$3 AND organization_id=$4 AND status='pending'`
	return requireAffected(r.db.ExecContext(ctx, query, status, time.Now().UTC(), networkID, organizationID))
}

func (r *networkRepository) AcceptJoin(ctx context.Context, kind domain.NetworkJoinKind, networkID, organizationID uuid.UUID) error {
	logger.EnterMethod("networkRepository.AcceptJoin", "kind", kind, "networkID", networkID, "organizationID", organizationID)
	table, err := joinTable(kind)
	if err != nil {
		return err
	}
	opposite, _ := joinTable(oppositeKind(kind))
	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE `+table+` SET status='accepted', updated_at=$1
		          WHERE network_id=$2 AND organization_id=$3 AND status='pending'`,
			time.Now().UTC(), networkID, organizationID)
		if err := requireAffected(res, err); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO members_of_networks (network_id, organization_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			networkID, organizationID); err != nil {
			return mapError(err)
		}
		// a pending join in the other direction is settled by the membership
		_, err = tx.ExecContext(ctx, `UPDATE `+opposite+` SET status='accepted', updated_at=$1
		          WHERE network_id=$2 AND organization_id=$3 AND status='pending'`,
			time.Now().UTC(), networkID, organizationID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("networkRepository.AcceptJoin", err)
		return err
	}
	logger.ExitMethod("networkRepository.AcceptJoin")
	return nil
}

func (r *networkRepository) ListJoinsForNetwork(ctx context.Context, kind domain.NetworkJoinKind, networkID uuid.UUID, status domain.Status) ([]domain.NetworkJoin, error) {
	table, err := joinTable(kind)
	if err != nil {
		return nil, err
	}
	return r.queryJoins(ctx, kind, joinSelect(table)+` WHERE j.network_id = $1 AND j.status = $2 ORDER BY j.created_at DESC`, networkID, status)
}

func (r *networkRepository) ListJoinsForOrganization(ctx context.Context, kind domain.NetworkJoinKind, organizationID uuid.UUID, status domain.Status) ([]domain.NetworkJoin, error) {
	table, err := joinTable(kind)
	if err != nil {
		return nil, err
	}
	return r.queryJoins(ctx, kind, joinSelect(table)+` WHERE j.organization_id = $1 AND j.status = $2 ORDER BY j.created_at DESC`, organizationID, status)
}

func (r *networkRepository) IsMember(ctx context.Context, networkID, organizationID uuid.UUID) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM members_of_networks WHERE network_id = $1 AND organization_id = $2)`,
		networkID, organizationID)
}

func (r *networkRepository) RemoveMember(ctx context.Context, networkID, organizationID uuid.UUID) error {
	return requireAffected(r.db.ExecContext(ctx,
		`DELETE FROM members_of_networks WHERE network_id = $1 AND organization_id = $2`, networkID, organizationID))
}

func (r *networkRepository) ListMembers(ctx context.Context, networkID uuid.UUID) ([]domain.OrganizationSummary, error) {
	query := `SELECT ` + organizationSummaryColumns + ` FROM organizations o
	          JOIN members_of_networks m ON m.organization_id = o.id
	          WHERE m.network_id = $1 ORDER BY o.name`
	return organizationSummaries(ctx, r.db, query, networkID)
}

func (r *networkRepository) ListNetworksOf(ctx context.Context, organizationID uuid.UUID) ([]domain.OrganizationSummary, error) {
	query := `SELECT ` + organizationSummaryColumns + ` FROM organizations o
	          JOIN members_of_networks m ON m.network_id = o.id
	          WHERE m.organization_id = $1 ORDER BY o.name`
	return organizationSummaries(ctx, r.db, query, organizationID)
}

func (r *networkRepository) queryJoins(ctx context.Context, kind domain.NetworkJoinKind, query string, args ...any) ([]domain.NetworkJoin, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.NetworkJoin
	for rows.Next() {
		j := domain.NetworkJoin{Kind: kind, Network: &domain.OrganizationSummary{}, Organization: &domain.OrganizationSummary{}}
		n, o := j.Network, j.Organization
		if err := rows.Scan(&j.NetworkID, &j.OrganizationID, &j.Status, &j.CreatedAt, &j.UpdatedAt,
			&n.ID, &n.Slug, &n.Name, &n.Logo, pq.Array(&n.Types),
			&o.ID, &o.Slug, &o.Name, &o.Logo, pq.Array(&o.Types)); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
