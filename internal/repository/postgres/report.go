package postgres

import (
	"context"
	"database/sql"
	"time"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type reportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, rep *domain.AbuseReport) error {
	query := `INSERT INTO abuse_reports (reporter_id, entity_type, entity_id, entity_slug, reasons, reason, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, 'open', $7, $7) RETURNING id`
	now := time.Now().UTC()
	rep.Status, rep.CreatedAt, rep.UpdatedAt = domain.ReportStatusOpen, now, now
	return mapError(r.db.QueryRowContext(ctx, query, rep.ReporterID, rep.EntityType, rep.EntityID, rep.EntitySlug,
		pq.Array(rep.Reasons), rep.Reason, now).Scan(&rep.ID))
}

func (r *reportRepository) ExistsOpen(ctx context.Context, reporterID uuid.UUID, entityType domain.ReportEntityType, entityID uuid.UUID) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM abuse_reports
	          WHERE reporter_id = $1 AND entity_type = $2 AND entity_id = $3 AND status = 'open')`, reporterID, entityType, entityID)
}

func (r *reportRepository) ListByStatus(ctx context.Context, status domain.ReportStatus) ([]domain.AbuseReport, error) {
	query := `SELECT id, reporter_id, entity_type, entity_id, entity_slug, reasons, reason, status, created_at, updated_at
	          FROM abuse_reports WHERE status = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AbuseReport
	for rows.Next() {
		var rep domain.AbuseReport
		if err := rows.Scan(&rep.ID, &rep.ReporterID, &rep.EntityType, &rep.EntityID, &rep.EntitySlug, pq.Array(&rep.Reasons),
			&rep.Reason, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *reportRepository) CountByStatus(ctx context.Context, status domain.ReportStatus) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM abuse_reports WHERE status = $1`, status).Scan(&n)
	return n, err
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) error {
	return requireAffected(r.db.ExecContext(ctx, `UPDATE abuse_reports SET status=$1, updated_at=$2 WHERE id=$3`,
		status, time.Now().UTC(), id))
}
