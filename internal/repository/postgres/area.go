package postgres

import (
	"context"
	"database/sql"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type areaRepository struct {
	db *sql.DB
}

func NewAreaRepository(db *sql.DB) repository.AreaRepository {
	return &areaRepository{db: db}
}

func (r *areaRepository) ListAreas(ctx context.Context) ([]domain.Area, error) {
	query := `SELECT id, name, type, state_ags_prefix FROM areas
	          ORDER BY CASE type WHEN 'global' THEN 0 WHEN 'country' THEN 1 WHEN 'state' THEN 2 ELSE 3 END, name`
	return areas(ctx, r.db, query)
}

func (r *areaRepository) CountExisting(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM areas WHERE id = ANY($1)`, pq.Array(ids)).Scan(&n)
	return n, err
}

func (r *areaRepository) ListStates(ctx context.Context) ([]domain.State, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ags_prefix, name FROM states ORDER BY ags_prefix`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.State
	for rows.Next() {
		var s domain.State
		if err := rows.Scan(&s.AGS, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *areaRepository) ListDistricts(ctx context.Context) ([]domain.District, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ags, name, state_ags_prefix FROM districts ORDER BY ags`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.District
	for rows.Next() {
		var d domain.District
		if err := rows.Scan(&d.AGS, &d.Name, &d.StateAGS); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ApplyRegionPlan writes states before districts so district foreign keys
// resolve, and deletes districts before states.
func (r *areaRepository) ApplyRegionPlan(ctx context.Context, plan repository.RegionPlan) error {
	logger.EnterMethod("areaRepository.ApplyRegionPlan",
		"stateInserts", len(plan.StateInserts), "stateUpdates", len(plan.StateUpdates), "stateDeletes", len(plan.StateDeletes),
		"districtInserts", len(plan.DistrictInserts), "districtUpdates", len(plan.DistrictUpdates), "districtDeletes", len(plan.DistrictDeletes))

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, s := range plan.StateInserts {
			if _, err := tx.ExecContext(ctx, `INSERT INTO states (ags_prefix, name) VALUES ($1, $2)`, s.AGS, s.Name); err != nil {
				return mapError(err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO areas (name, type, state_ags_prefix, ags) VALUES ($1, 'state', $2, $2)`, s.Name, s.AGS); err != nil {
				return mapError(err)
			}
		}
		for _, s := range plan.StateUpdates {
			if _, err := tx.ExecContext(ctx, `UPDATE states SET name = $1 WHERE ags_prefix = $2`, s.Name, s.AGS); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `UPDATE areas SET name = $1 WHERE type = 'state' AND ags = $2`, s.Name, s.AGS); err != nil {
				return err
			}
		}
		for _, d := range plan.DistrictInserts {
			if _, err := tx.ExecContext(ctx, `INSERT INTO districts (ags, name, state_ags_prefix) VALUES ($1, $2, $3)`, d.AGS, d.Name, d.StateAGS); err != nil {
				return mapError(err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO areas (name, type, state_ags_prefix, ags) VALUES ($1, 'district', $2, $3)`, d.Name, d.StateAGS, d.AGS); err != nil {
				return mapError(err)
			}
		}
		for _, d := range plan.DistrictUpdates {
			if _, err := tx.ExecContext(ctx, `UPDATE districts SET name = $1, state_ags_prefix = $2 WHERE ags = $3`, d.Name, d.StateAGS, d.AGS); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `UPDATE areas SET name = $1, state_ags_prefix = $2 WHERE type = 'district' AND ags = $3`, d.Name, d.StateAGS, d.AGS); err != nil {
				return err
			}
		}
		for _, d := range plan.DistrictDeletes {
			if _, err := tx.ExecContext(ctx, `DELETE FROM districts WHERE ags = $1`, d.AGS); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM areas WHERE type = 'district' AND ags = $1`, d.AGS); err != nil {
				return err
			}
		}
		for _, s := range plan.StateDeletes {
			if _, err := tx.ExecContext(ctx, `DELETE FROM states WHERE ags_prefix = $1`, s.AGS); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM areas WHERE type = 'state' AND ags = $1`, s.AGS); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("areaRepository.ApplyRegionPlan", err)
		return err
	}
	logger.ExitMethod("areaRepository.ApplyRegionPlan")
	return nil
}
