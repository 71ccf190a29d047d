package service

import (
	"context"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/regions"
	"community-platform-backend/internal/repository"
)

type regionService struct {
	areaRepo repository.AreaRepository
}

func NewRegionService(store Repositories) RegionService {
	return &regionService{areaRepo: store.Areas}
}

func (s *regionService) ListAreas(ctx context.Context) ([]domain.Area, error) {
	return s.areaRepo.ListAreas(ctx)
}

func stateKey(s domain.State) string       { return s.AGS }
func districtKey(d domain.District) string { return d.AGS }

func (s *regionService) Import(ctx context.Context, ds *regions.Dataset, dryRun bool) (*repository.RegionPlan, error) {
	logger.EnterMethod("regionService.Import", "states", len(ds.States), "districts", len(ds.Districts), "dry_run", dryRun)
	if err := ds.Validate(); err != nil {
		return nil, NewValidationError("dataset", err.Error())
	}

	states, err := s.areaRepo.ListStates(ctx)
	if err != nil {
		return nil, err
	}
	districts, err := s.areaRepo.ListDistricts(ctx)
	if err != nil {
		return nil, err
	}

	sp := regions.PrepareQueries(states, ds.States, stateKey)
	dp := regions.PrepareQueries(districts, ds.Districts, districtKey)
	plan := &repository.RegionPlan{
		StateInserts:    sp.Inserts,
		StateUpdates:    sp.Updates,
		StateDeletes:    sp.Deletes,
		DistrictInserts: dp.Inserts,
		DistrictUpdates: dp.Updates,
		DistrictDeletes: dp.Deletes,
	}

	if dryRun || (sp.Empty() && dp.Empty()) {
		logger.ExitMethod("regionService.Import", "applied", false)
		return plan, nil
	}
	if err := s.areaRepo.ApplyRegionPlan(ctx, *plan); err != nil {
		logger.ExitMethodWithError("regionService.Import", err)
		return nil, err
	}

	logger.ExitMethod("regionService.Import", "applied", true,
		"state_inserts", len(plan.StateInserts), "district_inserts", len(plan.DistrictInserts))
	return plan, nil
}
