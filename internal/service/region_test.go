package service_test

import (
	"context"
	"testing"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/regions"
	"community-platform-backend/internal/repository"
	"community-platform-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func regionFixture() (*mockAreaRepo, *regions.Dataset) {
	areas := new(mockAreaRepo)
	areas.On("ListStates", mock.Anything).Return([]domain.State{
		{AGS: "01", Name: "Schleswig-Holstein"},
		{AGS: "02", Name: "Hamburg"},
	}, nil)
	areas.On("ListDistricts", mock.Anything).Return([]domain.District{
		{AGS: "01001", Name: "Flensburg", StateAGS: "01"},
	}, nil)

	ds := &regions.Dataset{
		States: []domain.State{
			{AGS: "01", Name: "Schleswig-Holstein"},
			{AGS: "02", Name: "Freie und Hansestadt Hamburg"},
			{AGS: "03", Name: "Niedersachsen"},
		},
		Districts: []domain.District{
			{AGS: "03101", Name: "Braunschweig", StateAGS: "03"},
		},
	}
	return areas, ds
}

func TestRegionService_Import_DryRun(t *testing.T) {
	ctx := context.Background()
	areas, ds := regionFixture()
	svc := service.NewRegionService(service.Repositories{Areas: areas})

	plan, err := svc.Import(ctx, ds, true)
	require.NoError(t, err)
	assert.Equal(t, []domain.State{{AGS: "03", Name: "Niedersachsen"}}, plan.StateInserts)
	assert.Equal(t, []domain.State{{AGS: "02", Name: "Freie und Hansestadt Hamburg"}}, plan.StateUpdates)
	assert.Empty(t, plan.StateDeletes)
	assert.Equal(t, []domain.District{{AGS: "03101", Name: "Braunschweig", StateAGS: "03"}}, plan.DistrictInserts)
	assert.Equal(t, []domain.District{{AGS: "01001", Name: "Flensburg", StateAGS: "01"}}, plan.DistrictDeletes)
	areas.AssertNotCalled(t, "ApplyRegionPlan", mock.Anything, mock.Anything)
}

func TestRegionService_Import_Applies(t *testing.T) {
	ctx := context.Background()
	areas, ds := regionFixture()
	areas.On("ApplyRegionPlan", ctx, mock.AnythingOfType("repository.RegionPlan")).Return(nil)
	svc := service.NewRegionService(service.Repositories{Areas: areas})

	plan, err := svc.Import(ctx, ds, false)
	require.NoError(t, err)
	assert.Len(t, plan.StateInserts, 1)
	areas.AssertCalled(t, "ApplyRegionPlan", ctx, mock.MatchedBy(func(p repository.RegionPlan) bool {
		return len(p.DistrictDeletes) == 1 && len(p.StateUpdates) == 1
	}))
}

func TestRegionService_Import_InvalidDataset(t *testing.T) {
	areas := new(mockAreaRepo)
	svc := service.NewRegionService(service.Repositories{Areas: areas})

	_, err := svc.Import(context.Background(), &regions.Dataset{States: []domain.State{{AGS: "1", Name: "x"}}}, false)
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)
}
