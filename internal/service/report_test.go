package service_test

import (
	"context"
	"testing"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/repository"
	"community-platform-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReportService_Report(t *testing.T) {
	ctx := context.Background()
	profiles := new(mockProfileRepo)
	projects := new(mockProjectRepo)
	reports := new(mockReportRepo)
	emails := new(mockEmailService)
	svc := service.NewReportService(service.Repositories{Profiles: profiles, Projects: projects, Reports: reports}, emails)

	reporter := &domain.Profile{ID: uuid.New(), FirstName: "Ada", Email: "ada@example.org"}
	project := &domain.Project{ID: uuid.New(), Slug: "garten", Name: "Gemeinschaftsgarten"}
	profiles.On("GetByID", ctx, reporter.ID).Return(reporter, nil)
	projects.On("GetBySlug", ctx, "garten").Return(project, nil)
	reports.On("ExistsOpen", ctx, reporter.ID, domain.ReportEntityProject, project.ID).Return(false, nil).Once()
	reports.On("Create", ctx, mock.AnythingOfType("*domain.AbuseReport")).Return(nil)
	emails.On("SendAbuseReport", ctx, reporter, mock.AnythingOfType("*domain.AbuseReport"),
		domain.EntityRef{Type: "project", ID: project.ID, Slug: "garten", Name: "Gemeinschaftsgarten"}).Return(nil)

	input := service.ReportInput{EntityType: domain.ReportEntityProject, Slug: "garten", Reasons: []string{"spam"}, Reason: " ads everywhere "}
	report, err := svc.Report(ctx, reporter.ID, input)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusOpen, report.Status)
	assert.Equal(t, "ads everywhere", report.Reason)
	emails.AssertExpectations(t)

	reports.On("ExistsOpen", ctx, reporter.ID, domain.ReportEntityProject, project.ID).Return(true, nil)
	_, err = svc.Report(ctx, reporter.ID, input)
	assert.ErrorIs(t, err, service.ErrAlreadyReported)
}

func TestReportService_Report_Validation(t *testing.T) {
	ctx := context.Background()
	profiles := new(mockProfileRepo)
	reporterID := uuid.New()
	profiles.On("GetByID", ctx, reporterID).Return(&domain.Profile{ID: reporterID}, nil)
	svc := service.NewReportService(service.Repositories{Profiles: profiles}, new(mockEmailService))

	tests := []struct {
		name  string
		input service.ReportInput
		field string
	}{
		{"no reason", service.ReportInput{EntityType: domain.ReportEntityProfile, Slug: "x"}, "reasons"},
		{"unknown reason", service.ReportInput{EntityType: domain.ReportEntityProfile, Slug: "x", Reasons: []string{"boredom"}}, "reasons"},
		{"unknown type", service.ReportInput{EntityType: "award", Slug: "x", Reasons: []string{"spam"}}, "entityType"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Report(ctx, reporterID, tt.input)
			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	_, err := svc.Report(ctx, uuid.Nil, tests[0].input)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestReportService_Close(t *testing.T) {
	ctx := context.Background()
	profiles := new(mockProfileRepo)
	reports := new(mockReportRepo)
	svc := service.NewReportService(service.Repositories{Profiles: profiles, Reports: reports}, new(mockEmailService))

	admin := &domain.Profile{ID: uuid.New(), IsPlatformAdmin: true}
	user := &domain.Profile{ID: uuid.New()}
	profiles.On("GetByID", ctx, admin.ID).Return(admin, nil)
	profiles.On("GetByID", ctx, user.ID).Return(user, nil)

	reportID, missing := uuid.New(), uuid.New()
	reports.On("UpdateStatus", ctx, reportID, domain.ReportStatusClosed).Return(nil)
	reports.On("UpdateStatus", ctx, missing, domain.ReportStatusClosed).Return(repository.ErrNotFound)

	require.NoError(t, svc.Close(ctx, admin.ID, reportID))
	assert.ErrorIs(t, svc.Close(ctx, admin.ID, missing), service.ErrReportNotFound)
	assert.ErrorIs(t, svc.Close(ctx, user.ID, reportID), service.ErrForbidden)
}

func TestReportService_SendDigest(t *testing.T) {
	ctx := context.Background()
	reports := new(mockReportRepo)
	emails := new(mockEmailService)
	svc := service.NewReportService(service.Repositories{Reports: reports}, emails)

	reports.On("CountByStatus", ctx, domain.ReportStatusOpen).Return(0, nil).Once()
	n, err := svc.SendDigest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	emails.AssertNotCalled(t, "SendReportDigest", mock.Anything, mock.Anything)

	reports.On("CountByStatus", ctx, domain.ReportStatusOpen).Return(3, nil).Once()
	emails.On("SendReportDigest", ctx, 3).Return(nil)
	n, err = svc.SendDigest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
