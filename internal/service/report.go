package service

import (
	"context"
	"strings"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"

	"github.com/google/uuid"
)

const maxReportReasonLength = 2000

type reportService struct {
	store    Repositories
	emailSvc EmailService
}

func NewReportService(store Repositories, emailSvc EmailService) ReportService {
	return &reportService{store: store, emailSvc: emailSvc}
}

// resolve finds the reported entity by type and slug
func (s *reportService) resolve(ctx context.Context, entityType domain.ReportEntityType, slug string) (domain.EntityRef, error) {
	ref := domain.EntityRef{Type: string(entityType), Slug: slug}
	switch entityType {
	case domain.ReportEntityProfile:
		p, err := s.store.Profiles.GetByUsername(ctx, slug)
		if err != nil {
			return ref, notFound(err, ErrProfileNotFound)
		}
		ref.ID, ref.Name = p.ID, p.FullName()
	case domain.ReportEntityOrganization:
		o, err := s.store.Organizations.GetBySlug(ctx, slug)
		if err != nil {
			return ref, notFound(err, ErrOrganizationNotFound)
		}
		ref.ID, ref.Name = o.ID, o.Name
	case domain.ReportEntityEvent:
		e, err := s.store.Events.GetBySlug(ctx, slug)
		if err != nil {
			return ref, notFound(err, ErrEventNotFound)
		}
		ref.ID, ref.Name = e.ID, e.Name
	case domain.ReportEntityProject:
		p, err := s.store.Projects.GetBySlug(ctx, slug)
		if err != nil {
			return ref, notFound(err, ErrProjectNotFound)
		}
		ref.ID, ref.Name = p.ID, p.Name
	default:
		return ref, NewValidationError("entityType", "unknown entity type")
	}
	return ref, nil
}

func validateReasons(reasons []string, text string) error {
	fields := map[string][]string{}
	if len(reasons) == 0 {
		fields["reasons"] = append(fields["reasons"], "select at least one reason")
	}
	if err := validateChoices("reasons", reasons, domain.ReportReasons); err != nil {
		return err
	}
	if len(text) > maxReportReasonLength {
		fields["reason"] = append(fields["reason"], "text is too long")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *reportService) Report(ctx context.Context, reporterID uuid.UUID, input ReportInput) (*domain.AbuseReport, error) {
	logger.EnterMethod("reportService.Report", "entity_type", input.EntityType, "slug", input.Slug)
	if reporterID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	reporter, err := s.store.Profiles.GetByID(ctx, reporterID)
	if err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}

	text := strings.TrimSpace(input.Reason)
	if err := validateReasons(input.Reasons, text); err != nil {
		return nil, err
	}
	ref, err := s.resolve(ctx, input.EntityType, input.Slug)
	if err != nil {
		return nil, err
	}

	open, err := s.store.Reports.ExistsOpen(ctx, reporterID, input.EntityType, ref.ID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrAlreadyReported
	}

	report := &domain.AbuseReport{
		ReporterID: reporterID,
		EntityType: input.EntityType,
		EntityID:   ref.ID,
		EntitySlug: ref.Slug,
		Reasons:    input.Reasons,
		Reason:     text,
		Status:     domain.ReportStatusOpen,
	}
	if err := s.store.Reports.Create(ctx, report); err != nil {
		logger.ExitMethodWithError("reportService.Report", err)
		return nil, err
	}

	if err := s.emailSvc.SendAbuseReport(ctx, reporter, report, ref); err != nil {
		logger.ErrorContext(ctx, "Failed to send abuse report mail", "report_id", report.ID, "error", err)
	}

	logger.ExitMethod("reportService.Report", "report_id", report.ID)
	return report, nil
}

func (s *reportService) requirePlatformAdmin(ctx context.Context, actorID uuid.UUID) error {
	if actorID == uuid.Nil {
		return ErrUnauthenticated
	}
	p, err := s.store.Profiles.GetByID(ctx, actorID)
	if err != nil {
		return notFound(err, ErrUnauthenticated)
	}
	if !p.IsPlatformAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *reportService) ListOpen(ctx context.Context, actorID uuid.UUID) ([]domain.AbuseReport, error) {
	if err := s.requirePlatformAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.store.Reports.ListByStatus(ctx, domain.ReportStatusOpen)
}

func (s *reportService) Close(ctx context.Context, actorID, reportID uuid.UUID) error {
	if err := s.requirePlatformAdmin(ctx, actorID); err != nil {
		return err
	}
	if err := s.store.Reports.UpdateStatus(ctx, reportID, domain.ReportStatusClosed); err != nil {
		return notFound(err, ErrReportNotFound)
	}
	logger.Info("Abuse report closed", "report_id", reportID, "actor_id", actorID)
	return nil
}

// SendDigest mails the number of open reports to support. Nothing is sent
// when no report is open.
func (s *reportService) SendDigest(ctx context.Context) (int, error) {
	count, err := s.store.Reports.CountByStatus(ctx, domain.ReportStatusOpen)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	if err := s.emailSvc.SendReportDigest(ctx, count); err != nil {
		return count, err
	}
	return count, nil
}
