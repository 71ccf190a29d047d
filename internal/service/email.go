package service

import (
	"context"
	"fmt"
	"strings"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/mail"
)

type emailService struct {
	mailer    mail.Mailer
	renderer  *mail.Renderer
	publicURL string
	support   string
}

func NewEmailService(mailer mail.Mailer, renderer *mail.Renderer, publicURL, supportAddress string) EmailService {
	return &emailService{
		mailer:    mailer,
		renderer:  renderer,
		publicURL: strings.TrimRight(publicURL, "/"),
		support:   supportAddress,
	}
}

func (s *emailService) url(path string, args ...any) string {
	return s.publicURL + fmt.Sprintf(path, args...)
}

func (s *emailService) send(ctx context.Context, to []string, tmpl mail.Template, data any) error {
	if len(to) == 0 {
		return nil
	}
	msg, err := s.renderer.Render(tmpl, data)
	if err != nil {
		return err
	}
	msg.To = to
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send %s mail: %w", tmpl, err)
	}
	return nil
}

// sendEach mails every admin separately so the greeting is personal
func (s *emailService) sendEach(ctx context.Context, admins []domain.ProfileSummary, tmpl mail.Template, data func(name string) any) error {
	var firstErr error
	for _, a := range admins {
		if a.Email == "" {
			continue
		}
		if err := s.send(ctx, []string{a.Email}, tmpl, data(a.FirstName)); err != nil {
			logger.ErrorContext(ctx, "Failed to notify admin", "template", tmpl, "profile_id", a.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *emailService) SendWelcome(ctx context.Context, p *domain.Profile) error {
	return s.send(ctx, []string{p.Email}, mail.TemplateWelcome, mail.WelcomeData{
		Name: p.FirstName,
		URL:  s.url("/profile/%s", p.Username),
	})
}

func (s *emailService) SendOrganizationInvite(ctx context.Context, invitee *domain.Profile, inviterName string, org *domain.Organization, role domain.Role) error {
	return s.send(ctx, []string{invitee.Email}, mail.TemplateOrganizationInvite, mail.OrganizationInviteData{
		Name:             invitee.FirstName,
		InviterName:      inviterName,
		OrganizationName: org.Name,
		Role:             string(role),
		URL:              s.url("/my/invites"),
	})
}

func (s *emailService) SendMembershipRequest(ctx context.Context, admins []domain.ProfileSummary, requester *domain.Profile, org *domain.Organization) error {
	return s.sendEach(ctx, admins, mail.TemplateMembershipRequest, func(name string) any {
		return mail.MembershipRequestData{
			Name:             name,
			RequesterName:    requester.FullName(),
			OrganizationName: org.Name,
			URL:              s.url("/organization/%s/settings/team", org.Slug),
		}
	})
}

func (s *emailService) SendNetworkInvite(ctx context.Context, admins []domain.ProfileSummary, network, org *domain.Organization) error {
	return s.sendEach(ctx, admins, mail.TemplateNetworkInvite, func(name string) any {
		return mail.NetworkData{
			Name:             name,
			NetworkName:      network.Name,
			OrganizationName: org.Name,
			URL:              s.url("/organization/%s/settings/network", org.Slug),
		}
	})
}

func (s *emailService) SendNetworkRequest(ctx context.Context, admins []domain.ProfileSummary, network, org *domain.Organization) error {
	return s.sendEach(ctx, admins, mail.TemplateNetworkRequest, func(name string) any {
		return mail.NetworkData{
			Name:             name,
			NetworkName:      network.Name,
			OrganizationName: org.Name,
			URL:              s.url("/organization/%s/settings/network", network.Slug),
		}
	})
}

func (s *emailService) SendWaitingListPromotion(ctx context.Context, p *domain.ProfileSummary, e *domain.Event) error {
	return s.send(ctx, []string{p.Email}, mail.TemplateWaitingListPromotion, mail.WaitingListPromotionData{
		Name:       p.FirstName,
		EventName:  e.Name,
		EventStart: e.StartTime.Format("02.01.2006 15:04"),
		URL:        s.url("/event/%s", e.Slug),
	})
}

func (s *emailService) SendAbuseReport(ctx context.Context, reporter *domain.Profile, report *domain.AbuseReport, entity domain.EntityRef) error {
	return s.send(ctx, []string{s.support}, mail.TemplateAbuseReport, mail.AbuseReportData{
		ReporterName:  reporter.FullName(),
		ReporterEmail: reporter.Email,
		EntityType:    entity.Type,
		EntityName:    entity.Name,
		URL:           s.url("/%s/%s", entity.Type, entity.Slug),
		Reasons:       report.Reasons,
		Reason:        report.Reason,
	})
}

// SendEmailChanged mails the previous address
func (s *emailService) SendEmailChanged(ctx context.Context, p *domain.Profile, oldEmail string) error {
	return s.send(ctx, []string{oldEmail}, mail.TemplateEmailChanged, mail.EmailChangedData{
		Name:     p.FirstName,
		NewEmail: p.Email,
	})
}

func (s *emailService) SendReportDigest(ctx context.Context, openCount int) error {
	return s.send(ctx, []string{s.support}, mail.TemplateReportDigest, mail.ReportDigestData{
		OpenCount: openCount,
		URL:       s.url("/admin/reports"),
	})
}
