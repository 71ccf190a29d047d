package service

import (
	"context"
	"errors"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/repository"

	"github.com/google/uuid"
)

func (s *organizationService) GetTeamSettings(ctx context.Context, actorID uuid.UUID, slug string) (*TeamSettings, error) {
	org, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return nil, err
	}

	settings := &TeamSettings{}
	if settings.Admins, err = s.orgRepo.ListAdmins(ctx, org.ID); err != nil {
		return nil, err
	}
	if settings.Team, err = s.orgRepo.ListTeam(ctx, org.ID); err != nil {
		return nil, err
	}
	if settings.PendingInvites, err = s.membershipRepo.ListInvitesForOrganization(ctx, org.ID, domain.StatusPending); err != nil {
		return nil, err
	}
	if settings.Requests, err = s.membershipRepo.ListRequestsForOrganization(ctx, org.ID, domain.StatusPending); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *organizationService) InviteProfile(ctx context.Context, actorID uuid.UUID, slug string, profileID uuid.UUID, role domain.Role) error {
	logger.EnterMethod("organizationService.InviteProfile", "slug", slug, "profile_id", profileID, "role", role)

	if !role.Valid() {
		return NewValidationError("role", "unknown role")
	}
	org, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	invitee, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return notFound(err, ErrProfileNotFound)
	}

	var already bool
	if role == domain.RoleAdmin {
		already, err = s.orgRepo.IsAdmin(ctx, org.ID, profileID)
	} else {
		already, err = s.orgRepo.IsMember(ctx, org.ID, profileID)
	}
	if err != nil {
		return err
	}
	if already {
		return ErrAlreadyMember
	}

	invite := &domain.ProfileInvite{
		OrganizationID: org.ID,
		ProfileID:      profileID,
		Role:           role,
		Status:         domain.StatusPending,
	}
	if err := s.membershipRepo.UpsertInvite(ctx, invite); err != nil {
		logger.ExitMethodWithError("organizationService.InviteProfile", err)
		return err
	}

	inviterName := ""
	if inviter, err := s.profileRepo.GetByID(ctx, actorID); err == nil {
		inviterName = inviter.FullName()
	}
	if err := s.emailSvc.SendOrganizationInvite(ctx, invitee, inviterName, org, role); err != nil {
		logger.ErrorContext(ctx, "Failed to send invite mail", "organization_id", org.ID, "profile_id", profileID, "error", err)
	}

	logger.ExitMethod("organizationService.InviteProfile")
	return nil
}

func (s *organizationService) CancelInvite(ctx context.Context, actorID uuid.UUID, slug string, profileID uuid.UUID, role domain.Role) error {
	org, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	return s.settleInvite(ctx, org.ID, profileID, role, domain.StatusCanceled)
}

// settleInvite moves a pending invite into status
func (s *organizationService) settleInvite(ctx context.Context, organizationID, profileID uuid.UUID, role domain.Role, status domain.Status) error {
	invite, err := s.membershipRepo.GetInvite(ctx, organizationID, profileID, role)
	if err != nil {
		return notFound(err, ErrInviteNotFound)
	}
	if invite.Status != domain.StatusPending {
		return ErrInviteNotPending
	}
	return s.membershipRepo.UpdateInviteStatus(ctx, organizationID, profileID, role, status)
}

func (s *organizationService) RemoveAdmin(ctx context.Context, actorID uuid.UUID, slug string, profileID uuid.UUID) error {
	org, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	if err := s.orgRepo.RemoveAdmin(ctx, org.ID, profileID); err != nil {
		switch {
		case errors.Is(err, repository.ErrLastAdmin):
			return ErrLastAdmin
		case errors.Is(err, repository.ErrNotFound):
			return ErrNotAMember
		}
		return err
	}
	logger.Info("Organization admin removed", "organization_id", org.ID, "profile_id", profileID, "actor_id", actorID)
	return nil
}

func (s *organizationService) RemoveMember(ctx context.Context, actorID uuid.UUID, slug string, profileID uuid.UUID) error {
	org, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	if err := s.orgRepo.RemoveMember(ctx, org.ID, profileID); err != nil {
		return notFound(err, ErrNotAMember)
	}
	return nil
}

func (s *organizationService) ListMyInvitations(ctx context.Context, profileID uuid.UUID) (*MyInvitations, error) {
	if profileID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	invites, err := s.membershipRepo.ListInvitesForProfile(ctx, profileID, domain.StatusPending)
	if err != nil {
		return nil, err
	}
	requests, err := s.membershipRepo.ListRequestsForProfile(ctx, profileID, domain.StatusPending)
	if err != nil {
		return nil, err
	}
	return &MyInvitations{Invites: invites, Requests: requests}, nil
}

func (s *organizationService) AcceptInvite(ctx context.Context, profileID, organizationID uuid.UUID, role domain.Role) error {
	if profileID == uuid.Nil {
		return ErrUnauthenticated
	}
	invite, err := s.membershipRepo.GetInvite(ctx, organizationID, profileID, role)
	if err != nil {
		return notFound(err, ErrInviteNotFound)
	}
	if invite.Status != domain.StatusPending {
		return ErrInviteNotPending
	}
	if err := s.membershipRepo.AcceptInvite(ctx, organizationID, profileID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInviteNotPending
		}
		return err
	}
	logger.Info("Organization invite accepted", "organization_id", organizationID, "profile_id", profileID, "role", role)
	return nil
}

func (s *organizationService) RejectInvite(ctx context.Context, profileID, organizationID uuid.UUID, role domain.Role) error {
	if profileID == uuid.Nil {
		return ErrUnauthenticated
	}
	return s.settleInvite(ctx, organizationID, profileID, role, domain.StatusRejected)
}

func (s *organizationService) RequestMembership(ctx context.Context, profileID uuid.UUID, slug string) error {
	logger.EnterMethod("organizationService.RequestMembership", "slug", slug, "profile_id", profileID)
	if profileID == uuid.Nil {
		return ErrUnauthenticated
	}
	org, err := s.orgRepo.GetBySlug(ctx, slug)
	if err != nil {
		return notFound(err, ErrOrganizationNotFound)
	}
	member, err := s.orgRepo.IsMember(ctx, org.ID, profileID)
	if err != nil {
		return err
	}
	if member {
		return ErrAlreadyMember
	}

	req := &domain.MembershipRequest{OrganizationID: org.ID, ProfileID: profileID, Status: domain.StatusPending}
	if err := s.membershipRepo.UpsertRequest(ctx, req); err != nil {
		logger.ExitMethodWithError("organizationService.RequestMembership", err)
		return err
	}

	requester, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return notFound(err, ErrProfileNotFound)
	}
	admins, err := s.orgRepo.ListAdmins(ctx, org.ID)
	if err != nil {
		return err
	}
	if err := s.emailSvc.SendMembershipRequest(ctx, admins, requester, org); err != nil {
		logger.ErrorContext(ctx, "Failed to notify admins about request", "organization_id", org.ID, "error", err)
	}

	logger.ExitMethod("organizationService.RequestMembership")
	return nil
}

func (s *organizationService) CancelRequest(ctx context.Context, profileID, organizationID uuid.UUID) error {
	if profileID == uuid.Nil {
		return ErrUnauthenticated
	}
	return s.settleRequest(ctx, organizationID, profileID, domain.StatusCanceled)
}

func (s *organizationService) settleRequest(ctx context.Context, organizationID, profileID uuid.UUID, status domain.Status) error {
	req, err := s.membershipRepo.GetRequest(ctx, organizationID, profileID)
	if err != nil {
		return notFound(err, ErrRequestNotFound)
	}
	if req.Status != domain.StatusPending {
		return ErrRequestNotPending
	}
	return s.membershipRepo.UpdateRequestStatus(ctx, organizationID, profileID, status)
}

func (s *organizationService) AcceptRequest(ctx context.Context, actorID uuid.UUID, slug string, profileID uuid.UUID) error {
	org, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	req, err := s.membershipRepo.GetRequest(ctx, org.ID, profileID)
	if err != nil {
		return notFound(err, ErrRequestNotFound)
	}
	if req.Status != domain.StatusPending {
		return ErrRequestNotPending
	}
	if err := s.membershipRepo.AcceptRequest(ctx, org.ID, profileID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRequestNotPending
		}
		return err
	}
	return nil
}

func (s *organizationService) RejectRequest(ctx context.Context, actorID uuid.UUID, slug string, profileID uuid.UUID) error {
	org, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	return s.settleRequest(ctx, org.ID, profileID, domain.StatusRejected)
}
