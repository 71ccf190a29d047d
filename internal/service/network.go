package service

import (
	"context"
	"errors"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/repository"

	"github.com/google/uuid"
)

type networkService struct {
	orgRepo     repository.OrganizationRepository
	networkRepo repository.NetworkRepository
	emailSvc    EmailService
}

func NewNetworkService(store Repositories, emailSvc EmailService) NetworkService {
	return &networkService{
		orgRepo:     store.Organizations,
		networkRepo: store.Networks,
		emailSvc:    emailSvc,
	}
}

func (s *networkService) GetOverview(ctx context.Context, actorID uuid.UUID, slug string) (*NetworkOverview, error) {
	org, err := requireOrganizationAdmin(ctx, s.orgRepo, actorID, slug)
	if err != nil {
		return nil, err
	}

	overview := &NetworkOverview{IsNetwork: org.IsNetwork()}
	if overview.Networks, err = s.networkRepo.ListNetworksOf(ctx, org.ID); err != nil {
		return nil, err
	}
	if overview.InvitesReceived, err = s.networkRepo.ListJoinsForOrganization(ctx, domain.NetworkJoinInvite, org.ID, domain.StatusPending); err != nil {
		return nil, err
	}
	if overview.RequestsSent, err = s.networkRepo.ListJoinsForOrganization(ctx, domain.NetworkJoinRequest, org.ID, domain.StatusPending); err != nil {
		return nil, err
	}
	if !overview.IsNetwork {
		return overview, nil
	}
	if overview.Members, err = s.networkRepo.ListMembers(ctx, org.ID); err != nil {
		return nil, err
	}
	if overview.InvitesSent, err = s.networkRepo.ListJoinsForNetwork(ctx, domain.NetworkJoinInvite, org.ID, domain.StatusPending); err != nil {
		return nil, err
	}
	if overview.RequestsReceived, err = s.networkRepo.ListJoinsForNetwork(ctx, domain.NetworkJoinRequest, org.ID, domain.StatusPending); err != nil {
		return nil, err
	}
	return overview, nil
}

// adminNetwork loads the network administered by actorID
func (s *networkService) adminNetwork(ctx context.Context, actorID uuid.UUID, slug string) (*domain.Organization, error) {
	network, err := requireOrganizationAdmin(ctx, s.orgRepo, actorID, slug)
	if err != nil {
		return nil, err
	}
	if !network.IsNetwork() {
		return nil, ErrNotANetwork
	}
	return network, nil
}

func (s *networkService) getOrganization(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	org, err := s.orgRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrOrganizationNotFound)
	}
	return org, nil
}

// checkJoinable validates a pending link between network and org
func (s *networkService) checkJoinable(ctx context.Context, network, org *domain.Organization) error {
	if network.ID == org.ID {
		return ErrSelfReference
	}
	if !network.IsNetwork() {
		return ErrNotANetwork
	}
	member, err := s.networkRepo.IsMember(ctx, network.ID, org.ID)
	if err != nil {
		return err
	}
	if member {
		return ErrAlreadyMember
	}
	return nil
}

func (s *networkService) settle(ctx context.Context, kind domain.NetworkJoinKind, networkID, organizationID uuid.UUID, status domain.Status) error {
	join, err := s.networkRepo.GetJoin(ctx, kind, networkID, organizationID)
	notPending := ErrInviteNotPending
	missing := ErrInviteNotFound
	if kind == domain.NetworkJoinRequest {
		notPending, missing = ErrRequestNotPending, ErrRequestNotFound
	}
	if err != nil {
		return notFound(err, missing)
	}
	if join.Status != domain.StatusPending {
		return notPending
	}
	if status == domain.StatusAccepted {
		err = s.networkRepo.AcceptJoin(ctx, kind, networkID, organizationID)
	} else {
		err = s.networkRepo.UpdateJoinStatus(ctx, kind, networkID, organizationID, status)
	}
	// a concurrent settle leaves no pending row behind
	if errors.Is(err, repository.ErrNotFound) {
		return notPending
	}
	return err
}

func (s *networkService) InviteOrganization(ctx context.Context, actorID uuid.UUID, networkSlug string, organizationID uuid.UUID) error {
	logger.EnterMethod("networkService.InviteOrganization", "network", networkSlug, "organization_id", organizationID)

	network, err := requireOrganizationAdmin(ctx, s.orgRepo, actorID, networkSlug)
	if err != nil {
		return err
	}
	org, err := s.getOrganization(ctx, organizationID)
	if err != nil {
		return err
	}
	if err := s.checkJoinable(ctx, network, org); err != nil {
		logger.ExitMethodWithError("networkService.InviteOrganization", err)
		return err
	}

	join := &domain.NetworkJoin{NetworkID: network.ID, OrganizationID: org.ID, Kind: domain.NetworkJoinInvite, Status: domain.StatusPending}
	if err := s.networkRepo.UpsertJoin(ctx, join); err != nil {
		return err
	}

	admins, err := s.orgRepo.ListAdmins(ctx, org.ID)
	if err != nil {
		return err
	}
	if err := s.emailSvc.SendNetworkInvite(ctx, admins, network, org); err != nil {
		logger.ErrorContext(ctx, "Failed to send network invite mail", "network_id", network.ID, "organization_id", org.ID, "error", err)
	}

	logger.ExitMethod("networkService.InviteOrganization")
	return nil
}

func (s *networkService) CancelInvite(ctx context.Context, actorID uuid.UUID, networkSlug string, organizationID uuid.UUID) error {
	network, err := s.adminNetwork(ctx, actorID, networkSlug)
	if err != nil {
		return err
	}
	return s.settle(ctx, domain.NetworkJoinInvite, network.ID, organizationID, domain.StatusCanceled)
}

func (s *networkService) AcceptRequest(ctx context.Context, actorID uuid.UUID, networkSlug string, organizationID uuid.UUID) error {
	network, err := s.adminNetwork(ctx, actorID, networkSlug)
	if err != nil {
		return err
	}
	if err := s.settle(ctx, domain.NetworkJoinRequest, network.ID, organizationID, domain.StatusAccepted); err != nil {
		return err
	}
	logger.Info("Network request accepted", "network_id", network.ID, "organization_id", organizationID)
	return nil
}

func (s *networkService) RejectRequest(ctx context.Context, actorID uuid.UUID, networkSlug string, organizationID uuid.UUID) error {
	network, err := s.adminNetwork(ctx, actorID, networkSlug)
	if err != nil {
		return err
	}
	return s.settle(ctx, domain.NetworkJoinRequest, network.ID, organizationID, domain.StatusRejected)
}

func (s *networkService) RemoveMember(ctx context.Context, actorID uuid.UUID, networkSlug string, organizationID uuid.UUID) error {
	network, err := s.adminNetwork(ctx, actorID, networkSlug)
	if err != nil {
		return err
	}
	if err := s.networkRepo.RemoveMember(ctx, network.ID, organizationID); err != nil {
		return notFound(err, ErrNotAMember)
	}
	return nil
}

func (s *networkService) RequestToJoin(ctx context.Context, actorID uuid.UUID, organizationSlug string, networkID uuid.UUID) error {
	logger.EnterMethod("networkService.RequestToJoin", "organization", organizationSlug, "network_id", networkID)

	org, err := requireOrganizationAdmin(ctx, s.orgRepo, actorID, organizationSlug)
	if err != nil {
		return err
	}
	network, err := s.getOrganization(ctx, networkID)
	if err != nil {
		return err
	}
	if err := s.checkJoinable(ctx, network, org); err != nil {
		logger.ExitMethodWithError("networkService.RequestToJoin", err)
		return err
	}

	join := &domain.NetworkJoin{NetworkID: network.ID, OrganizationID: org.ID, Kind: domain.NetworkJoinRequest, Status: domain.StatusPending}
	if err := s.networkRepo.UpsertJoin(ctx, join); err != nil {
		return err
	}

	admins, err := s.orgRepo.ListAdmins(ctx, network.ID)
	if err != nil {
		return err
	}
	if err := s.emailSvc.SendNetworkRequest(ctx, admins, network, org); err != nil {
		logger.ErrorContext(ctx, "Failed to send network request mail", "network_id", network.ID, "organization_id", org.ID, "error", err)
	}

	logger.ExitMethod("networkService.RequestToJoin")
	return nil
}

func (s *networkService) CancelRequest(ctx context.Context, actorID uuid.UUID, organizationSlug string, networkID uuid.UUID) error {
	org, err := requireOrganizationAdmin(ctx, s.orgRepo, actorID, organizationSlug)
	if err != nil {
		return err
	}
	return s.settle(ctx, domain.NetworkJoinRequest, networkID, org.ID, domain.StatusCanceled)
}

func (s *networkService) AcceptInvite(ctx context.Context, actorID uuid.UUID, organizationSlug string, networkID uuid.UUID) error {
	org, err := requireOrganizationAdmin(ctx, s.orgRepo, actorID, organizationSlug)
	if err != nil {
		return err
	}
	if err := s.settle(ctx, domain.NetworkJoinInvite, networkID, org.ID, domain.StatusAccepted); err != nil {
		return err
	}
	logger.Info("Network invite accepted", "network_id", networkID, "organization_id", org.ID)
	return nil
}

func (s *networkService) RejectInvite(ctx context.Context, actorID uuid.UUID, organizationSlug string, networkID uuid.UUID) error {
	org, err := requireOrganizationAdmin(ctx, s.orgRepo, actorID, organizationSlug)
	if err != nil {
		return err
	}
	return s.settle(ctx, domain.NetworkJoinInvite, networkID, org.ID, domain.StatusRejected)
}

func (s *networkService) Leave(ctx context.Context, actorID uuid.UUID, organizationSlug string, networkID uuid.UUID) error {
	org, err := requireOrganizationAdmin(ctx, s.orgRepo, actorID, organizationSlug)
	if err != nil {
		return err
	}
	if err := s.networkRepo.RemoveMember(ctx, networkID, org.ID); err != nil {
		return notFound(err, ErrNotAMember)
	}
	return nil
}
