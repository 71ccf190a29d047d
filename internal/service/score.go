package service

import (
	"context"
	"fmt"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/repository"
)

// Profile score weights
const (
	profileAvatarWeight        = 10
	profileBackgroundWeight    = 5
	profileBioWeight           = 10
	profilePositionWeight      = 5
	profileAreasWeight         = 5
	profileOrganizationWeight  = 10
	profileEventWeight         = 5
	profileProjectWeight       = 5
	profilePublicContactWeight = 5
)

// Organization score weights
const (
	organizationLogoWeight       = 10
	organizationBackgroundWeight = 5
	organizationBioWeight        = 10
	organizationAddressWeight    = 5
	organizationAreasWeight      = 5
	organizationTeamWeight       = 10
	organizationEventWeight      = 5
	organizationProjectWeight    = 5
	organizationNetworkWeight    = 5
)

func weight(set bool, w int) int {
	if set {
		return w
	}
	return 0
}

// ProfileScore sums the weights of the flags that are set
func ProfileScore(f domain.ProfileScoreFlags) int {
	return weight(f.HasAvatar, profileAvatarWeight) +
		weight(f.HasBackground, profileBackgroundWeight) +
		weight(f.HasBio, profileBioWeight) +
		weight(f.HasPosition, profilePositionWeight) +
		weight(f.HasAreas, profileAreasWeight) +
		weight(f.HasOrganization, profileOrganizationWeight) +
		weight(f.HasEvent, profileEventWeight) +
		weight(f.HasProject, profileProjectWeight) +
		weight(f.HasPublicContacts, profilePublicContactWeight)
}

// OrganizationScore sums the weights of the flags that are set
func OrganizationScore(f domain.OrganizationScoreFlags) int {
	return weight(f.HasLogo, organizationLogoWeight) +
		weight(f.HasBackground, organizationBackgroundWeight) +
		weight(f.HasBio, organizationBioWeight) +
		weight(f.HasAddress, organizationAddressWeight) +
		weight(f.HasAreas, organizationAreasWeight) +
		weight(f.HasTeam, organizationTeamWeight) +
		weight(f.HasEvent, organizationEventWeight) +
		weight(f.HasProject, organizationProjectWeight) +
		weight(f.HasNetwork, organizationNetworkWeight)
}

type scoreService struct {
	profileRepo repository.ProfileRepository
	orgRepo     repository.OrganizationRepository
}

func NewScoreService(store Repositories) ScoreService {
	return &scoreService{profileRepo: store.Profiles, orgRepo: store.Organizations}
}

func (s *scoreService) RecalculateAll(ctx context.Context) (*ScoreResult, error) {
	logger.EnterMethod("scoreService.RecalculateAll")
	result := &ScoreResult{}

	profiles, err := s.profileRepo.ListScoreFlags(ctx)
	if err != nil {
		logger.ExitMethodWithError("scoreService.RecalculateAll", err)
		return nil, fmt.Errorf("list profile score flags: %w", err)
	}
	for _, f := range profiles {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.profileRepo.UpdateScore(ctx, f.ProfileID, ProfileScore(f)); err != nil {
			return result, fmt.Errorf("update score of profile %s: %w", f.ProfileID, err)
		}
		result.Profiles++
	}

	orgs, err := s.orgRepo.ListScoreFlags(ctx)
	if err != nil {
		logger.ExitMethodWithError("scoreService.RecalculateAll", err)
		return result, fmt.Errorf("list organization score flags: %w", err)
	}
	for _, f := range orgs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.orgRepo.UpdateScore(ctx, f.OrganizationID, OrganizationScore(f)); err != nil {
			return result, fmt.Errorf("update score of organization %s: %w", f.OrganizationID, err)
		}
		result.Organizations++
	}

	logger.ExitMethod("scoreService.RecalculateAll", "profiles", result.Profiles, "organizations", result.Organizations)
	return result, nil
}
