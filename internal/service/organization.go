package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/geo"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/repository"
	"community-platform-backend/internal/utils"

	"github.com/google/uuid"
)

type organizationService struct {
	orgRepo        repository.OrganizationRepository
	profileRepo    repository.ProfileRepository
	membershipRepo repository.MembershipRepository
	networkRepo    repository.NetworkRepository
	eventRepo      repository.EventRepository
	projectRepo    repository.ProjectRepository
	areaRepo       repository.AreaRepository
	geocoder       geo.Geocoder
	files          *FileStore
	emailSvc       EmailService
	now            func() time.Time
}

func NewOrganizationService(
	store Repositories,
	geocoder geo.Geocoder,
	files *FileStore,
	emailSvc EmailService,
) OrganizationService {
	return &organizationService{
		orgRepo:        store.Organizations,
		profileRepo:    store.Profiles,
		membershipRepo: store.Memberships,
		networkRepo:    store.Networks,
		eventRepo:      store.Events,
		projectRepo:    store.Projects,
		areaRepo:       store.Areas,
		geocoder:       geocoder,
		files:          files,
		emailSvc:       emailSvc,
		now:            time.Now,
	}
}

func (s *organizationService) ListOrganizations(ctx context.Context, filter domain.OrganizationFilter) (*OrganizationList, error) {
	filter.Page = filter.Page.Normalize()
	if filter.Type != "" && !slices.Contains(domain.OrganizationTypes, filter.Type) {
		return nil, NewValidationError("type", "unknown organization type")
	}
	items, total, err := s.orgRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &OrganizationList{Items: items, Total: total, Page: filter.Page}, nil
}

func (s *organizationService) GetOrganization(ctx context.Context, viewerID uuid.UUID, slug string) (*OrganizationDetail, error) {
	org, err := s.orgRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, ErrOrganizationNotFound)
	}

	detail := &OrganizationDetail{Organization: org}
	if viewerID != uuid.Nil {
		if detail.IsAdmin, err = s.orgRepo.IsAdmin(ctx, org.ID, viewerID); err != nil {
			return nil, err
		}
		if detail.IsMember, err = s.orgRepo.IsMember(ctx, org.ID, viewerID); err != nil {
			return nil, err
		}
	}

	if viewerID == uuid.Nil && !org.IsPublicField("areas") {
		detail.Areas = []domain.Area{}
	} else if detail.Areas, err = s.orgRepo.ListAreas(ctx, org.ID); err != nil {
		return nil, err
	}
	if detail.Admins, err = s.orgRepo.ListAdmins(ctx, org.ID); err != nil {
		return nil, err
	}
	if detail.Team, err = s.orgRepo.ListTeam(ctx, org.ID); err != nil {
		return nil, err
	}
	if detail.Networks, err = s.networkRepo.ListNetworksOf(ctx, org.ID); err != nil {
		return nil, err
	}
	if org.IsNetwork() {
		if detail.NetworkMembers, err = s.networkRepo.ListMembers(ctx, org.ID); err != nil {
			return nil, err
		}
	}
	if detail.Events, err = s.eventRepo.ListByOrganization(ctx, org.ID, s.now()); err != nil {
		return nil, err
	}
	if detail.Projects, err = s.projectRepo.ListByOrganization(ctx, org.ID); err != nil {
		return nil, err
	}

	if viewerID == uuid.Nil {
		detail.Organization = publicOrganization(org)
	}
	detail.LogoURL = s.files.imageURL(domain.ImageLogo, org.Logo)
	detail.BackgroundURL = s.files.imageURL(domain.ImageBackground, org.Background)
	return detail, nil
}

// publicOrganization hides contact fields the organization did not make public
func publicOrganization(o *domain.Organization) *domain.Organization {
	out := *o
	if !o.IsPublicField("email") {
		out.Email = ""
	}
	if !o.IsPublicField("phone") {
		out.Phone = ""
	}
	if !o.IsPublicField("website") {
		out.Website = ""
	}
	if !o.IsPublicField("address") {
		out.Street, out.StreetNumber, out.ZipCode, out.City = "", "", "", ""
		out.Latitude, out.Longitude = nil, nil
	}
	if !o.IsPublicField("bio") {
		out.Bio = ""
	}
	if !o.IsPublicField("supportMessage") {
		out.SupportMessage = ""
	}
	return &out
}

func (s *organizationService) CreateOrganization(ctx context.Context, actorID uuid.UUID, name string) (*domain.Organization, error) {
	logger.EnterMethod("organizationService.CreateOrganization", "name", name)
	if actorID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "name is required")
	}

	slug, err := utils.UniqueSlug(ctx, name, s.orgRepo.SlugExists)
	if err != nil {
		return nil, err
	}
	org := &domain.Organization{Slug: slug, Name: name, Types: []string{}, PublicFields: []string{}}
	if err := s.orgRepo.Create(ctx, org, actorID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSlugTaken
		}
		logger.ExitMethodWithError("organizationService.CreateOrganization", err)
		return nil, err
	}

	logger.ExitMethod("organizationService.CreateOrganization", "organization_id", org.ID, "slug", org.Slug)
	return org, nil
}

// administered loads the organization and checks that actorID is one of its admins
func (s *organizationService) administered(ctx context.Context, actorID uuid.UUID, slug string) (*domain.Organization, error) {
	return requireOrganizationAdmin(ctx, s.orgRepo, actorID, slug)
}

func requireOrganizationAdmin(ctx context.Context, orgRepo repository.OrganizationRepository, actorID uuid.UUID, slug string) (*domain.Organization, error) {
	if actorID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	org, err := orgRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, ErrOrganizationNotFound)
	}
	ok, err := orgRepo.IsAdmin(ctx, org.ID, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return org, nil
}

func (s *organizationService) UpdateGeneral(ctx context.Context, actorID uuid.UUID, slug string, input OrganizationGeneralInput) error {
	logger.EnterMethod("organizationService.UpdateGeneral", "slug", slug)

	org, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	if strings.TrimSpace(input.Name) == "" {
		return NewValidationError("name", "name is required")
	}
	if err := validateChoices("types", input.Types, domain.OrganizationTypes); err != nil {
		return err
	}
	if err := validateChoices("publicFields", input.PublicFields, domain.OrganizationPublicFieldOptions); err != nil {
		return err
	}
	if err := checkAreas(ctx, s.areaRepo, input.AreaIDs); err != nil {
		return err
	}

	wasNetwork := org.IsNetwork()
	before := geo.Address{Street: org.Street, StreetNumber: org.StreetNumber, ZipCode: org.ZipCode, City: org.City}

	org.Name = strings.TrimSpace(input.Name)
	org.Email = normalizeEmail(input.Email)
	org.Phone = strings.TrimSpace(input.Phone)
	org.Website = strings.TrimSpace(input.Website)
	org.Street = strings.TrimSpace(input.Street)
	org.StreetNumber = strings.TrimSpace(input.StreetNumber)
	org.ZipCode = strings.TrimSpace(input.ZipCode)
	org.City = strings.TrimSpace(input.City)
	org.Bio = utils.SanitizeHTML(input.Bio)
	org.SupportMessage = utils.SanitizeHTML(input.SupportMessage)
	org.Types = input.Types
	org.PublicFields = input.PublicFields

	if wasNetwork && !org.IsNetwork() {
		members, err := s.networkRepo.ListMembers(ctx, org.ID)
		if err != nil {
			return err
		}
		if len(members) > 0 {
			return ErrNetworkHasMembers
		}
	}

	after := geo.Address{Street: org.Street, StreetNumber: org.StreetNumber, ZipCode: org.ZipCode, City: org.City}
	if after.Key() != before.Key() {
		org.Latitude, org.Longitude = nil, nil
		coords, err := s.geocoder.Geocode(ctx, after)
		if err != nil {
			logger.WarnContext(ctx, "Geocoding failed", "organization_id", org.ID, "error", err)
		} else if coords != nil {
			org.Latitude, org.Longitude = &coords.Latitude, &coords.Longitude
		}
	}

	if err := s.orgRepo.Update(ctx, org); err != nil {
		logger.ExitMethodWithError("organizationService.UpdateGeneral", err)
		return err
	}
	if err := s.orgRepo.UpdateTypes(ctx, org.ID, org.Types); err != nil {
		return err
	}
	if err := s.orgRepo.ReplaceAreas(ctx, org.ID, input.AreaIDs); err != nil {
		return err
	}

	logger.ExitMethod("organizationService.UpdateGeneral", "organization_id", org.ID)
	return nil
}

func organizationImageKey(o *domain.Organization, field domain.ImageField) (string, error) {
	switch field {
	case domain.ImageLogo:
		return o.Logo, nil
	case domain.ImageBackground:
		return o.Background, nil
	}
	return "", NewValidationError("field", "unsupported image")
}

func (s *organizationService) UploadImage(ctx context.Context, actorID uuid.UUID, slug string, field domain.ImageField, file FileInput) error {
	org, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	oldKey, err := organizationImageKey(org, field)
	if err != nil {
		return err
	}
	return s.files.replaceImage(ctx, field, file, oldKey, func(key string) error {
		return s.orgRepo.UpdateImage(ctx, org.ID, field, key)
	})
}

func (s *organizationService) RemoveImage(ctx context.Context, actorID uuid.UUID, slug string, field domain.ImageField) error {
	org, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	oldKey, err := organizationImageKey(org, field)
	if err != nil {
		return err
	}
	if err := s.orgRepo.UpdateImage(ctx, org.ID, field, ""); err != nil {
		return err
	}
	s.files.remove(ctx, oldKey)
	return nil
}

func (s *organizationService) DeleteOrganization(ctx context.Context, actorID uuid.UUID, slug string) error {
	org, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	if err := s.orgRepo.Delete(ctx, org.ID); err != nil {
		return err
	}
	s.files.remove(ctx, org.Logo)
	s.files.remove(ctx, org.Background)
	logger.Info("Organization deleted", "organization_id", org.ID, "slug", org.Slug, "actor_id", actorID)
	return nil
}
