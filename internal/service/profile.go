package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/repository"
	"community-platform-backend/internal/security"
	"community-platform-backend/internal/utils"

	"github.com/google/uuid"
)

type profileService struct {
	profileRepo repository.ProfileRepository
	orgRepo     repository.OrganizationRepository
	eventRepo   repository.EventRepository
	projectRepo repository.ProjectRepository
	areaRepo    repository.AreaRepository
	files       *FileStore
	emailSvc    EmailService
	now         func() time.Time
}

func NewProfileService(store Repositories, files *FileStore, emailSvc EmailService) ProfileService {
	return &profileService{
		profileRepo: store.Profiles,
		orgRepo:     store.Organizations,
		eventRepo:   store.Events,
		projectRepo: store.Projects,
		areaRepo:    store.Areas,
		files:       files,
		emailSvc:    emailSvc,
		now:         time.Now,
	}
}

func (s *profileService) GetProfile(ctx context.Context, viewerID uuid.UUID, username string) (*ProfileDetail, error) {
	p, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}

	detail := &ProfileDetail{Profile: p, IsOwner: viewerID == p.ID}
	anonymous := viewerID == uuid.Nil
	visible := func(field string) bool { return !anonymous || p.IsPublic(field) }

	if visible("areas") {
		if detail.Areas, err = s.profileRepo.ListAreas(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	if visible("organizations") {
		if detail.Administers, err = s.orgRepo.ListAdministeredBy(ctx, p.ID); err != nil {
			return nil, err
		}
		if detail.MemberOf, err = s.orgRepo.ListMemberOf(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	if visible("events") {
		if detail.Events, err = s.eventRepo.ListForProfile(ctx, p.ID, s.now()); err != nil {
			return nil, err
		}
	}
	if visible("projects") {
		if detail.Projects, err = s.projectRepo.ListForProfile(ctx, p.ID); err != nil {
			return nil, err
		}
	}

	if anonymous {
		detail.Profile = publicProfile(p)
	}
	detail.AvatarURL = s.files.imageURL(domain.ImageAvatar, detail.Profile.Avatar)
	detail.BackgroundURL = s.files.imageURL(domain.ImageBackground, detail.Profile.Background)
	return detail, nil
}

// publicProfile copies p keeping only the fields its owner made public
func publicProfile(p *domain.Profile) *domain.Profile {
	out := &domain.Profile{
		ID:           p.ID,
		Username:     p.Username,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		PublicFields: p.PublicFields,
		Score:        p.Score,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.IsPublic("email") {
		out.Email = p.Email
	}
	if p.IsPublic("phone") {
		out.Phone = p.Phone
	}
	if p.IsPublic("website") {
		out.Website = p.Website
	}
	if p.IsPublic("bio") {
		out.Bio = p.Bio
	}
	if p.IsPublic("position") {
		out.Position = p.Position
	}
	if p.IsPublic("academicTitle") {
		out.AcademicTitle = p.AcademicTitle
	}
	if p.IsPublic("avatar") {
		out.Avatar = p.Avatar
	}
	if p.IsPublic("background") {
		out.Background = p.Background
	}
	return out
}

// owned loads the profile and checks that actorID owns it
func (s *profileService) owned(ctx context.Context, actorID uuid.UUID, username string) (*domain.Profile, error) {
	if actorID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	p, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}
	if p.ID != actorID {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *profileService) UpdateGeneral(ctx context.Context, actorID uuid.UUID, username string, input ProfileGeneralInput) error {
	logger.EnterMethod("profileService.UpdateGeneral", "username", username)

	p, err := s.owned(ctx, actorID, username)
	if err != nil {
		return err
	}
	if err := validateChoices("publicFields", input.PublicFields, domain.ProfilePublicFieldOptions); err != nil {
		return err
	}
	if err := checkAreas(ctx, s.areaRepo, input.AreaIDs); err != nil {
		return err
	}

	p.FirstName = strings.TrimSpace(input.FirstName)
	p.LastName = strings.TrimSpace(input.LastName)
	p.AcademicTitle = strings.TrimSpace(input.AcademicTitle)
	p.Position = strings.TrimSpace(input.Position)
	p.Bio = utils.SanitizeHTML(input.Bio)
	p.Phone = strings.TrimSpace(input.Phone)
	p.Website = strings.TrimSpace(input.Website)
	p.PublicFields = input.PublicFields

	if err := s.profileRepo.Update(ctx, p); err != nil {
		logger.ExitMethodWithError("profileService.UpdateGeneral", err)
		return err
	}
	if err := s.profileRepo.ReplaceAreas(ctx, p.ID, input.AreaIDs); err != nil {
		logger.ExitMethodWithError("profileService.UpdateGeneral", err)
		return err
	}

	logger.ExitMethod("profileService.UpdateGeneral", "profile_id", p.ID)
	return nil
}

func (s *profileService) ChangeEmail(ctx context.Context, actorID uuid.UUID, username, email, password string) error {
	p, err := s.owned(ctx, actorID, username)
	if err != nil {
		return err
	}
	if !security.CheckPassword(p.PasswordHash, password) {
		return NewValidationError("password", "password is incorrect")
	}

	email = normalizeEmail(email)
	if email == p.Email {
		return nil
	}
	if _, err := s.profileRepo.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if err := s.profileRepo.UpdateEmail(ctx, p.ID, email); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrEmailTaken
		}
		return err
	}

	oldEmail := p.Email
	p.Email = email
	if err := s.emailSvc.SendEmailChanged(ctx, p, oldEmail); err != nil {
		logger.ErrorContext(ctx, "Failed to send email change notice", "profile_id", p.ID, "error", err)
	}
	return nil
}

func (s *profileService) ChangePassword(ctx context.Context, actorID uuid.UUID, username, current, next string) error {
	p, err := s.owned(ctx, actorID, username)
	if err != nil {
		return err
	}
	if !security.CheckPassword(p.PasswordHash, current) {
		return NewValidationError("currentPassword", "password is incorrect")
	}
	if len(next) < minPasswordLength {
		return NewValidationError("password", "password must be at least 8 characters")
	}
	hash, err := security.HashPassword(next)
	if err != nil {
		return err
	}
	return s.profileRepo.UpdatePassword(ctx, p.ID, hash)
}

func profileImageKey(p *domain.Profile, field domain.ImageField) (string, error) {
	switch field {
	case domain.ImageAvatar:
		return p.Avatar, nil
	case domain.ImageBackground:
		return p.Background, nil
	}
	return "", NewValidationError("field", "unsupported image")
}

func (s *profileService) UploadImage(ctx context.Context, actorID uuid.UUID, username string, field domain.ImageField, file FileInput) error {
	p, err := s.owned(ctx, actorID, username)
	if err != nil {
		return err
	}
	oldKey, err := profileImageKey(p, field)
	if err != nil {
		return err
	}
	return s.files.replaceImage(ctx, field, file, oldKey, func(key string) error {
		return s.profileRepo.UpdateImage(ctx, p.ID, field, key)
	})
}

func (s *profileService) RemoveImage(ctx context.Context, actorID uuid.UUID, username string, field domain.ImageField) error {
	p, err := s.owned(ctx, actorID, username)
	if err != nil {
		return err
	}
	oldKey, err := profileImageKey(p, field)
	if err != nil {
		return err
	}
	if err := s.profileRepo.UpdateImage(ctx, p.ID, field, ""); err != nil {
		return err
	}
	s.files.remove(ctx, oldKey)
	return nil
}

func (s *profileService) DeleteAccount(ctx context.Context, actorID uuid.UUID, username, password string) error {
	logger.EnterMethod("profileService.DeleteAccount", "username", username)

	p, err := s.owned(ctx, actorID, username)
	if err != nil {
		return err
	}
	if !security.CheckPassword(p.PasswordHash, password) {
		return NewValidationError("password", "password is incorrect")
	}

	sole, err := s.profileRepo.ListSoleAdministrations(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(sole) > 0 {
		err := &SoleAdministratorError{Entities: sole}
		logger.ExitMethodWithError("profileService.DeleteAccount", err)
		return err
	}

	if err := s.profileRepo.Delete(ctx, p.ID); err != nil {
		logger.ExitMethodWithError("profileService.DeleteAccount", err)
		return err
	}
	s.files.remove(ctx, p.Avatar)
	s.files.remove(ctx, p.Background)

	logger.ExitMethod("profileService.DeleteAccount", "profile_id", p.ID)
	return nil
}

// validateChoices rejects values outside options
func validateChoices(field string, values, options []string) error {
	for _, v := range values {
		if !slices.Contains(options, v) {
			return NewValidationError(field, "unknown value "+v)
		}
	}
	return nil
}

// checkAreas makes sure every id names an existing area
func checkAreas(ctx context.Context, areaRepo repository.AreaRepository, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	unique := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	n, err := areaRepo.CountExisting(ctx, ids)
	if err != nil {
		return err
	}
	if n != len(unique) {
		return NewValidationError("areas", "unknown area")
	}
	return nil
}
