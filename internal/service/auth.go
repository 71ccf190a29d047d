package service

import (
	"context"
	"errors"
	"strings"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/repository"
	"community-platform-backend/internal/security"
	"community-platform-backend/internal/utils"

	"github.com/google/uuid"
)

const minPasswordLength = 8

type authService struct {
	profileRepo repository.ProfileRepository
	emailSvc    EmailService
}

func NewAuthService(profileRepo repository.ProfileRepository, emailSvc EmailService) AuthService {
	return &authService{
		profileRepo: profileRepo,
		emailSvc:    emailSvc,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.Profile, error) {
	logger.EnterMethod("authService.Register", "email", input.Email)

	email := normalizeEmail(input.Email)
	if !input.TermsAccepted {
		return nil, NewValidationError("termsAccepted", "terms must be accepted")
	}
	if len(input.Password) < minPasswordLength {
		return nil, NewValidationError("password", "password must be at least 8 characters")
	}

	if _, err := s.profileRepo.GetByEmail(ctx, email); err == nil {
		logger.ExitMethodWithError("authService.Register", ErrEmailTaken)
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	username, err := utils.UniqueSlug(ctx, input.FirstName+" "+input.LastName, s.profileRepo.UsernameExists)
	if err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	p := &domain.Profile{
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		FirstName:     strings.TrimSpace(input.FirstName),
		LastName:      strings.TrimSpace(input.LastName),
		TermsAccepted: true,
	}
	if err := s.profileRepo.Create(ctx, p); err != nil {
		logger.ExitMethodWithError("authService.Register", err)
		if repository.ConstraintOf(err) == repository.ConstraintProfileUsername {
			return nil, ErrUsernameTaken
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if err := s.emailSvc.SendWelcome(ctx, p); err != nil {
		logger.ErrorContext(ctx, "Failed to send welcome mail", "profile_id", p.ID, "error", err)
	}

	logger.ExitMethod("authService.Register", "profile_id", p.ID, "username", p.Username)
	return p, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.Profile, error) {
	p, err := s.profileRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !security.CheckPassword(p.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

func (s *authService) IsPlatformAdmin(ctx context.Context, profileID uuid.UUID) (bool, error) {
	p, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.IsPlatformAdmin, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
