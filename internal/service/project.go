package service

import (
	"context"
	"errors"
	"strings"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/repository"
	"community-platform-backend/internal/utils"

	"github.com/google/uuid"
)

type projectService struct {
	projectRepo repository.ProjectRepository
	orgRepo     repository.OrganizationRepository
	profileRepo repository.ProfileRepository
	files       *FileStore
}

func NewProjectService(store Repositories, files *FileStore) ProjectService {
	return &projectService{
		projectRepo: store.Projects,
		orgRepo:     store.Organizations,
		profileRepo: store.Profiles,
		files:       files,
	}
}

func (s *projectService) ListProjects(ctx context.Context, page domain.Page) (*ProjectList, error) {
	items, total, err := s.projectRepo.List(ctx, page.Normalize())
	if err != nil {
		return nil, err
	}
	return &ProjectList{Items: items, Total: total}, nil
}

func (s *projectService) GetProject(ctx context.Context, viewerID uuid.UUID, slug string) (*ProjectDetail, error) {
	p, err := s.projectRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}

	detail := &ProjectDetail{Project: p}
	if viewerID != uuid.Nil {
		if detail.IsAdmin, err = s.projectRepo.IsAdmin(ctx, p.ID, viewerID); err != nil {
			return nil, err
		}
	}
	if !p.Published && !detail.IsAdmin {
		return nil, ErrProjectNotFound
	}

	if detail.Admins, err = s.projectRepo.ListRelation(ctx, p.ID, domain.RelationAdmins); err != nil {
		return nil, err
	}
	if detail.Team, err = s.projectRepo.ListRelation(ctx, p.ID, domain.RelationTeam); err != nil {
		return nil, err
	}
	if detail.Organizations, err = s.projectRepo.ListResponsibleOrganizations(ctx, p.ID); err != nil {
		return nil, err
	}
	if detail.Awards, err = s.projectRepo.ListAwards(ctx, p.ID); err != nil {
		return nil, err
	}
	detail.LogoURL = s.files.imageURL(domain.ImageLogo, p.Logo)
	detail.BackgroundURL = s.files.imageURL(domain.ImageBackground, p.Background)
	return detail, nil
}

func (s *projectService) CreateProject(ctx context.Context, actorID uuid.UUID, name string) (*domain.Project, error) {
	logger.EnterMethod("projectService.CreateProject", "name", name)
	if actorID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "name is required")
	}

	slug, err := utils.UniqueSlug(ctx, name, s.projectRepo.SlugExists)
	if err != nil {
		return nil, err
	}
	p := &domain.Project{Name: name, Slug: slug}
	if err := s.projectRepo.Create(ctx, p, actorID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSlugTaken
		}
		logger.ExitMethodWithError("projectService.CreateProject", err)
		return nil, err
	}

	logger.ExitMethod("projectService.CreateProject", "project_id", p.ID, "slug", p.Slug)
	return p, nil
}

func (s *projectService) administered(ctx context.Context, actorID uuid.UUID, slug string) (*domain.Project, error) {
	if actorID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	p, err := s.projectRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}
	ok, err := s.projectRepo.IsAdmin(ctx, p.ID, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *projectService) UpdateGeneral(ctx context.Context, actorID uuid.UUID, slug string, input ProjectGeneralInput) error {
	p, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	if strings.TrimSpace(input.Name) == "" {
		return NewValidationError("name", "name is required")
	}

	p.Name = strings.TrimSpace(input.Name)
	p.Headline = strings.TrimSpace(input.Headline)
	p.Excerpt = utils.StripHTML(input.Excerpt)
	p.Description = utils.SanitizeHTML(input.Description)
	p.Website = strings.TrimSpace(input.Website)
	p.Published = input.Published
	return s.projectRepo.Update(ctx, p)
}

func projectImageKey(p *domain.Project, field domain.ImageField) (string, error) {
	switch field {
	case domain.ImageLogo:
		return p.Logo, nil
	case domain.ImageBackground:
		return p.Background, nil
	}
	return "", NewValidationError("field", "unsupported image")
}

func (s *projectService) UploadImage(ctx context.Context, actorID uuid.UUID, slug string, field domain.ImageField, file FileInput) error {
	p, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	oldKey, err := projectImageKey(p, field)
	if err != nil {
		return err
	}
	return s.files.replaceImage(ctx, field, file, oldKey, func(key string) error {
		return s.projectRepo.UpdateImage(ctx, p.ID, field, key)
	})
}

func (s *projectService) RemoveImage(ctx context.Context, actorID uuid.UUID, slug string, field domain.ImageField) error {
	p, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	oldKey, err := projectImageKey(p, field)
	if err != nil {
		return err
	}
	if err := s.projectRepo.UpdateImage(ctx, p.ID, field, ""); err != nil {
		return err
	}
	s.files.remove(ctx, oldKey)
	return nil
}

func (s *projectService) DeleteProject(ctx context.Context, actorID uuid.UUID, slug string) error {
	p, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	if err := s.projectRepo.Delete(ctx, p.ID); err != nil {
		return err
	}
	s.files.remove(ctx, p.Logo)
	s.files.remove(ctx, p.Background)
	logger.Info("Project deleted", "project_id", p.ID, "slug", p.Slug, "actor_id", actorID)
	return nil
}

// projects have admins and a team, no speakers
func projectRelation(relation domain.Relation) error {
	if relation != domain.RelationAdmins && relation != domain.RelationTeam {
		return NewValidationError("relation", "unknown relation")
	}
	return nil
}

func (s *projectService) AddRelation(ctx context.Context, actorID uuid.UUID, slug string, relation domain.Relation, profileID uuid.UUID) error {
	if err := projectRelation(relation); err != nil {
		return err
	}
	p, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	if _, err := s.profileRepo.GetByID(ctx, profileID); err != nil {
		return notFound(err, ErrProfileNotFound)
	}
	return s.projectRepo.AddRelation(ctx, p.ID, relation, profileID)
}

func (s *projectService) RemoveRelation(ctx context.Context, actorID uuid.UUID, slug string, relation domain.Relation, profileID uuid.UUID) error {
	if err := projectRelation(relation); err != nil {
		return err
	}
	p, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	return mapRelationError(s.projectRepo.RemoveRelation(ctx, p.ID, relation, profileID))
}

func (s *projectService) AddOrganization(ctx context.Context, actorID uuid.UUID, slug string, organizationID uuid.UUID) error {
	p, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	if _, err := s.orgRepo.GetByID(ctx, organizationID); err != nil {
		return notFound(err, ErrOrganizationNotFound)
	}
	return s.projectRepo.AddResponsibleOrganization(ctx, p.ID, organizationID)
}

func (s *projectService) RemoveOrganization(ctx context.Context, actorID uuid.UUID, slug string, organizationID uuid.UUID) error {
	p, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	return notFound(s.projectRepo.RemoveResponsibleOrganization(ctx, p.ID, organizationID), ErrOrganizationNotFound)
}
