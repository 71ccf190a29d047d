package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/repository"
	"community-platform-backend/internal/storage"
	"community-platform-backend/internal/utils"

	"github.com/google/uuid"
)

type eventService struct {
	eventRepo   repository.EventRepository
	orgRepo     repository.OrganizationRepository
	profileRepo repository.ProfileRepository
	files       *FileStore
	emailSvc    EmailService
	presignTTL  time.Duration
	now         func() time.Time
}

func NewEventService(store Repositories, files *FileStore, emailSvc EmailService, presignTTL time.Duration) EventService {
	return &eventService{
		eventRepo:   store.Events,
		orgRepo:     store.Organizations,
		profileRepo: store.Profiles,
		files:       files,
		emailSvc:    emailSvc,
		presignTTL:  presignTTL,
		now:         time.Now,
	}
}

func (s *eventService) ListEvents(ctx context.Context, viewerID uuid.UUID, page domain.Page) (*EventList, error) {
	filter := domain.EventFilter{From: s.now(), Page: page.Normalize()}
	if viewerID != uuid.Nil {
		filter.ViewerID = &viewerID
	}
	items, total, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &EventList{Items: items, Total: total}, nil
}

func (s *eventService) GetEvent(ctx context.Context, viewerID uuid.UUID, slug string) (*EventDetail, error) {
	e, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}

	detail := &EventDetail{Event: e, ParticipationState: domain.ParticipationNone}
	if viewerID != uuid.Nil {
		if detail.IsAdmin, err = s.eventRepo.IsAdmin(ctx, e.ID, viewerID); err != nil {
			return nil, err
		}
	}
	// drafts are only visible to their admins
	if !e.Published && !detail.IsAdmin {
		return nil, ErrEventNotFound
	}

	if detail.Admins, err = s.eventRepo.ListRelation(ctx, e.ID, domain.RelationAdmins); err != nil {
		return nil, err
	}
	if detail.Team, err = s.eventRepo.ListRelation(ctx, e.ID, domain.RelationTeam); err != nil {
		return nil, err
	}
	if detail.Speakers, err = s.eventRepo.ListRelation(ctx, e.ID, domain.RelationSpeakers); err != nil {
		return nil, err
	}
	if detail.Organizations, err = s.eventRepo.ListResponsibleOrganizations(ctx, e.ID); err != nil {
		return nil, err
	}
	if detail.Documents, err = s.eventRepo.ListDocuments(ctx, e.ID); err != nil {
		return nil, err
	}
	if detail.Children, err = s.eventRepo.ListChildren(ctx, e.ID, viewerID); err != nil {
		return nil, err
	}
	if detail.ParticipantCount, detail.WaitingCount, err = s.eventRepo.CountParticipants(ctx, e.ID); err != nil {
		return nil, err
	}
	if viewerID != uuid.Nil {
		if detail.ParticipationState, err = s.eventRepo.GetParticipationState(ctx, e.ID, viewerID); err != nil {
			return nil, err
		}
	}
	detail.ParticipationOpen = e.ParticipationOpen(s.now())
	detail.BackgroundURL = s.files.imageURL(domain.ImageBackground, e.Background)
	return detail, nil
}

func (s *eventService) CreateEvent(ctx context.Context, actorID uuid.UUID, input EventCreateInput) (*domain.Event, error) {
	logger.EnterMethod("eventService.CreateEvent", "name", input.Name)
	if actorID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, NewValidationError("name", "name is required")
	}
	if input.EndTime.Before(input.StartTime) {
		return nil, NewValidationError("endTime", "end must not be before start")
	}

	e := &domain.Event{Name: name, StartTime: input.StartTime, EndTime: input.EndTime}
	if input.ParentSlug != "" {
		parent, err := s.administered(ctx, actorID, input.ParentSlug)
		if err != nil {
			return nil, err
		}
		e.ParentEventID = &parent.ID
	}

	slug, err := utils.UniqueSlug(ctx, name, s.eventRepo.SlugExists)
	if err != nil {
		return nil, err
	}
	e.Slug = slug
	if err := s.eventRepo.Create(ctx, e, actorID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSlugTaken
		}
		logger.ExitMethodWithError("eventService.CreateEvent", err)
		return nil, err
	}

	logger.ExitMethod("eventService.CreateEvent", "event_id", e.ID, "slug", e.Slug)
	return e, nil
}

func (s *eventService) administered(ctx context.Context, actorID uuid.UUID, slug string) (*domain.Event, error) {
	if actorID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	e, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	ok, err := s.eventRepo.IsAdmin(ctx, e.ID, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return e, nil
}

func (s *eventService) UpdateGeneral(ctx context.Context, actorID uuid.UUID, slug string, input EventGeneralInput) error {
	e, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}

	fields := map[string][]string{}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = append(fields["name"], "name is required")
	}
	if input.EndTime.Before(input.StartTime) {
		fields["endTime"] = append(fields["endTime"], "end must not be before start")
	}
	if input.ParticipationUntil != nil && input.ParticipationUntil.After(input.EndTime) {
		fields["participationUntil"] = append(fields["participationUntil"], "participation must close before the event ends")
	}
	if input.ParticipantLimit < 0 {
		fields["participantLimit"] = append(fields["participantLimit"], "limit must not be negative")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	e.Name = strings.TrimSpace(input.Name)
	e.Subline = strings.TrimSpace(input.Subline)
	e.Description = utils.SanitizeHTML(input.Description)
	e.StartTime = input.StartTime
	e.EndTime = input.EndTime
	e.ParticipationUntil = input.ParticipationUntil
	e.ParticipantLimit = input.ParticipantLimit
	e.VenueName = strings.TrimSpace(input.VenueName)
	e.VenueStreet = strings.TrimSpace(input.VenueStreet)
	e.VenueStreetNumber = strings.TrimSpace(input.VenueStreetNumber)
	e.VenueZipCode = strings.TrimSpace(input.VenueZipCode)
	e.VenueCity = strings.TrimSpace(input.VenueCity)
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return err
	}

	promoted, err := s.eventRepo.FillFromWaitingList(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("fill waiting list: %w", err)
	}
	s.notifyPromoted(ctx, e, promoted)
	return nil
}

func (s *eventService) SetPublished(ctx context.Context, actorID uuid.UUID, slug string, published bool) error {
	e, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	return s.eventRepo.SetPublished(ctx, e.ID, published)
}

func (s *eventService) Cancel(ctx context.Context, actorID uuid.UUID, slug string) error {
	e, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	return s.eventRepo.SetCanceled(ctx, e.ID, true)
}

func (s *eventService) DeleteEvent(ctx context.Context, actorID uuid.UUID, slug string) error {
	e, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	docs, err := s.eventRepo.ListDocuments(ctx, e.ID)
	if err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, e.ID); err != nil {
		return err
	}
	for _, d := range docs {
		s.files.remove(ctx, d.Key)
	}
	s.files.remove(ctx, e.Background)
	logger.Info("Event deleted", "event_id", e.ID, "slug", e.Slug, "actor_id", actorID)
	return nil
}

func (s *eventService) UploadImage(ctx context.Context, actorID uuid.UUID, slug string, file FileInput) error {
	e, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	return s.files.replaceImage(ctx, domain.ImageBackground, file, e.Background, func(key string) error {
		return s.eventRepo.UpdateImage(ctx, e.ID, domain.ImageBackground, key)
	})
}

func (s *eventService) RemoveImage(ctx context.Context, actorID uuid.UUID, slug string) error {
	e, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	if err := s.eventRepo.UpdateImage(ctx, e.ID, domain.ImageBackground, ""); err != nil {
		return err
	}
	s.files.remove(ctx, e.Background)
	return nil
}

func validRelation(relation domain.Relation) bool {
	switch relation {
	case domain.RelationAdmins, domain.RelationTeam, domain.RelationSpeakers:
		return true
	}
	return false
}

func (s *eventService) AddRelation(ctx context.Context, actorID uuid.UUID, slug string, relation domain.Relation, profileID uuid.UUID) error {
	if !validRelation(relation) {
		return NewValidationError("relation", "unknown relation")
	}
	e, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	if _, err := s.profileRepo.GetByID(ctx, profileID); err != nil {
		return notFound(err, ErrProfileNotFound)
	}
	return s.eventRepo.AddRelation(ctx, e.ID, relation, profileID)
}

func (s *eventService) RemoveRelation(ctx context.Context, actorID uuid.UUID, slug string, relation domain.Relation, profileID uuid.UUID) error {
	if !validRelation(relation) {
		return NewValidationError("relation", "unknown relation")
	}
	e, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	return mapRelationError(s.eventRepo.RemoveRelation(ctx, e.ID, relation, profileID))
}

func mapRelationError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrLastAdmin):
		return ErrLastAdmin
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotAMember
	}
	return err
}

func (s *eventService) AddOrganization(ctx context.Context, actorID uuid.UUID, slug string, organizationID uuid.UUID) error {
	e, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	if _, err := s.orgRepo.GetByID(ctx, organizationID); err != nil {
		return notFound(err, ErrOrganizationNotFound)
	}
	return s.eventRepo.AddResponsibleOrganization(ctx, e.ID, organizationID)
}

func (s *eventService) RemoveOrganization(ctx context.Context, actorID uuid.UUID, slug string, organizationID uuid.UUID) error {
	e, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	return notFound(s.eventRepo.RemoveResponsibleOrganization(ctx, e.ID, organizationID), ErrOrganizationNotFound)
}

func (s *eventService) UploadDocument(ctx context.Context, actorID uuid.UUID, slug string, input DocumentInput) (*domain.Document, error) {
	logger.EnterMethod("eventService.UploadDocument", "slug", slug, "filename", input.Filename)

	e, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return nil, err
	}
	key, up, err := s.files.save(ctx, "documents", input.FileInput, storage.DocumentTypes)
	if err != nil {
		logger.ExitMethodWithError("eventService.UploadDocument", err)
		return nil, err
	}

	doc := &domain.Document{
		Filename:    input.Filename,
		Key:         key,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		MimeType:    up.ContentType,
		SizeBytes:   up.Size,
	}
	if err := s.eventRepo.AddDocument(ctx, e.ID, doc); err != nil {
		s.files.remove(ctx, key)
		logger.ExitMethodWithError("eventService.UploadDocument", err)
		return nil, err
	}

	logger.ExitMethod("eventService.UploadDocument", "document_id", doc.ID)
	return doc, nil
}

func (s *eventService) DeleteDocument(ctx context.Context, actorID uuid.UUID, slug string, documentID uuid.UUID) error {
	e, err := s.administered(ctx, actorID, slug)
	if err != nil {
		return err
	}
	doc, err := s.eventRepo.GetDocument(ctx, e.ID, documentID)
	if err != nil {
		return notFound(err, ErrDocumentNotFound)
	}
	if err := s.eventRepo.DeleteDocument(ctx, doc.ID); err != nil {
		return notFound(err, ErrDocumentNotFound)
	}
	s.files.remove(ctx, doc.Key)
	return nil
}

func (s *eventService) DocumentURL(ctx context.Context, viewerID uuid.UUID, slug string, documentID uuid.UUID) (string, error) {
	e, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		return "", notFound(err, ErrEventNotFound)
	}
	if !e.Published {
		if _, err := s.administered(ctx, viewerID, slug); err != nil {
			return "", ErrEventNotFound
		}
	}
	doc, err := s.eventRepo.GetDocument(ctx, e.ID, documentID)
	if err != nil {
		return "", notFound(err, ErrDocumentNotFound)
	}
	return s.files.storage.GeneratePresignedDownloadURL(ctx, doc.Key, doc.Filename, s.presignTTL)
}

func (s *eventService) Participate(ctx context.Context, profileID uuid.UUID, slug string) (domain.ParticipationState, error) {
	logger.EnterMethod("eventService.Participate", "slug", slug, "profile_id", profileID)
	if profileID == uuid.Nil {
		return domain.ParticipationNone, ErrUnauthenticated
	}
	e, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		return domain.ParticipationNone, notFound(err, ErrEventNotFound)
	}
	if !e.ParticipationOpen(s.now()) {
		return domain.ParticipationNone, ErrParticipationClosed
	}

	state, err := s.eventRepo.Participate(ctx, e.ID, profileID)
	if err != nil {
		logger.ExitMethodWithError("eventService.Participate", err)
		return domain.ParticipationNone, notFound(err, ErrEventNotFound)
	}
	logger.ExitMethod("eventService.Participate", "state", state)
	return state, nil
}

func (s *eventService) Withdraw(ctx context.Context, profileID uuid.UUID, slug string) error {
	logger.EnterMethod("eventService.Withdraw", "slug", slug, "profile_id", profileID)
	if profileID == uuid.Nil {
		return ErrUnauthenticated
	}
	e, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		return notFound(err, ErrEventNotFound)
	}

	promoted, err := s.eventRepo.Withdraw(ctx, e.ID, profileID)
	if err != nil {
		logger.ExitMethodWithError("eventService.Withdraw", err)
		return notFound(err, ErrNotAMember)
	}
	s.notifyPromoted(ctx, e, promoted)
	logger.ExitMethod("eventService.Withdraw")
	return nil
}

func (s *eventService) notifyPromoted(ctx context.Context, e *domain.Event, promoted []domain.ProfileSummary) {
	for i := range promoted {
		if err := s.emailSvc.SendWaitingListPromotion(ctx, &promoted[i], e); err != nil {
			logger.ErrorContext(ctx, "Failed to notify promoted participant", "event_id", e.ID, "profile_id", promoted[i].ID, "error", err)
		}
	}
}
