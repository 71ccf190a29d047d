package service_test

import (
	"context"
	"testing"
	"time"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/repository"
	"community-platform-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type eventFixture struct {
	admin  uuid.UUID
	event  *domain.Event
	events *mockEventRepo
	emails *mockEmailService
	svc    service.EventService
}

func newEventFixture() *eventFixture {
	now := time.Now()
	f := &eventFixture{
		admin: uuid.New(),
		event: &domain.Event{
			ID:        uuid.New(),
			Slug:      "sommerfest",
			Name:      "Sommerfest",
			StartTime: now.Add(24 * time.Hour),
			EndTime:   now.Add(30 * time.Hour),
			Published: true,
		},
		events: new(mockEventRepo),
		emails: new(mockEmailService),
	}
	store := service.Repositories{Events: f.events}
	f.svc = service.NewEventService(store, service.NewFileStore(nil, nil, 5), f.emails, 15*time.Minute)
	return f
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()
	start := time.Date(2026, 7, 1, 18, 0, 0, 0, time.UTC)

	f.events.On("SlugExists", ctx, "sommerfest").Return(false, nil)
	f.events.On("Create", ctx, mock.AnythingOfType("*domain.Event"), f.admin).Return(nil)

	e, err := f.svc.CreateEvent(ctx, f.admin, service.EventCreateInput{Name: "Sommerfest", StartTime: start, EndTime: start.Add(4 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, "sommerfest", e.Slug)
	assert.Nil(t, e.ParentEventID)

	_, err = f.svc.CreateEvent(ctx, f.admin, service.EventCreateInput{Name: "Broken", StartTime: start, EndTime: start.Add(-time.Hour)})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "endTime")
}

func TestEventService_CreateEvent_ParentRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()
	outsider := uuid.New()
	f.events.On("GetBySlug", ctx, "sommerfest").Return(f.event, nil)
	f.events.On("IsAdmin", ctx, f.event.ID, outsider).Return(false, nil)

	start := time.Now().Add(time.Hour)
	_, err := f.svc.CreateEvent(ctx, outsider, service.EventCreateInput{
		Name: "Workshop", StartTime: start, EndTime: start.Add(time.Hour), ParentSlug: "sommerfest",
	})
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestEventService_GetEvent_DraftHidden(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()
	f.event.Published = false
	viewer := uuid.New()
	f.events.On("GetBySlug", ctx, "sommerfest").Return(f.event, nil)
	f.events.On("IsAdmin", ctx, f.event.ID, viewer).Return(false, nil)

	_, err := f.svc.GetEvent(ctx, uuid.Nil, "sommerfest")
	assert.ErrorIs(t, err, service.ErrEventNotFound)

	_, err = f.svc.GetEvent(ctx, viewer, "sommerfest")
	assert.ErrorIs(t, err, service.ErrEventNotFound)
}

func TestEventService_Participate(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()
	profileID := uuid.New()
	f.events.On("GetBySlug", ctx, "sommerfest").Return(f.event, nil)
	f.events.On("Participate", ctx, f.event.ID, profileID).Return(domain.ParticipationWaiting, nil)

	state, err := f.svc.Participate(ctx, profileID, "sommerfest")
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipationWaiting, state)

	_, err = f.svc.Participate(ctx, uuid.Nil, "sommerfest")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestEventService_Participate_Closed(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()
	closed := time.Now().Add(-time.Minute)
	f.event.ParticipationUntil = &closed
	f.events.On("GetBySlug", ctx, "sommerfest").Return(f.event, nil)

	_, err := f.svc.Participate(ctx, uuid.New(), "sommerfest")
	assert.ErrorIs(t, err, service.ErrParticipationClosed)
	f.events.AssertNotCalled(t, "Participate", mock.Anything, mock.Anything, mock.Anything)
}

func TestEventService_Withdraw_NotifiesPromoted(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()
	profileID := uuid.New()
	promoted := domain.ProfileSummary{ID: uuid.New(), FirstName: "Grace", Email: "grace@example.org"}

	f.events.On("GetBySlug", ctx, "sommerfest").Return(f.event, nil)
	f.events.On("Withdraw", ctx, f.event.ID, profileID).Return([]domain.ProfileSummary{promoted}, nil)
	f.emails.On("SendWaitingListPromotion", ctx, &promoted, f.event).Return(nil)

	require.NoError(t, f.svc.Withdraw(ctx, profileID, "sommerfest"))
	f.emails.AssertExpectations(t)
}

func TestEventService_UpdateGeneral_RaisedLimitPromotesWaiting(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()
	f.event.ParticipantLimit = 2
	first := domain.ProfileSummary{ID: uuid.New(), FirstName: "Ada", Email: "ada@example.org"}
	second := domain.ProfileSummary{ID: uuid.New(), FirstName: "Linus", Email: "linus@example.org"}

	f.events.On("GetBySlug", ctx, "sommerfest").Return(f.event, nil)
	f.events.On("IsAdmin", ctx, f.event.ID, f.admin).Return(true, nil)
	f.events.On("Update", ctx, f.event).Return(nil)
	f.events.On("FillFromWaitingList", ctx, f.event.ID).Return([]domain.ProfileSummary{first, second}, nil)
	f.emails.On("SendWaitingListPromotion", ctx, &first, f.event).Return(nil)
	f.emails.On("SendWaitingListPromotion", ctx, &second, f.event).Return(nil)

	err := f.svc.UpdateGeneral(ctx, f.admin, "sommerfest", service.EventGeneralInput{
		Name:             "Sommerfest",
		StartTime:        f.event.StartTime,
		EndTime:          f.event.EndTime,
		ParticipantLimit: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, f.event.ParticipantLimit)
	f.events.AssertExpectations(t)
	f.emails.AssertNumberOfCalls(t, "SendWaitingListPromotion", 2)
}

func TestEventService_Withdraw_NotParticipating(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()
	profileID := uuid.New()
	f.events.On("GetBySlug", ctx, "sommerfest").Return(f.event, nil)
	f.events.On("Withdraw", ctx, f.event.ID, profileID).Return(nil, repository.ErrNotFound)

	assert.ErrorIs(t, f.svc.Withdraw(ctx, profileID, "sommerfest"), service.ErrNotAMember)
	f.emails.AssertNotCalled(t, "SendWaitingListPromotion", mock.Anything, mock.Anything, mock.Anything)
}

func TestEventService_RemoveRelation(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()
	f.events.On("GetBySlug", ctx, "sommerfest").Return(f.event, nil)
	f.events.On("IsAdmin", ctx, f.event.ID, f.admin).Return(true, nil)
	f.events.On("RemoveRelation", ctx, f.event.ID, domain.RelationAdmins, f.admin).Return(repository.ErrLastAdmin)

	err := f.svc.RemoveRelation(ctx, f.admin, "sommerfest", domain.RelationAdmins, f.admin)
	assert.ErrorIs(t, err, service.ErrLastAdmin)

	err = f.svc.RemoveRelation(ctx, f.admin, "sommerfest", domain.Relation("fans"), f.admin)
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)
}
