package http

import (
	"net/http"
	"time"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/service"

	"github.com/google/uuid"
)

type EventHandler struct {
	*responder
	eventSvc service.EventService
}

func NewEventHandler(rs *responder, eventSvc service.EventService) *EventHandler {
	return &EventHandler{responder: rs, eventSvc: eventSvc}
}

type eventCreateForm struct {
	Name       string    `form:"name" validate:"required,max=200"`
	StartTime  time.Time `form:"startTime" validate:"required"`
	EndTime    time.Time `form:"endTime" validate:"required"`
	ParentSlug string    `form:"parent"`
}

type eventGeneralForm struct {
	Name               string     `form:"name" validate:"required,max=200"`
	Subline            string     `form:"subline" validate:"max=300"`
	Description        string     `form:"description" validate:"max=20000"`
	StartTime          time.Time  `form:"startTime" validate:"required"`
	EndTime            time.Time  `form:"endTime" validate:"required"`
	ParticipationUntil *time.Time `form:"participationUntil"`
	ParticipantLimit   int        `form:"participantLimit" validate:"gte=0"`
	VenueName          string     `form:"venueName" validate:"max=200"`
	VenueStreet        string     `form:"venueStreet" validate:"max=200"`
	VenueStreetNumber  string     `form:"venueStreetNumber" validate:"max=20"`
	VenueZipCode       string     `form:"venueZipCode" validate:"max=10"`
	VenueCity          string     `form:"venueCity" validate:"max=100"`
}

type documentRefForm struct {
	DocumentID uuid.UUID `form:"documentId" validate:"required"`
}

type publishForm struct {
	Publish bool `form:"publish"`
}

type documentForm struct {
	Title       string `form:"title" validate:"max=200"`
	Description string `form:"description" validate:"max=2000"`
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.eventSvc.ListEvents(r.Context(), ProfileIDFromContext(r.Context()), pageFromQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.load(w, r, list)
}

func (h *EventHandler) View(w http.ResponseWriter, r *http.Request) {
	detail, err := h.eventSvc.GetEvent(r.Context(), ProfileIDFromContext(r.Context()), varsOf(r)["slug"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.load(w, r, detail)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var f eventCreateForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	event, err := h.eventSvc.CreateEvent(r.Context(), ProfileIDFromContext(r.Context()), service.EventCreateInput{
		Name:       f.Name,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
		ParentSlug: f.ParentSlug,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/event/"+event.Slug+"/settings/general", "Die Veranstaltung wurde angelegt.")
}

func (h *EventHandler) UpdateGeneral(w http.ResponseWriter, r *http.Request) {
	slug := varsOf(r)["slug"]
	var f eventGeneralForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	err := h.eventSvc.UpdateGeneral(r.Context(), ProfileIDFromContext(r.Context()), slug, service.EventGeneralInput{
		Name:               f.Name,
		Subline:            f.Subline,
		Description:        f.Description,
		StartTime:          f.StartTime,
		EndTime:            f.EndTime,
		ParticipationUntil: f.ParticipationUntil,
		ParticipantLimit:   f.ParticipantLimit,
		VenueName:          f.VenueName,
		VenueStreet:        f.VenueStreet,
		VenueStreetNumber:  f.VenueStreetNumber,
		VenueZipCode:       f.VenueZipCode,
		VenueCity:          f.VenueCity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/event/"+slug+"/settings/general", "Deine Änderungen wurden gespeichert.")
}

func (h *EventHandler) SetPublished(w http.ResponseWriter, r *http.Request) {
	slug := varsOf(r)["slug"]
	var f publishForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.eventSvc.SetPublished(r.Context(), ProfileIDFromContext(r.Context()), slug, f.Publish); err != nil {
		writeError(w, r, err)
		return
	}
	message := "Die Veranstaltung ist nicht mehr öffentlich."
	if f.Publish {
		message = "Die Veranstaltung wurde veröffentlicht."
	}
	h.done(w, r, "/event/"+slug, message)
}

func (h *EventHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	slug := varsOf(r)["slug"]
	if err := h.eventSvc.Cancel(r.Context(), ProfileIDFromContext(r.Context()), slug); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/event/"+slug, "Die Veranstaltung wurde abgesagt.")
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.eventSvc.DeleteEvent(r.Context(), ProfileIDFromContext(r.Context()), varsOf(r)["slug"]); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/events", "Die Veranstaltung wurde gelöscht.")
}

func (h *EventHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	slug := varsOf(r)["slug"]
	file, closer, err := formFile(r, "file")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closer.Close()

	if err := h.eventSvc.UploadImage(r.Context(), ProfileIDFromContext(r.Context()), slug, file); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/event/"+slug, "Das Bild wurde gespeichert.")
}

func (h *EventHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	slug := varsOf(r)["slug"]
	if err := h.eventSvc.RemoveImage(r.Context(), ProfileIDFromContext(r.Context()), slug); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/event/"+slug, "Das Bild wurde entfernt.")
}

// Relation handles the add and remove forms of the admins, team and
// speakers lists.
func (h *EventHandler) Relation(w http.ResponseWriter, r *http.Request) {
	vars := varsOf(r)
	slug := vars["slug"]
	relation := domain.Relation(vars["relation"])
	var f profileRefForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}

	actorID := ProfileIDFromContext(r.Context())
	var err error
	message := "Das Profil wurde hinzugefügt."
	if vars["action"] == "remove" {
		err = h.eventSvc.RemoveRelation(r.Context(), actorID, slug, relation, f.ProfileID)
		message = "Das Profil wurde entfernt."
	} else {
		err = h.eventSvc.AddRelation(r.Context(), actorID, slug, relation, f.ProfileID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/event/"+slug+"/settings/"+string(relation), message)
}

func (h *EventHandler) Organization(w http.ResponseWriter, r *http.Request) {
	vars := varsOf(r)
	slug := vars["slug"]
	var f organizationRefForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}

	actorID := ProfileIDFromContext(r.Context())
	var err error
	message := "Die Organisation wurde hinzugefügt."
	if vars["action"] == "remove" {
		err = h.eventSvc.RemoveOrganization(r.Context(), actorID, slug, f.OrganizationID)
		message = "Die Organisation wurde entfernt."
	} else {
		err = h.eventSvc.AddOrganization(r.Context(), actorID, slug, f.OrganizationID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/event/"+slug+"/settings/organizations", message)
}

func (h *EventHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	slug := varsOf(r)["slug"]
	var f documentForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	file, closer, err := formFile(r, "file")
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer closer.Close()

	_, err = h.eventSvc.UploadDocument(r.Context(), ProfileIDFromContext(r.Context()), slug, service.DocumentInput{
		FileInput:   file,
		Title:       f.Title,
		Description: f.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/event/"+slug+"/settings/documents", "Das Dokument wurde hochgeladen.")
}

func (h *EventHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	slug := varsOf(r)["slug"]
	var f documentRefForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.eventSvc.DeleteDocument(r.Context(), ProfileIDFromContext(r.Context()), slug, f.DocumentID); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/event/"+slug+"/settings/documents", "Das Dokument wurde gelöscht.")
}

// Document redirects to a short-lived download link
func (h *EventHandler) Document(w http.ResponseWriter, r *http.Request) {
	documentID, err := pathUUID(r, "documentId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	url, err := h.eventSvc.DocumentURL(r.Context(), ProfileIDFromContext(r.Context()), varsOf(r)["slug"], documentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *EventHandler) Participate(w http.ResponseWriter, r *http.Request) {
	slug := varsOf(r)["slug"]
	state, err := h.eventSvc.Participate(r.Context(), ProfileIDFromContext(r.Context()), slug)
	if err != nil {
		writeError(w, r, err)
		return
	}
	message := "Du nimmst an der Veranstaltung teil."
	if state == domain.ParticipationWaiting {
		message = "Du stehst auf der Warteliste."
	}
	h.done(w, r, "/event/"+slug, message)
}

func (h *EventHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	slug := varsOf(r)["slug"]
	if err := h.eventSvc.Withdraw(r.Context(), ProfileIDFromContext(r.Context()), slug); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/event/"+slug, "Du nimmst nicht mehr teil.")
}
