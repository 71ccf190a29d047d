package http

import (
	"errors"
	"net/http"
	"strings"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/service"
	"community-platform-backend/internal/session"

	"github.com/google/uuid"
)

type ProfileHandler struct {
	*responder
	profileSvc service.ProfileService
	orgSvc     service.OrganizationService
}

func NewProfileHandler(rs *responder, profileSvc service.ProfileService, orgSvc service.OrganizationService) *ProfileHandler {
	return &ProfileHandler{responder: rs, profileSvc: profileSvc, orgSvc: orgSvc}
}

type profileGeneralForm struct {
	FirstName     string      `form:"firstName" validate:"required,max=100"`
	LastName      string      `form:"lastName" validate:"required,max=100"`
	AcademicTitle string      `form:"academicTitle" validate:"max=50"`
	Position      string      `form:"position" validate:"max=200"`
	Bio           string      `form:"bio" validate:"max=10000"`
	Phone         string      `form:"phone" validate:"max=50"`
	Website       string      `form:"website" validate:"omitempty,url"`
	PublicFields  []string    `form:"publicFields"`
	Areas         []uuid.UUID `form:"areas"`
}

type emailForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type passwordForm struct {
	CurrentPassword string `form:"currentPassword" validate:"required"`
	Password        string `form:"password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
}

type deleteAccountForm struct {
	Password string `form:"password" validate:"required"`
}

type imageFieldForm struct {
	Field string `form:"field" validate:"required,oneof=avatar logo background"`
}

func (h *ProfileHandler) View(w http.ResponseWriter, r *http.Request) {
	detail, err := h.profileSvc.GetProfile(r.Context(), ProfileIDFromContext(r.Context()), varsOf(r)["username"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.load(w, r, detail)
}

func (h *ProfileHandler) UpdateGeneral(w http.ResponseWriter, r *http.Request) {
	username := varsOf(r)["username"]
	var f profileGeneralForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	err := h.profileSvc.UpdateGeneral(r.Context(), ProfileIDFromContext(r.Context()), username, service.ProfileGeneralInput{
		FirstName:     f.FirstName,
		LastName:      f.LastName,
		AcademicTitle: f.AcademicTitle,
		Position:      f.Position,
		Bio:           f.Bio,
		Phone:         f.Phone,
		Website:       f.Website,
		PublicFields:  f.PublicFields,
		AreaIDs:       f.Areas,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/profile/"+username+"/settings/general", "Deine Änderungen wurden gespeichert.")
}

func (h *ProfileHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	username := varsOf(r)["username"]
	var f emailForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.profileSvc.ChangeEmail(r.Context(), ProfileIDFromContext(r.Context()), username, f.Email, f.Password); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/profile/"+username+"/settings/security", "Deine E-Mail-Adresse wurde geändert.")
}

func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	username := varsOf(r)["username"]
	var f passwordForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.profileSvc.ChangePassword(r.Context(), ProfileIDFromContext(r.Context()), username, f.CurrentPassword, f.Password); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/profile/"+username+"/settings/security", "Dein Passwort wurde geändert.")
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var f deleteAccountForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.profileSvc.DeleteAccount(r.Context(), ProfileIDFromContext(r.Context()), varsOf(r)["username"], f.Password); err != nil {
		var soleErr *service.SoleAdministratorError
		if errors.As(err, &soleErr) {
			h.alert(w, r, session.LevelError, soleAdministratorAlert(soleErr.Entities))
		}
		writeError(w, r, err)
		return
	}
	h.sessions.Destroy(w)
	h.done(w, r, "/", "Dein Profil wurde gelöscht.")
}

func (h *ProfileHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	username := varsOf(r)["username"]
	var f imageFieldForm
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

	if err := h.profileSvc.UploadImage(r.Context(), ProfileIDFromContext(r.Context()), username, domain.ImageField(f.Field), file); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/profile/"+username, "Das Bild wurde gespeichert.")
}

func (h *ProfileHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	username := varsOf(r)["username"]
	var f imageFieldForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.profileSvc.RemoveImage(r.Context(), ProfileIDFromContext(r.Context()), username, domain.ImageField(f.Field)); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/profile/"+username, "Das Bild wurde entfernt.")
}

// Invites and requests of the logged-in profile

func (h *ProfileHandler) MyInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := h.orgSvc.ListMyInvitations(r.Context(), ProfileIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.load(w, r, invites)
}

func (h *ProfileHandler) answerInvite(w http.ResponseWriter, r *http.Request, accept bool) {
	orgID, err := pathUUID(r, "organizationId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	role := domain.Role(varsOf(r)["role"])
	if !role.Valid() {
		writeError(w, r, service.NewValidationError("role", "unknown role"))
		return
	}

	profileID := ProfileIDFromContext(r.Context())
	message := "Die Einladung wurde abgelehnt."
	if accept {
		err = h.orgSvc.AcceptInvite(r.Context(), profileID, orgID, role)
		message = "Die Einladung wurde angenommen."
	} else {
		err = h.orgSvc.RejectInvite(r.Context(), profileID, orgID, role)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/my/invites", message)
}

func (h *ProfileHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	h.answerInvite(w, r, true)
}

func (h *ProfileHandler) RejectInvite(w http.ResponseWriter, r *http.Request) {
	h.answerInvite(w, r, false)
}

func (h *ProfileHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathUUID(r, "organizationId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.orgSvc.CancelRequest(r.Context(), ProfileIDFromContext(r.Context()), orgID); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/my/invites", "Die Anfrage wurde zurückgezogen.")
}

func soleAdministratorAlert(entities []domain.EntityRef) string {
	names := make([]string, len(entities))
	for i, ref := range entities {
		names[i] = ref.Name
	}
	return "Du bist alleinige Administrator:in von " + strings.Join(names, ", ") +
		". Übertrage diese Rolle, bevor Du Dein Profil löschst."
}
