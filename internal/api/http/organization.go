package http

import (
	"net/http"
	"strconv"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/service"

	"github.com/google/uuid"
)

type OrganizationHandler struct {
	*responder
	orgSvc service.OrganizationService
}

func NewOrganizationHandler(rs *responder, orgSvc service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{responder: rs, orgSvc: orgSvc}
}

type createForm struct {
	Name string `form:"name" validate:"required,max=200"`
}

type organizationGeneralForm struct {
	Name           string      `form:"name" validate:"required,max=200"`
	Email          string      `form:"email" validate:"omitempty,email"`
	Phone          string      `form:"phone" validate:"max=50"`
	Website        string      `form:"website" validate:"omitempty,url"`
	Street         string      `form:"street" validate:"max=200"`
	StreetNumber   string      `form:"streetNumber" validate:"max=20"`
	ZipCode        string      `form:"zipCode" validate:"max=10"`
	City           string      `form:"city" validate:"max=100"`
	Bio            string      `form:"bio" validate:"max=10000"`
	SupportMessage string      `form:"supportMessage" validate:"max=2000"`
	Types          []string    `form:"types"`
	PublicFields   []string    `form:"publicFields"`
	Areas          []uuid.UUID `form:"areas"`
}

type profileRefForm struct {
	ProfileID uuid.UUID `form:"profileId" validate:"required"`
}

// pageFromQuery reads ?page= and ?size=
func pageFromQuery(r *http.Request) domain.Page {
	q := r.URL.Query()
	number, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	return domain.Page{Number: number, Size: size}.Normalize()
}

func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.OrganizationFilter{Type: r.URL.Query().Get("type"), Page: pageFromQuery(r)}
	if area := r.URL.Query().Get("area"); area != "" {
		id, err := uuid.Parse(area)
		if err != nil {
			writeError(w, r, service.NewValidationError("area", "must be a valid id"))
			return
		}
		filter.AreaID = &id
	}
	list, err := h.orgSvc.ListOrganizations(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.load(w, r, list)
}

func (h *OrganizationHandler) View(w http.ResponseWriter, r *http.Request) {
	detail, err := h.orgSvc.GetOrganization(r.Context(), ProfileIDFromContext(r.Context()), varsOf(r)["slug"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.load(w, r, detail)
}

func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var f createForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	org, err := h.orgSvc.CreateOrganization(r.Context(), ProfileIDFromContext(r.Context()), f.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/organization/"+org.Slug+"/settings/general", "Die Organisation wurde angelegt.")
}

func (h *OrganizationHandler) UpdateGeneral(w http.ResponseWriter, r *http.Request) {
	slug := varsOf(r)["slug"]
	var f organizationGeneralForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	err := h.orgSvc.UpdateGeneral(r.Context(), ProfileIDFromContext(r.Context()), slug, service.OrganizationGeneralInput{
		Name:           f.Name,
		Email:          f.Email,
		Phone:          f.Phone,
		Website:        f.Website,
		Street:         f.Street,
		StreetNumber:   f.StreetNumber,
		ZipCode:        f.ZipCode,
		City:           f.City,
		Bio:            f.Bio,
		SupportMessage: f.SupportMessage,
		Types:          f.Types,
		PublicFields:   f.PublicFields,
		AreaIDs:        f.Areas,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/organization/"+slug+"/settings/general", "Deine Änderungen wurden gespeichert.")
}

func (h *OrganizationHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	slug := varsOf(r)["slug"]
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

	if err := h.orgSvc.UploadImage(r.Context(), ProfileIDFromContext(r.Context()), slug, domain.ImageField(f.Field), file); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/organization/"+slug, "Das Bild wurde gespeichert.")
}

func (h *OrganizationHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	slug := varsOf(r)["slug"]
	var f imageFieldForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.orgSvc.RemoveImage(r.Context(), ProfileIDFromContext(r.Context()), slug, domain.ImageField(f.Field)); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/organization/"+slug, "Das Bild wurde entfernt.")
}

func (h *OrganizationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.orgSvc.DeleteOrganization(r.Context(), ProfileIDFromContext(r.Context()), varsOf(r)["slug"]); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/organizations", "Die Organisation wurde gelöscht.")
}

func (h *OrganizationHandler) Team(w http.ResponseWriter, r *http.Request) {
	settings, err := h.orgSvc.GetTeamSettings(r.Context(), ProfileIDFromContext(r.Context()), varsOf(r)["slug"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.load(w, r, settings)
}

// teamAction handles the invite, cancel and remove forms of the admins and
// team settings
func (h *OrganizationHandler) teamAction(role domain.Role, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := varsOf(r)["slug"]
		var f profileRefForm
		if err := decodeForm(r, &f); err != nil {
			writeError(w, r, err)
			return
		}

		actorID := ProfileIDFromContext(r.Context())
		var err error
		var message string
		switch action {
		case "invite":
			err = h.orgSvc.InviteProfile(r.Context(), actorID, slug, f.ProfileID, role)
			message = "Die Einladung wurde verschickt."
		case "cancel-invite":
			err = h.orgSvc.CancelInvite(r.Context(), actorID, slug, f.ProfileID, role)
			message = "Die Einladung wurde zurückgezogen."
		case "remove":
			if role == domain.RoleAdmin {
				err = h.orgSvc.RemoveAdmin(r.Context(), actorID, slug, f.ProfileID)
			} else {
				err = h.orgSvc.RemoveMember(r.Context(), actorID, slug, f.ProfileID)
			}
			message = "Das Profil wurde entfernt."
		}
		if err != nil {
			writeError(w, r, err)
			return
		}

		page := "team"
		if role == domain.RoleAdmin {
			page = "admins"
		}
		h.done(w, r, "/organization/"+slug+"/settings/"+page, message)
	}
}

func (h *OrganizationHandler) RequestMembership(w http.ResponseWriter, r *http.Request) {
	slug := varsOf(r)["slug"]
	if err := h.orgSvc.RequestMembership(r.Context(), ProfileIDFromContext(r.Context()), slug); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/organization/"+slug, "Deine Anfrage wurde verschickt.")
}

func (h *OrganizationHandler) answerRequest(w http.ResponseWriter, r *http.Request, accept bool) {
	slug := varsOf(r)["slug"]
	profileID, err := pathUUID(r, "profileId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	actorID := ProfileIDFromContext(r.Context())
	message := "Die Anfrage wurde abgelehnt."
	if accept {
		err = h.orgSvc.AcceptRequest(r.Context(), actorID, slug, profileID)
		message = "Die Anfrage wurde angenommen."
	} else {
		err = h.orgSvc.RejectRequest(r.Context(), actorID, slug, profileID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/organization/"+slug+"/settings/team", message)
}

func (h *OrganizationHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	h.answerRequest(w, r, true)
}

func (h *OrganizationHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.answerRequest(w, r, false)
}

// roleFromPath maps the settings page name onto the membership role
func roleFromPath(page string) domain.Role {
	if page == "admins" {
		return domain.RoleAdmin
	}
	return domain.RoleMember
}
