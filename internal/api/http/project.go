package http

import (
	"net/http"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/service"
)

type ProjectHandler struct {
	*responder
	projectSvc service.ProjectService
}

func NewProjectHandler(rs *responder, projectSvc service.ProjectService) *ProjectHandler {
	return &ProjectHandler{responder: rs, projectSvc: projectSvc}
}

type projectGeneralForm struct {
	Name        string `form:"name" validate:"required,max=200"`
	Headline    string `form:"headline" validate:"max=300"`
	Excerpt     string `form:"excerpt" validate:"max=1000"`
	Description string `form:"description" validate:"max=20000"`
	Website     string `form:"website" validate:"omitempty,url"`
	Published   bool   `form:"published"`
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.projectSvc.ListProjects(r.Context(), pageFromQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.load(w, r, list)
}

func (h *ProjectHandler) View(w http.ResponseWriter, r *http.Request) {
	detail, err := h.projectSvc.GetProject(r.Context(), ProfileIDFromContext(r.Context()), varsOf(r)["slug"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.load(w, r, detail)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var f createForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	project, err := h.projectSvc.CreateProject(r.Context(), ProfileIDFromContext(r.Context()), f.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/project/"+project.Slug+"/settings/general", "Das Projekt wurde angelegt.")
}

func (h *ProjectHandler) UpdateGeneral(w http.ResponseWriter, r *http.Request) {
	slug := varsOf(r)["slug"]
	var f projectGeneralForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	err := h.projectSvc.UpdateGeneral(r.Context(), ProfileIDFromContext(r.Context()), slug, service.ProjectGeneralInput{
		Name:        f.Name,
		Headline:    f.Headline,
		Excerpt:     f.Excerpt,
		Description: f.Description,
		Website:     f.Website,
		Published:   f.Published,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/project/"+slug+"/settings/general", "Deine Änderungen wurden gespeichert.")
}

func (h *ProjectHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
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

	if err := h.projectSvc.UploadImage(r.Context(), ProfileIDFromContext(r.Context()), slug, domain.ImageField(f.Field), file); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/project/"+slug, "Das Bild wurde gespeichert.")
}

func (h *ProjectHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	slug := varsOf(r)["slug"]
	var f imageFieldForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.projectSvc.RemoveImage(r.Context(), ProfileIDFromContext(r.Context()), slug, domain.ImageField(f.Field)); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/project/"+slug, "Das Bild wurde entfernt.")
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.projectSvc.DeleteProject(r.Context(), ProfileIDFromContext(r.Context()), varsOf(r)["slug"]); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/projects", "Das Projekt wurde gelöscht.")
}

func (h *ProjectHandler) Relation(w http.ResponseWriter, r *http.Request) {
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
		err = h.projectSvc.RemoveRelation(r.Context(), actorID, slug, relation, f.ProfileID)
		message = "Das Profil wurde entfernt."
	} else {
		err = h.projectSvc.AddRelation(r.Context(), actorID, slug, relation, f.ProfileID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/project/"+slug+"/settings/"+string(relation), message)
}

func (h *ProjectHandler) Organization(w http.ResponseWriter, r *http.Request) {
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
		err = h.projectSvc.RemoveOrganization(r.Context(), actorID, slug, f.OrganizationID)
		message = "Die Organisation wurde entfernt."
	} else {
		err = h.projectSvc.AddOrganization(r.Context(), actorID, slug, f.OrganizationID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/project/"+slug+"/settings/organizations", message)
}
