package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/service"
)

const problemTypeBase = "https://community.example/errors/"

// ProblemDetails is an RFC 9457 problem document
type ProblemDetails struct {
	Type     string              `json:"type"`
	Title    string              `json:"title"`
	Status   int                 `json:"status"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
	// Entities lists what blocks an account deletion
	Entities []domain.EntityRef `json:"entities,omitempty"`
}

func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func newProblem(status int, kind, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   problemTypeBase + kind,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

var notFoundErrors = []error{
	service.ErrProfileNotFound,
	service.ErrOrganizationNotFound,
	service.ErrEventNotFound,
	service.ErrProjectNotFound,
	service.ErrDocumentNotFound,
	service.ErrReportNotFound,
	service.ErrInviteNotFound,
	service.ErrRequestNotFound,
}

var conflictErrors = []error{
	service.ErrEmailTaken,
	service.ErrUsernameTaken,
	service.ErrSlugTaken,
	service.ErrLastAdmin,
	service.ErrNotANetwork,
	service.ErrNetworkHasMembers,
	service.ErrAlreadyMember,
	service.ErrNotAMember,
	service.ErrInviteNotPending,
	service.ErrRequestNotPending,
	service.ErrSelfReference,
	service.ErrParticipationClosed,
	service.ErrAlreadyReported,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// problemFor maps a service error onto a problem document
func problemFor(err error) *ProblemDetails {
	var verr *service.ValidationError
	var soleErr *service.SoleAdministratorError

	switch {
	case errors.As(err, &verr):
		p := newProblem(http.StatusBadRequest, "validation", "One or more fields failed validation")
		p.Errors = verr.Fields
		return p
	case errors.As(err, &soleErr):
		p := newProblem(http.StatusConflict, "sole-administrator", service.ErrSoleAdministrator.Error())
		p.Entities = soleErr.Entities
		return p
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrInvalidCredentials):
		return newProblem(http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, service.ErrForbidden):
		return newProblem(http.StatusForbidden, "forbidden", err.Error())
	case isAny(err, notFoundErrors):
		return newProblem(http.StatusNotFound, "not-found", err.Error())
	case isAny(err, conflictErrors):
		return newProblem(http.StatusConflict, "conflict", err.Error())
	}
	return newProblem(http.StatusInternalServerError, "internal", "An unexpected error occurred")
}

// writeError answers err as problem+json and logs server side failures
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	p := problemFor(err)
	p.Instance = r.URL.Path
	if p.Status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	}
	p.WriteJSON(w)
}
