package http

import (
	"context"
	"net/http"

	"community-platform-backend/internal/service"

	"github.com/google/uuid"
)

type NetworkHandler struct {
	*responder
	networkSvc service.NetworkService
}

func NewNetworkHandler(rs *responder, networkSvc service.NetworkService) *NetworkHandler {
	return &NetworkHandler{responder: rs, networkSvc: networkSvc}
}

type organizationRefForm struct {
	OrganizationID uuid.UUID `form:"organizationId" validate:"required"`
}

type networkRefForm struct {
	NetworkID uuid.UUID `form:"networkId" validate:"required"`
}

func (h *NetworkHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.networkSvc.GetOverview(r.Context(), ProfileIDFromContext(r.Context()), varsOf(r)["slug"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.load(w, r, overview)
}

// networkCall is a method expression on service.NetworkService
type networkCall func(svc service.NetworkService, ctx context.Context, actorID uuid.UUID, slug string, otherID uuid.UUID) error

func (h *NetworkHandler) finish(w http.ResponseWriter, r *http.Request, slug string, err error, message string) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/organization/"+slug+"/settings/network", message)
}

// withOrganization runs a network side action on the posted organizationId
func (h *NetworkHandler) withOrganization(call networkCall, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := varsOf(r)["slug"]
		var f organizationRefForm
		if err := decodeForm(r, &f); err != nil {
			writeError(w, r, err)
			return
		}
		h.finish(w, r, slug, call(h.networkSvc, r.Context(), ProfileIDFromContext(r.Context()), slug, f.OrganizationID), message)
	}
}

// withNetwork runs an organization side action on the posted networkId
func (h *NetworkHandler) withNetwork(call networkCall, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := varsOf(r)["slug"]
		var f networkRefForm
		if err := decodeForm(r, &f); err != nil {
			writeError(w, r, err)
			return
		}
		h.finish(w, r, slug, call(h.networkSvc, r.Context(), ProfileIDFromContext(r.Context()), slug, f.NetworkID), message)
	}
}

// withPathID runs an action on the id taken from the route variable name
func (h *NetworkHandler) withPathID(name string, call networkCall, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := varsOf(r)["slug"]
		id, err := pathUUID(r, name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		h.finish(w, r, slug, call(h.networkSvc, r.Context(), ProfileIDFromContext(r.Context()), slug, id), message)
	}
}
