package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/service"
)

type MetaHandler struct {
	*responder
	db        *sql.DB
	regionSvc service.RegionService
}

func NewMetaHandler(rs *responder, db *sql.DB, regionSvc service.RegionService) *MetaHandler {
	return &MetaHandler{responder: rs, db: db, regionSvc: regionSvc}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h *MetaHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Database: "ok"}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Areas lists the selectable areas for profile and organization settings
func (h *MetaHandler) Areas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.regionSvc.ListAreas(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if areas == nil {
		areas = []domain.Area{}
	}
	h.load(w, r, areas)
}
