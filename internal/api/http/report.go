package http

import (
	"net/http"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/service"
)

type ReportHandler struct {
	*responder
	reportSvc service.ReportService
}

func NewReportHandler(rs *responder, reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{responder: rs, reportSvc: reportSvc}
}

type reportForm struct {
	Reasons []string `form:"reasons" validate:"required,min=1"`
	Reason  string   `form:"reason" validate:"max=2000"`
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	vars := varsOf(r)
	var f reportForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	_, err := h.reportSvc.Report(r.Context(), ProfileIDFromContext(r.Context()), service.ReportInput{
		EntityType: domain.ReportEntityType(vars["entityType"]),
		Slug:       vars["slug"],
		Reasons:    f.Reasons,
		Reason:     f.Reason,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/"+vars["entityType"]+"/"+vars["slug"], "Vielen Dank. Die Meldung wurde an unser Team übermittelt.")
}

func (h *ReportHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reportSvc.ListOpen(r.Context(), ProfileIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if reports == nil {
		reports = []domain.AbuseReport{}
	}
	h.load(w, r, reports)
}

func (h *ReportHandler) Close(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathUUID(r, "reportId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.reportSvc.Close(r.Context(), ProfileIDFromContext(r.Context()), reportID); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, "/admin/reports", "Die Meldung wurde geschlossen.")
}
