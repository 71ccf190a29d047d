package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/session"
)

// loaderResponse is the body of every GET loader
type loaderResponse struct {
	Data  any           `json:"data"`
	Flash session.Flash `json:"flash"`
}

type actionResponse struct {
	OK       bool   `json:"ok"`
	Redirect string `json:"redirect,omitempty"`
	Message  string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// responder writes loader and action responses around the session cookies
type responder struct {
	sessions *session.Manager
}

// load answers a loader with data and the flash messages pending for the visitor
func (rs *responder) load(w http.ResponseWriter, r *http.Request, data any) {
	flash := rs.sessions.ConsumeFlash(w, r)
	writeJSON(w, http.StatusOK, loaderResponse{Data: data, Flash: flash})
}

// done finishes an action: JSON clients get {ok:true}, forms are redirected
// with a toast.
func (rs *responder) done(w http.ResponseWriter, r *http.Request, redirect, message string) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, actionResponse{OK: true, Redirect: redirect, Message: message})
		return
	}
	if message != "" {
		if err := rs.sessions.SetToast(w, session.Toast{Key: r.URL.Path, Message: message}); err != nil {
			logger.WarnContext(r.Context(), "Failed to set toast", "error", err)
		}
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// alert queues a banner shown on the next page the visitor loads
func (rs *responder) alert(w http.ResponseWriter, r *http.Request, level session.Level, message string) {
	if err := rs.sessions.SetAlert(w, session.Alert{Message: message, Level: level}); err != nil {
		logger.WarnContext(r.Context(), "Failed to set alert", "error", err)
	}
}
