package http

import (
	"net/http"
	"strings"

	"community-platform-backend/internal/service"
	"community-platform-backend/internal/session"
)

type AuthHandler struct {
	*responder
	authSvc service.AuthService
}

func NewAuthHandler(rs *responder, authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{responder: rs, authSvc: authSvc}
}

type registerForm struct {
	FirstName     string `form:"firstName" validate:"required,max=100"`
	LastName      string `form:"lastName" validate:"required,max=100"`
	Email         string `form:"email" validate:"required,email"`
	Password      string `form:"password" validate:"required,min=8"`
	TermsAccepted bool   `form:"termsAccepted"`
	RedirectTo    string `form:"redirectTo"`
}

type loginForm struct {
	Email      string `form:"email" validate:"required,email"`
	Password   string `form:"password" validate:"required"`
	RedirectTo string `form:"redirectTo"`
}

// safeRedirect only follows local paths
func safeRedirect(target, fallback string) string {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.Contains(target, "\\") {
		return target
	}
	return fallback
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var f registerForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.authSvc.Register(r.Context(), service.RegisterInput{
		FirstName:     f.FirstName,
		LastName:      f.LastName,
		Email:         f.Email,
		Password:      f.Password,
		TermsAccepted: f.TermsAccepted,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.sessions.Start(w, p.ID); err != nil {
		writeError(w, r, err)
		return
	}
	h.alert(w, r, session.LevelInfo, "Vervollständige Dein Profil, damit andere Dich finden können.")
	h.done(w, r, safeRedirect(f.RedirectTo, "/profile/"+p.Username), "Willkommen in der Community!")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var f loginForm
	if err := decodeForm(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.authSvc.Login(r.Context(), f.Email, f.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.sessions.Start(w, p.ID); err != nil {
		writeError(w, r, err)
		return
	}
	h.done(w, r, safeRedirect(f.RedirectTo, "/profile/"+p.Username), "")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w)
	h.done(w, r, "/", "Du wurdest abgemeldet.")
}
