package session

import (
	"encoding/json"
	"net/http"
	"time"

	"community-platform-backend/internal/security"

	"github.com/google/uuid"
)

const (
	SessionCookie = "__session"
	ToastCookie   = "__toast"
	AlertCookie   = "__alert"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Toast is a short lived notification, Key lets clients deduplicate it
type Toast struct {
	ID      string `json:"id"`
	Key     string `json:"key"`
	Message string `json:"message"`
	Level   Level  `json:"level"`
}

// Alert is a banner shown once on the next page
type Alert struct {
	Message string `json:"message"`
	Level   Level  `json:"level"`
}

// Flash holds the messages consumed from a request
type Flash struct {
	Toast *Toast `json:"toast"`
	Alert *Alert `json:"alert"`
}

type Manager struct {
	tokens security.TokenManager
	secure bool
	ttl    time.Duration
}

func NewManager(tokens security.TokenManager, secure bool, ttl time.Duration) *Manager {
	return &Manager{tokens: tokens, secure: secure, ttl: ttl}
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Start issues the session cookie for profileID
func (m *Manager) Start(w http.ResponseWriter, profileID uuid.UUID) error {
	token, err := m.tokens.GenerateSessionToken(profileID, m.ttl)
	if err != nil {
		return err
	}
	http.SetCookie(w, m.cookie(SessionCookie, token, int(m.ttl.Seconds())))
	return nil
}

func (m *Manager) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie(SessionCookie, "", -1))
}

// ProfileID returns the logged in profile of r, if the session cookie is valid
func (m *Manager) ProfileID(r *http.Request) (uuid.UUID, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return uuid.Nil, false
	}
	claims, err := m.tokens.ValidateToken(c.Value, security.TokenTypeSession)
	if err != nil {
		return uuid.Nil, false
	}
	id, err := claims.ProfileID()
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (m *Manager) SetToast(w http.ResponseWriter, toast Toast) error {
	if toast.ID == "" {
		toast.ID = uuid.NewString()
	}
	if toast.Level == "" {
		toast.Level = LevelSuccess
	}
	return m.setFlash(w, ToastCookie, toast)
}

func (m *Manager) SetAlert(w http.ResponseWriter, alert Alert) error {
	if alert.Level == "" {
		alert.Level = LevelInfo
	}
	return m.setFlash(w, AlertCookie, alert)
}

func (m *Manager) setFlash(w http.ResponseWriter, name string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	token, err := m.tokens.GenerateFlashToken(string(payload))
	if err != nil {
		return err
	}
	http.SetCookie(w, m.cookie(name, token, 300))
	return nil
}

// ConsumeFlash reads toast and alert once and expires their cookies.
// Tampered or expired cookies are dropped silently.
func (m *Manager) ConsumeFlash(w http.ResponseWriter, r *http.Request) Flash {
	var flash Flash
	var toast Toast
	if m.readFlash(w, r, ToastCookie, &toast) {
		flash.Toast = &toast
	}
	var alert Alert
	if m.readFlash(w, r, AlertCookie, &alert) {
		flash.Alert = &alert
	}
	return flash
}

func (m *Manager) readFlash(w http.ResponseWriter, r *http.Request, name string, dst any) bool {
	c, err := r.Cookie(name)
	if err != nil {
		return false
	}
	http.SetCookie(w, m.cookie(name, "", -1))

	claims, err := m.tokens.ValidateToken(c.Value, security.TokenTypeFlash)
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(claims.Flash), dst) == nil
}
