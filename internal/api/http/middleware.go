package http

import (
	"net/http"
	"runtime/debug"
	"time"

	"community-platform-backend/internal/config"
	"community-platform-backend/internal/logger"
	"community-platform-backend/internal/service"
	"community-platform-backend/internal/session"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags the request context with an id for log correlation
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.ContextWithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs one line per request
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.InfoContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// RecoveryMiddleware turns panics into a 500 problem response
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "Panic while serving request",
					"path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				p := newProblem(http.StatusInternalServerError, "internal", "An unexpected error occurred")
				p.Instance = r.URL.Path
				p.WriteJSON(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware resolves the session cookie and enforces the security
// level configured for the matched route.
type AuthMiddleware struct {
	sessions *session.Manager
	auth     service.AuthService
}

func NewAuthMiddleware(sessions *session.Manager, auth service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, auth: auth}
}

func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		level := config.SecuritySession
		if route := mux.CurrentRoute(r); route != nil {
			level = config.GetSecurityLevel(route.GetName())
		}

		profileID, ok := m.sessions.ProfileID(r)
		if ok {
			r = r.WithContext(withProfileID(r.Context(), profileID))
		}

		switch level {
		case config.SecurityPublic:
		case config.SecuritySession:
			if !ok {
				writeError(w, r, service.ErrUnauthenticated)
				return
			}
		case config.SecurityPlatformAdmin:
			if !ok {
				writeError(w, r, service.ErrUnauthenticated)
				return
			}
			admin, err := m.auth.IsPlatformAdmin(r.Context(), profileID)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if !admin {
				writeError(w, r, service.ErrForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
