package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"community-platform-backend/internal/security"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager() *Manager {
	return NewManager(security.NewTokenManager("0123456789abcdef0123456789abcdef"), false, time.Hour)
}

// replay copies the cookies set on rec into a new request
func replay(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}

func TestManager_Session(t *testing.T) {
	m := newManager()
	id := uuid.New()

	rec := httptest.NewRecorder()
	require.NoError(t, m.Start(rec, id))

	got, ok := m.ProfileID(replay(rec))
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = m.ProfileID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)

	rec = httptest.NewRecorder()
	m.Destroy(rec)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestManager_FlashIsConsumedOnce(t *testing.T) {
	m := newManager()

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetToast(rec, Toast{Key: "org-created", Message: "Organisation angelegt"}))
	require.NoError(t, m.SetAlert(rec, Alert{Message: "Willkommen", Level: LevelInfo}))
	req := replay(rec)

	out := httptest.NewRecorder()
	flash := m.ConsumeFlash(out, req)
	require.NotNil(t, flash.Toast)
	require.NotNil(t, flash.Alert)
	assert.Equal(t, "Organisation angelegt", flash.Toast.Message)
	assert.Equal(t, LevelSuccess, flash.Toast.Level)
	assert.NotEmpty(t, flash.Toast.ID)
	assert.Equal(t, "Willkommen", flash.Alert.Message)

	for _, c := range out.Result().Cookies() {
		assert.True(t, c.MaxAge < 0, c.Name)
	}

	second := m.ConsumeFlash(httptest.NewRecorder(), replay(out))
	assert.Nil(t, second.Toast)
	assert.Nil(t, second.Alert)
}

func TestManager_TamperedFlashIgnored(t *testing.T) {
	m := newManager()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ToastCookie, Value: "not-a-token"})

	flash := m.ConsumeFlash(httptest.NewRecorder(), req)
	assert.Nil(t, flash.Toast)
}
