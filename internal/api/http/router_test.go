package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"community-platform-backend/internal/domain"
	"community-platform-backend/internal/security"
	"community-platform-backend/internal/service"
	"community-platform-backend/internal/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler  http.Handler
	sessions *session.Manager
	auth     *mockAuthService
	profiles *mockProfileService
	orgs     *mockOrganizationService
	networks *mockNetworkService
	events   *mockEventService
	reports  *mockReportService
	regions  *mockRegionService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		sessions: session.NewManager(security.NewTokenManager("0123456789abcdef0123456789abcdef"), false, time.Hour),
		auth:     &mockAuthService{},
		profiles: &mockProfileService{},
		orgs:     &mockOrganizationService{},
		networks: &mockNetworkService{},
		events:   &mockEventService{},
		reports:  &mockReportService{},
		regions:  &mockRegionService{},
	}
	ts.handler = NewRouter(Services{
		Auth:         ts.auth,
		Profile:      ts.profiles,
		Organization: ts.orgs,
		Network:      ts.networks,
		Event:        ts.events,
		Report:       ts.reports,
		Region:       ts.regions,
	}, ts.sessions, RouterOptions{
		AllowedOrigins: []string{"https://community.example"},
		MaxUploadBytes: 1 << 20,
		Files:          memFiles{"avatars/a.png": "\x89PNG\r\n\x1a\n0000"},
	})
	return ts
}

// login returns the session cookie of profileID
func (ts *testServer) login(t *testing.T, profileID uuid.UUID) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, ts.sessions.Start(rec, profileID))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func postForm(path string, values url.Values, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// nextFlash consumes the flash cookies rec set, as the next loader would
func (ts *testServer) nextFlash(rec *httptest.ResponseRecorder) session.Flash {
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	return ts.sessions.ConsumeFlash(httptest.NewRecorder(), next)
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p ProblemDetails
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	return p
}

func TestRouter_PublicLoaderForAnonymousVisitor(t *testing.T) {
	ts := newTestServer(t)
	org := &domain.Organization{ID: uuid.New(), Slug: "gruener-weg", Name: "Grüner Weg"}
	ts.orgs.On("GetOrganization", mock.Anything, uuid.Nil, "gruener-weg").
		Return(&service.OrganizationDetail{Organization: org}, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/organization/gruener-weg", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data  service.OrganizationDetail `json:"data"`
		Flash session.Flash              `json:"flash"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Grüner Weg", body.Data.Organization.Name)
	assert.Nil(t, body.Flash.Toast)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	ts.orgs.AssertExpectations(t)
}

func TestRouter_SessionRequired(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(postForm("/api/organization/create", url.Values{"name": {"Grüner Weg"}}, nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	p := decodeProblem(t, rec)
	assert.Equal(t, "/api/organization/create", p.Instance)
	ts.orgs.AssertNotCalled(t, "CreateOrganization", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_FormActionRedirectsWithToast(t *testing.T) {
	ts := newTestServer(t)
	actor := uuid.New()
	ts.orgs.On("CreateOrganization", mock.Anything, actor, "Grüner Weg").
		Return(&domain.Organization{Slug: "gruener-weg"}, nil)

	rec := ts.do(postForm("/api/organization/create", url.Values{"name": {"Grüner Weg"}}, ts.login(t, actor)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/organization/gruener-weg/settings/general", rec.Header().Get("Location"))

	// The toast is delivered by the next loader
	flash := ts.nextFlash(rec)
	require.NotNil(t, flash.Toast)
	assert.Equal(t, "Die Organisation wurde angelegt.", flash.Toast.Message)
}

func TestRouter_JSONAction(t *testing.T) {
	ts := newTestServer(t)
	actor := uuid.New()
	ts.orgs.On("CreateOrganization", mock.Anything, actor, "Grüner Weg").
		Return(&domain.Organization{Slug: "gruener-weg"}, nil)

	req := postForm("/api/organization/create", url.Values{"name": {"Grüner Weg"}}, ts.login(t, actor))
	req.Header.Set("Accept", "application/json")
	rec := ts.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body actionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.OK)
	assert.Equal(t, "/organization/gruener-weg/settings/general", body.Redirect)
}

func TestRouter_ValidationProblem(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(postForm("/api/organization/create", url.Values{"name": {""}}, ts.login(t, uuid.New())))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	p := decodeProblem(t, rec)
	assert.Equal(t, []string{"this field is required"}, p.Errors["name"])
}

func TestRouter_ServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"conflict", service.ErrSlugTaken, http.StatusConflict},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"not found", service.ErrOrganizationNotFound, http.StatusNotFound},
		{"unexpected", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			actor := uuid.New()
			ts.orgs.On("CreateOrganization", mock.Anything, actor, "Grüner Weg").Return(nil, tt.err)

			rec := ts.do(postForm("/api/organization/create", url.Values{"name": {"Grüner Weg"}}, ts.login(t, actor)))

			assert.Equal(t, tt.status, rec.Code)
			p := decodeProblem(t, rec)
			assert.Equal(t, tt.status, p.Status)
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, p.Detail, assert.AnError.Error())
			}
		})
	}
}

func TestRouter_SoleAdministratorProblemListsEntities(t *testing.T) {
	ts := newTestServer(t)
	actor := uuid.New()
	ref := domain.EntityRef{Type: "organization", ID: uuid.New(), Slug: "gruener-weg", Name: "Grüner Weg"}
	ts.profiles.On("DeleteAccount", mock.Anything, actor, "ada-lovelace", "secret-pass").
		Return(&service.SoleAdministratorError{Entities: []domain.EntityRef{ref}})

	rec := ts.do(postForm("/api/profile/ada-lovelace/settings/delete", url.Values{"password": {"secret-pass"}}, ts.login(t, actor)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	p := decodeProblem(t, rec)
	require.Len(t, p.Entities, 1)
	assert.Equal(t, "gruener-weg", p.Entities[0].Slug)

	flash := ts.nextFlash(rec)
	require.NotNil(t, flash.Alert)
	assert.Equal(t, session.LevelError, flash.Alert.Level)
	assert.Contains(t, flash.Alert.Message, "Grüner Weg")
	assert.Nil(t, flash.Toast)
}

func TestRouter_RegisterSetsToastAndAlert(t *testing.T) {
	ts := newTestServer(t)
	profile := &domain.Profile{ID: uuid.New(), Username: "ada-lovelace"}
	ts.auth.On("Register", mock.Anything, service.RegisterInput{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.org", Password: "analytical", TermsAccepted: true,
	}).Return(profile, nil)

	rec := ts.do(postForm("/api/auth/register", url.Values{
		"firstName":     {"Ada"},
		"lastName":      {"Lovelace"},
		"email":         {"ada@example.org"},
		"password":      {"analytical"},
		"termsAccepted": {"true"},
	}, nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile/ada-lovelace", rec.Header().Get("Location"))

	flash := ts.nextFlash(rec)
	require.NotNil(t, flash.Toast)
	assert.Equal(t, "Willkommen in der Community!", flash.Toast.Message)
	require.NotNil(t, flash.Alert)
	assert.Equal(t, session.LevelInfo, flash.Alert.Level)
	ts.auth.AssertExpectations(t)
}

func TestRouter_TeamInviteUsesRoleOfPage(t *testing.T) {
	ts := newTestServer(t)
	actor, invitee := uuid.New(), uuid.New()
	ts.orgs.On("InviteProfile", mock.Anything, actor, "gruener-weg", invitee, domain.RoleAdmin).Return(nil)

	rec := ts.do(postForm("/api/organization/gruener-weg/settings/admins/invite",
		url.Values{"profileId": {invitee.String()}}, ts.login(t, actor)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/organization/gruener-weg/settings/admins", rec.Header().Get("Location"))
	ts.orgs.AssertExpectations(t)
}

func TestRouter_NetworkInviteAccept(t *testing.T) {
	ts := newTestServer(t)
	actor, networkID := uuid.New(), uuid.New()
	ts.networks.On("AcceptInvite", mock.Anything, actor, "gruener-weg", networkID).Return(nil)

	rec := ts.do(postForm("/api/organization/gruener-weg/settings/network/invites/"+networkID.String()+"/accept",
		url.Values{}, ts.login(t, actor)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/organization/gruener-weg/settings/network", rec.Header().Get("Location"))
	ts.networks.AssertExpectations(t)
}

func TestRouter_InvalidPathID(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(postForm("/api/organization/gruener-weg/settings/network/invites/not-an-id/accept",
		url.Values{}, ts.login(t, uuid.New())))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	p := decodeProblem(t, rec)
	assert.Contains(t, p.Errors, "networkId")
}

func TestRouter_EventSpeakerAdd(t *testing.T) {
	ts := newTestServer(t)
	actor, speaker := uuid.New(), uuid.New()
	ts.events.On("AddRelation", mock.Anything, actor, "sommerfest", domain.RelationSpeakers, speaker).Return(nil)

	rec := ts.do(postForm("/api/event/sommerfest/settings/speakers/add",
		url.Values{"profileId": {speaker.String()}}, ts.login(t, actor)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/event/sommerfest/settings/speakers", rec.Header().Get("Location"))
	ts.events.AssertExpectations(t)
}

func TestRouter_EventDocumentRedirect(t *testing.T) {
	ts := newTestServer(t)
	docID := uuid.New()
	ts.events.On("DocumentURL", mock.Anything, uuid.Nil, "sommerfest", docID).
		Return("https://files.example/documents/programm.pdf?sig=1", nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/event/sommerfest/documents/"+docID.String(), nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://files.example/documents/programm.pdf?sig=1", rec.Header().Get("Location"))
}

func TestRouter_ReportCreate(t *testing.T) {
	ts := newTestServer(t)
	reporter := uuid.New()
	ts.reports.On("Report", mock.Anything, reporter, service.ReportInput{
		EntityType: domain.ReportEntityOrganization,
		Slug:       "gruener-weg",
		Reasons:    []string{"spam", "other"},
		Reason:     "Werbung",
	}).Return(&domain.AbuseReport{ID: uuid.New()}, nil)

	rec := ts.do(postForm("/api/report/organization/gruener-weg",
		url.Values{"reasons": {"spam", "other"}, "reason": {"Werbung"}}, ts.login(t, reporter)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/organization/gruener-weg", rec.Header().Get("Location"))
	ts.reports.AssertExpectations(t)
}

func TestRouter_AdminRoutes(t *testing.T) {
	ts := newTestServer(t)
	admin, member := uuid.New(), uuid.New()
	ts.auth.On("IsPlatformAdmin", mock.Anything, admin).Return(true, nil)
	ts.auth.On("IsPlatformAdmin", mock.Anything, member).Return(false, nil)
	ts.reports.On("ListOpen", mock.Anything, admin).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reports", nil)
	req.AddCookie(ts.login(t, member))
	assert.Equal(t, http.StatusForbidden, ts.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/reports", nil)
	req.AddCookie(ts.login(t, admin))
	rec := ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestRouter_Areas(t *testing.T) {
	ts := newTestServer(t)
	ts.regions.On("ListAreas", mock.Anything).Return([]domain.Area{
		{ID: uuid.New(), Name: "Bundesweit", Type: domain.AreaTypeCountry},
	}, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/areas", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bundesweit")
}

func TestRouter_FileDownload(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/files/avatars/a.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/files/avatars/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	decodeProblem(t, rec)
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/events", safeRedirect("/events", "/"))
	assert.Equal(t, "/", safeRedirect("//evil.example", "/"))
	assert.Equal(t, "/", safeRedirect("https://evil.example", "/"))
	assert.Equal(t, "/", safeRedirect("/\\evil.example", "/"))
}
