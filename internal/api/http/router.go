package http

import (
	"database/sql"
	"net/http"

	"community-platform-backend/internal/service"
	"community-platform-backend/internal/session"
	"community-platform-backend/internal/storage"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Services bundles what the handlers call into
type Services struct {
	Auth         service.AuthService
	Profile      service.ProfileService
	Organization service.OrganizationService
	Network      service.NetworkService
	Event        service.EventService
	Project      service.ProjectService
	Report       service.ReportService
	Region       service.RegionService
}

type RouterOptions struct {
	AllowedOrigins []string
	MaxUploadBytes int64
	// Files is set when uploads are served by this process
	Files storage.FileReader
	DB    *sql.DB
}

func varsOf(r *http.Request) map[string]string {
	return mux.Vars(r)
}

// NewRouter builds the HTTP handler with every API route registered
func NewRouter(svc Services, sessions *session.Manager, opts RouterOptions) http.Handler {
	rs := &responder{sessions: sessions}
	auth := NewAuthHandler(rs, svc.Auth)
	meta := NewMetaHandler(rs, opts.DB, svc.Region)
	profiles := NewProfileHandler(rs, svc.Profile, svc.Organization)
	orgs := NewOrganizationHandler(rs, svc.Organization)
	networks := NewNetworkHandler(rs, svc.Network)
	events := NewEventHandler(rs, svc.Event)
	projects := NewProjectHandler(rs, svc.Project)
	reports := NewReportHandler(rs, svc.Report)

	router := mux.NewRouter()
	router.Use(NewAuthMiddleware(sessions, svc.Auth).Middleware)
	router.Use(limitBody(opts.MaxUploadBytes))

	router.HandleFunc("/healthz", meta.Health).Methods(http.MethodGet).Name("health")
	if opts.Files != nil {
		files := NewFileHandler(opts.Files)
		router.HandleFunc("/files/{key:.+}", files.Download).Methods(http.MethodGet).Name("files")
	}

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", auth.Register).Methods(http.MethodPost).Name("auth.register")
	api.HandleFunc("/auth/login", auth.Login).Methods(http.MethodPost).Name("auth.login")
	api.HandleFunc("/auth/logout", auth.Logout).Methods(http.MethodPost).Name("auth.logout")
	api.HandleFunc("/areas", meta.Areas).Methods(http.MethodGet).Name("areas")

	// Profiles
	api.HandleFunc("/profile/{username}", profiles.View).Methods(http.MethodGet).Name("profile.view")
	api.HandleFunc("/profile/{username}/settings/general", profiles.UpdateGeneral).Methods(http.MethodPost).Name("profile.settings.general")
	api.HandleFunc("/profile/{username}/settings/email", profiles.ChangeEmail).Methods(http.MethodPost).Name("profile.settings.email")
	api.HandleFunc("/profile/{username}/settings/password", profiles.ChangePassword).Methods(http.MethodPost).Name("profile.settings.password")
	api.HandleFunc("/profile/{username}/settings/delete", profiles.Delete).Methods(http.MethodPost).Name("profile.settings.delete")
	api.HandleFunc("/profile/{username}/settings/image", profiles.UploadImage).Methods(http.MethodPost).Name("profile.settings.image")
	api.HandleFunc("/profile/{username}/settings/image/delete", profiles.RemoveImage).Methods(http.MethodPost).Name("profile.settings.image.delete")

	api.HandleFunc("/my/invites", profiles.MyInvites).Methods(http.MethodGet).Name("my.invites")
	api.HandleFunc("/my/invites/{organizationId}/{role}/accept", profiles.AcceptInvite).Methods(http.MethodPost).Name("my.invites.accept")
	api.HandleFunc("/my/invites/{organizationId}/{role}/reject", profiles.RejectInvite).Methods(http.MethodPost).Name("my.invites.reject")
	api.HandleFunc("/my/requests/{organizationId}/cancel", profiles.CancelRequest).Methods(http.MethodPost).Name("my.requests.cancel")

	// Organizations
	api.HandleFunc("/organizations", orgs.List).Methods(http.MethodGet).Name("organization.list")
	api.HandleFunc("/organization/create", orgs.Create).Methods(http.MethodPost).Name("organization.create")
	api.HandleFunc("/organization/{slug}", orgs.View).Methods(http.MethodGet).Name("organization.view")
	org := api.PathPrefix("/organization/{slug}").Subrouter()
	org.HandleFunc("/request-membership", orgs.RequestMembership).Methods(http.MethodPost).Name("organization.request-membership")
	org.HandleFunc("/settings/general", orgs.UpdateGeneral).Methods(http.MethodPost).Name("organization.settings.general")
	org.HandleFunc("/settings/image", orgs.UploadImage).Methods(http.MethodPost).Name("organization.settings.image")
	org.HandleFunc("/settings/image/delete", orgs.RemoveImage).Methods(http.MethodPost).Name("organization.settings.image.delete")
	org.HandleFunc("/settings/delete", orgs.Delete).Methods(http.MethodPost).Name("organization.settings.delete")
	org.HandleFunc("/settings/{page:admins|team}", orgs.Team).Methods(http.MethodGet).Name("organization.settings.team")
	for _, role := range []string{"admins", "team"} {
		for _, action := range []string{"invite", "cancel-invite", "remove"} {
			org.HandleFunc("/settings/"+role+"/"+action, orgs.teamAction(roleFromPath(role), action)).
				Methods(http.MethodPost).Name("organization.settings." + role + "." + action)
		}
	}
	org.HandleFunc("/settings/requests/{profileId}/accept", orgs.AcceptRequest).Methods(http.MethodPost).Name("organization.settings.requests.accept")
	org.HandleFunc("/settings/requests/{profileId}/reject", orgs.RejectRequest).Methods(http.MethodPost).Name("organization.settings.requests.reject")

	// Networks
	org.HandleFunc("/settings/network", networks.Overview).Methods(http.MethodGet).Name("organization.settings.network")
	org.HandleFunc("/settings/network/invite", networks.withOrganization(service.NetworkService.InviteOrganization, "Die Einladung wurde verschickt.")).
		Methods(http.MethodPost).Name("network.invite")
	org.HandleFunc("/settings/network/cancel-invite", networks.withOrganization(service.NetworkService.CancelInvite, "Die Einladung wurde zurückgezogen.")).
		Methods(http.MethodPost).Name("network.cancel-invite")
	org.HandleFunc("/settings/network/remove", networks.withOrganization(service.NetworkService.RemoveMember, "Die Organisation wurde aus dem Netzwerk entfernt.")).
		Methods(http.MethodPost).Name("network.remove")
	org.HandleFunc("/settings/network/request", networks.withNetwork(service.NetworkService.RequestToJoin, "Deine Anfrage wurde verschickt.")).
		Methods(http.MethodPost).Name("network.request")
	org.HandleFunc("/settings/network/cancel-request", networks.withNetwork(service.NetworkService.CancelRequest, "Deine Anfrage wurde zurückgezogen.")).
		Methods(http.MethodPost).Name("network.cancel-request")
	org.HandleFunc("/settings/network/leave", networks.withNetwork(service.NetworkService.Leave, "Die Organisation hat das Netzwerk verlassen.")).
		Methods(http.MethodPost).Name("network.leave")
	org.HandleFunc("/settings/network/invites/{networkId}/accept", networks.withPathID("networkId", service.NetworkService.AcceptInvite, "Die Organisation ist dem Netzwerk beigetreten.")).
		Methods(http.MethodPost).Name("network.invites.accept")
	org.HandleFunc("/settings/network/invites/{networkId}/reject", networks.withPathID("networkId", service.NetworkService.RejectInvite, "Die Einladung wurde abgelehnt.")).
		Methods(http.MethodPost).Name("network.invites.reject")
	org.HandleFunc("/settings/network/requests/{organizationId}/accept", networks.withPathID("organizationId", service.NetworkService.AcceptRequest, "Die Anfrage wurde angenommen.")).
		Methods(http.MethodPost).Name("network.requests.accept")
	org.HandleFunc("/settings/network/requests/{organizationId}/reject", networks.withPathID("organizationId", service.NetworkService.RejectRequest, "Die Anfrage wurde abgelehnt.")).
		Methods(http.MethodPost).Name("network.requests.reject")

	// Events
	api.HandleFunc("/events", events.List).Methods(http.MethodGet).Name("event.list")
	api.HandleFunc("/event/create", events.Create).Methods(http.MethodPost).Name("event.create")
	api.HandleFunc("/event/{slug}", events.View).Methods(http.MethodGet).Name("event.view")
	event := api.PathPrefix("/event/{slug}").Subrouter()
	event.HandleFunc("/documents/{documentId}", events.Document).Methods(http.MethodGet).Name("event.document")
	event.HandleFunc("/participate", events.Participate).Methods(http.MethodPost).Name("event.participate")
	event.HandleFunc("/withdraw", events.Withdraw).Methods(http.MethodPost).Name("event.withdraw")
	event.HandleFunc("/settings/general", events.UpdateGeneral).Methods(http.MethodPost).Name("event.settings.general")
	event.HandleFunc("/settings/publish", events.SetPublished).Methods(http.MethodPost).Name("event.settings.publish")
	event.HandleFunc("/settings/cancel", events.Cancel).Methods(http.MethodPost).Name("event.settings.cancel")
	event.HandleFunc("/settings/delete", events.Delete).Methods(http.MethodPost).Name("event.settings.delete")
	event.HandleFunc("/settings/image", events.UploadImage).Methods(http.MethodPost).Name("event.settings.image")
	event.HandleFunc("/settings/image/delete", events.RemoveImage).Methods(http.MethodPost).Name("event.settings.image.delete")
	event.HandleFunc("/settings/{relation:admins|team|speakers}/{action:add|remove}", events.Relation).Methods(http.MethodPost).Name("event.settings.relation")
	event.HandleFunc("/settings/organizations/{action:add|remove}", events.Organization).Methods(http.MethodPost).Name("event.settings.organizations")
	event.HandleFunc("/settings/documents/upload", events.UploadDocument).Methods(http.MethodPost).Name("event.settings.documents.upload")
	event.HandleFunc("/settings/documents/delete", events.DeleteDocument).Methods(http.MethodPost).Name("event.settings.documents.delete")

	// Projects
	api.HandleFunc("/projects", projects.List).Methods(http.MethodGet).Name("project.list")
	api.HandleFunc("/project/create", projects.Create).Methods(http.MethodPost).Name("project.create")
	api.HandleFunc("/project/{slug}", projects.View).Methods(http.MethodGet).Name("project.view")
	project := api.PathPrefix("/project/{slug}").Subrouter()
	project.HandleFunc("/settings/general", projects.UpdateGeneral).Methods(http.MethodPost).Name("project.settings.general")
	project.HandleFunc("/settings/image", projects.UploadImage).Methods(http.MethodPost).Name("project.settings.image")
	project.HandleFunc("/settings/image/delete", projects.RemoveImage).Methods(http.MethodPost).Name("project.settings.image.delete")
	project.HandleFunc("/settings/delete", projects.Delete).Methods(http.MethodPost).Name("project.settings.delete")
	project.HandleFunc("/settings/{relation:admins|team}/{action:add|remove}", projects.Relation).Methods(http.MethodPost).Name("project.settings.relation")
	project.HandleFunc("/settings/organizations/{action:add|remove}", projects.Organization).Methods(http.MethodPost).Name("project.settings.organizations")

	// Reports
	api.HandleFunc("/report/{entityType}/{slug}", reports.Create).Methods(http.MethodPost).Name("report.create")
	api.HandleFunc("/admin/reports", reports.ListOpen).Methods(http.MethodGet).Name("admin.reports.list")
	api.HandleFunc("/admin/reports/{reportId}/close", reports.Close).Methods(http.MethodPost).Name("admin.reports.close")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		newProblem(http.StatusNotFound, "not-found", "no route for "+r.URL.Path).WriteJSON(w)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		newProblem(http.StatusMethodNotAllowed, "method-not-allowed", r.Method+" is not allowed here").WriteJSON(w)
	})

	var handler http.Handler = router
	handler = RecoveryMiddleware(handler)
	handler = LoggingMiddleware(handler)
	handler = RequestIDMiddleware(handler)
	return newCORS(opts.AllowedOrigins).Handler(handler)
}

func newCORS(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})
}

// limitBody caps request bodies at maxBytes
func limitBody(maxBytes int64) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
