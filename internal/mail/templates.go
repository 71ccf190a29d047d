package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

type Template string

const (
	TemplateWelcome              Template = "welcome"
	TemplateOrganizationInvite   Template = "organization_invite"
	TemplateMembershipRequest    Template = "membership_request"
	TemplateNetworkInvite        Template = "network_invite"
	TemplateNetworkRequest       Template = "network_request"
	TemplateWaitingListPromotion Template = "waiting_list_promotion"
	TemplateAbuseReport          Template = "abuse_report"
	TemplateEmailChanged         Template = "email_changed"
	TemplateReportDigest         Template = "report_digest"
)

var allTemplates = []Template{
	TemplateWelcome,
	TemplateOrganizationInvite,
	TemplateMembershipRequest,
	TemplateNetworkInvite,
	TemplateNetworkRequest,
	TemplateWaitingListPromotion,
	TemplateAbuseReport,
	TemplateEmailChanged,
	TemplateReportDigest,
}

// Template data. Name is always the greeting name of the recipient.
type (
	WelcomeData struct {
		Name string
		URL  string
	}
	OrganizationInviteData struct {
		Name             string
		InviterName      string
		OrganizationName string
		Role             string
		URL              string
	}
	MembershipRequestData struct {
		Name             string
		RequesterName    string
		OrganizationName string
		URL              string
	}
	NetworkData struct {
		Name             string
		NetworkName      string
		OrganizationName string
		URL              string
	}
	WaitingListPromotionData struct {
		Name       string
		EventName  string
		EventStart string
		URL        string
	}
	AbuseReportData struct {
		ReporterName  string
		ReporterEmail string
		EntityType    string
		EntityName    string
		URL           string
		Reasons       []string
		Reason        string
	}
	EmailChangedData struct {
		Name     string
		NewEmail string
	}
	ReportDigestData struct {
		OpenCount int
		URL       string
	}
)

type compiled struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// Renderer holds all templates, parsed once at startup
type Renderer struct {
	templates map[Template]compiled
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[Template]compiled, len(allTemplates))}
	for _, name := range allTemplates {
		html, err := htmltemplate.ParseFS(templateFS, "templates/layout.html", fmt.Sprintf("templates/%s.html", name))
		if err != nil {
			return nil, fmt.Errorf("parse %s html: %w", name, err)
		}
		text, err := texttemplate.ParseFS(templateFS, fmt.Sprintf("templates/%s.txt", name))
		if err != nil {
			return nil, fmt.Errorf("parse %s text: %w", name, err)
		}
		r.templates[name] = compiled{html: html, text: text}
	}
	return r, nil
}

// Render returns a Message with subject and both bodies filled. Recipients
// are left to the caller.
func (r *Renderer) Render(name Template, data any) (Message, error) {
	t, ok := r.templates[name]
	if !ok {
		return Message{}, fmt.Errorf("unknown mail template %q", name)
	}

	var subject, text, html bytes.Buffer
	if err := t.text.ExecuteTemplate(&subject, "subject", data); err != nil {
		return Message{}, fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := t.text.ExecuteTemplate(&text, string(name)+".txt", data); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", name, err)
	}
	if err := t.html.ExecuteTemplate(&html, "layout", data); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", name, err)
	}

	return Message{
		Subject: strings.TrimSpace(subject.String()),
		Text:    strings.TrimSpace(text.String()) + "\n",
		HTML:    html.String(),
	}, nil
}
