package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_AllTemplatesCompile(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	assert.Len(t, r.templates, len(allTemplates))
}

func TestRenderer_OrganizationInvite(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	msg, err := r.Render(TemplateOrganizationInvite, OrganizationInviteData{
		Name:             "Ada",
		InviterName:      "Grace Hopper",
		OrganizationName: "Forschung & Lehre <e.V.>",
		Role:             "admin",
		URL:              "https://community.example/my/invites",
	})
	require.NoError(t, err)

	assert.Equal(t, "Einladung zu Forschung & Lehre <e.V.>", msg.Subject)
	assert.Contains(t, msg.Text, "Administrator:in von Forschung & Lehre <e.V.>")
	assert.Contains(t, msg.Text, "https://community.example/my/invites")
	assert.Contains(t, msg.HTML, "Forschung &amp; Lehre &lt;e.V.&gt;")
	assert.Contains(t, msg.HTML, `href="https://community.example/my/invites"`)
	assert.NotContains(t, msg.Text, "<strong>")
}

func TestRenderer_AbuseReportListsReasons(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	msg, err := r.Render(TemplateAbuseReport, AbuseReportData{
		ReporterName: "Ada",
		EntityType:   "event",
		EntityName:   "Sommerfest",
		Reasons:      []string{"spam", "other"},
		Reason:       "Werbung",
	})
	require.NoError(t, err)
	assert.Contains(t, msg.Text, "- spam\n- other\n")
	assert.Contains(t, msg.Text, "Werbung")
	assert.Contains(t, msg.HTML, "<li>spam</li>")
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	_, err = r.Render("nope", nil)
	assert.Error(t, err)
}

var testMessage = Message{
	To:      []string{"ada@example.org"},
	ReplyTo: "support@example.org",
	Subject: "Hallo",
	Text:    "Text body",
	HTML:    "<p>HTML body</p>",
}

func TestSMTPMailer_Build(t *testing.T) {
	m := NewSMTPMailer("smtp.example.org", 587, "user", "pass", Sender{Address: "noreply@example.org", Name: "Community"})

	var buf bytes.Buffer
	_, err := m.build(testMessage).WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "From: \"Community\" <noreply@example.org>")
	assert.Contains(t, raw, "To: ada@example.org")
	assert.Contains(t, raw, "Reply-To: support@example.org")
	assert.Contains(t, raw, "Subject: Hallo")
	assert.Contains(t, raw, "multipart/alternative")
}

func TestSendGridMailer_Build(t *testing.T) {
	m := NewSendGridMailer("key", Sender{Address: "noreply@example.org", Name: "Community"})

	var body struct {
		From struct {
			Email string `json:"email"`
		} `json:"from"`
		Subject string `json:"subject"`
		Content []struct {
			Type string `json:"type"`
		} `json:"content"`
		Personalizations []struct {
			To []struct {
				Email string `json:"email"`
			} `json:"to"`
		} `json:"personalizations"`
	}
	require.NoError(t, json.Unmarshal(sgmail.GetRequestBody(m.build(testMessage)), &body))

	assert.Equal(t, "noreply@example.org", body.From.Email)
	assert.Equal(t, "Hallo", body.Subject)
	require.Len(t, body.Content, 2)
	assert.Equal(t, "text/plain", body.Content[0].Type)
	require.Len(t, body.Personalizations, 1)
	assert.Equal(t, "ada@example.org", body.Personalizations[0].To[0].Email)
}

func TestSESMailer_Build(t *testing.T) {
	m := &SESMailer{from: Sender{Address: "noreply@example.org", Name: "Community"}}
	input := m.build(testMessage)

	assert.Equal(t, `"Community" <noreply@example.org>`, *input.FromEmailAddress)
	assert.Equal(t, []string{"ada@example.org"}, input.Destination.ToAddresses)
	assert.Equal(t, []string{"support@example.org"}, input.ReplyToAddresses)
	assert.Equal(t, "<p>HTML body</p>", *input.Content.Simple.Body.Html.Data)
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, NewLogMailer(Sender{Address: "a@b.c"}).Send(context.Background(), testMessage))
}
