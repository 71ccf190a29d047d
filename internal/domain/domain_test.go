package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPage_Normalize(t *testing.T) {
	assert.Equal(t, Page{Number: 1, Size: DefaultPageSize}, Page{}.Normalize())
	assert.Equal(t, Page{Number: 3, Size: MaxPageSize}, Page{Number: 3, Size: 1000}.Normalize())
	assert.Equal(t, 48, Page{Number: 3, Size: 24}.Offset())
}

func TestOrganization_IsNetworkAndAddress(t *testing.T) {
	o := &Organization{Types: []string{"company"}}
	assert.False(t, o.IsNetwork())
	assert.Equal(t, "", o.Address())

	o.Types = append(o.Types, OrganizationTypeNetwork)
	o.Street, o.StreetNumber, o.ZipCode, o.City = "Hauptstraße", "1", "10115", "Berlin"
	assert.True(t, o.IsNetwork())
	assert.Equal(t, "Hauptstraße 1, 10115 Berlin", o.Address())

	o.Street, o.StreetNumber = "", ""
	assert.Equal(t, "10115 Berlin", o.Address())
}

func TestEvent_ParticipationOpen(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	e := &Event{Published: true, EndTime: now.Add(time.Hour)}
	assert.True(t, e.ParticipationOpen(now))

	until := now.Add(-time.Minute)
	e.ParticipationUntil = &until
	assert.False(t, e.ParticipationOpen(now))

	e.ParticipationUntil = nil
	e.Canceled = true
	assert.False(t, e.ParticipationOpen(now))

	e.Canceled, e.Published = false, false
	assert.False(t, e.ParticipationOpen(now))
}

func TestProfile_FullNameAndPublic(t *testing.T) {
	p := &Profile{AcademicTitle: "Dr.", FirstName: "Ada", LastName: "Lovelace", PublicFields: []string{"email"}}
	assert.Equal(t, "Dr. Ada Lovelace", p.FullName())
	assert.True(t, p.IsPublic("email"))
	assert.False(t, p.IsPublic("phone"))
}
