package domain

import "github.com/google/uuid"

const (
	DefaultPageSize = 24
	MaxPageSize     = 96
)

// Page is a 1-based page request
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page into valid bounds
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Number - 1) * n.Size
}

// EntityRef points at any sluggable entity
type EntityRef struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
	Slug string    `json:"slug"`
	Name string    `json:"name"`
}

// ImageField names an image slot on an entity
type ImageField string

const (
	ImageAvatar     ImageField = "avatar"
	ImageLogo       ImageField = "logo"
	ImageBackground ImageField = "background"
)

// ProfileScoreFlags are the completeness facts a profile score is built from
type ProfileScoreFlags struct {
	ProfileID         uuid.UUID
	HasAvatar         bool
	HasBackground     bool
	HasBio            bool
	HasPosition       bool
	HasAreas          bool
	HasOrganization   bool
	HasEvent          bool
	HasProject        bool
	HasPublicContacts bool
}

// OrganizationScoreFlags are the completeness facts an organization score is built from
type OrganizationScoreFlags struct {
	OrganizationID uuid.UUID
	HasLogo        bool
	HasBackground  bool
	HasBio         bool
	HasAddress     bool
	HasAreas       bool
	HasTeam        bool
	HasEvent       bool
	HasProject     bool
	HasNetwork     bool
}
