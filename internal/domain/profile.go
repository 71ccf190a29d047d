package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Fields a profile owner may expose to anonymous visitors.
// Username and name are always visible.
var ProfilePublicFieldOptions = []string{
	"email",
	"phone",
	"website",
	"bio",
	"position",
	"academicTitle",
	"avatar",
	"background",
	"areas",
	"organizations",
	"events",
	"projects",
}

type Profile struct {
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email,omitempty"`
	PasswordHash    string    `json:"-"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	AcademicTitle   string    `json:"academicTitle,omitempty"`
	Position        string    `json:"position,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Website         string    `json:"website,omitempty"`
	Avatar          string    `json:"avatar,omitempty"`
	Background      string    `json:"background,omitempty"`
	PublicFields    []string  `json:"publicFields,omitempty"`
	Score           int       `json:"score"`
	IsPlatformAdmin bool      `json:"-"`
	TermsAccepted   bool      `json:"termsAccepted"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (p *Profile) FullName() string {
	return strings.TrimSpace(strings.Join([]string{p.AcademicTitle, p.FirstName, p.LastName}, " "))
}

// IsPublic reports whether field is visible to anonymous visitors
func (p *Profile) IsPublic(field string) bool {
	for _, f := range p.PublicFields {
		if f == field {
			return true
		}
	}
	return false
}

// Summary returns the list representation of the profile
func (p *Profile) Summary() ProfileSummary {
	return ProfileSummary{
		ID:        p.ID,
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Avatar:    p.Avatar,
		Email:     p.Email,
	}
}

// ProfileSummary is the compact profile used in relation lists.
// Email is only carried for notifications and never serialized.
type ProfileSummary struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Avatar    string    `json:"avatar,omitempty"`
	Email     string    `json:"-"`
}

func (p ProfileSummary) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
