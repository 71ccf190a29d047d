package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const OrganizationTypeNetwork = "network"

var OrganizationTypes = []string{
	OrganizationTypeNetwork,
	"company",
	"association",
	"foundation",
	"initiative",
	"school",
	"public-institution",
}

var OrganizationPublicFieldOptions = []string{
	"email",
	"phone",
	"website",
	"address",
	"bio",
	"supportMessage",
	"areas",
}

type Organization struct {
	ID             uuid.UUID `json:"id"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Website        string    `json:"website,omitempty"`
	Street         string    `json:"street,omitempty"`
	StreetNumber   string    `json:"streetNumber,omitempty"`
	ZipCode        string    `json:"zipCode,omitempty"`
	City           string    `json:"city,omitempty"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	SupportMessage string    `json:"supportMessage,omitempty"`
	Logo           string    `json:"logo,omitempty"`
	Background     string    `json:"background,omitempty"`
	Types          []string  `json:"types"`
	PublicFields   []string  `json:"publicFields,omitempty"`
	Score          int       `json:"score"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (o *Organization) IsNetwork() bool {
	for _, t := range o.Types {
		if t == OrganizationTypeNetwork {
			return true
		}
	}
	return false
}

// IsPublicField reports whether field is visible to anonymous visitors
func (o *Organization) IsPublicField(field string) bool {
	for _, f := range o.PublicFields {
		if f == field {
			return true
		}
	}
	return false
}

// Address returns the postal address on one line, empty when incomplete
func (o *Organization) Address() string {
	if o.Street == "" && o.ZipCode == "" && o.City == "" {
		return ""
	}
	street := strings.TrimSpace(o.Street + " " + o.StreetNumber)
	city := strings.TrimSpace(o.ZipCode + " " + o.City)
	return strings.Trim(street+", "+city, ", ")
}

func (o *Organization) Summary() OrganizationSummary {
	return OrganizationSummary{ID: o.ID, Slug: o.Slug, Name: o.Name, Logo: o.Logo, Types: o.Types}
}

type OrganizationSummary struct {
	ID    uuid.UUID `json:"id"`
	Slug  string    `json:"slug"`
	Name  string    `json:"name"`
	Logo  string    `json:"logo,omitempty"`
	Types []string  `json:"types,omitempty"`
}

type OrganizationFilter struct {
	AreaID *uuid.UUID
	Type   string
	Page   Page
}
