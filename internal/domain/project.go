package domain

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Headline    string    `json:"headline,omitempty"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Description string    `json:"description,omitempty"`
	Logo        string    `json:"logo,omitempty"`
	Background  string    `json:"background,omitempty"`
	Website     string    `json:"website,omitempty"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Project) Summary() ProjectSummary {
	return ProjectSummary{ID: p.ID, Slug: p.Slug, Name: p.Name, Excerpt: p.Excerpt, Logo: p.Logo, Published: p.Published}
}

type ProjectSummary struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Logo      string    `json:"logo,omitempty"`
	Published bool      `json:"published"`
}

type Award struct {
	ID      uuid.UUID `json:"id"`
	Slug    string    `json:"slug"`
	Title   string    `json:"title"`
	Subline string    `json:"subline,omitempty"`
	Date    time.Time `json:"date"`
	Logo    string    `json:"logo,omitempty"`
}
