package geo

import (
	"context"
	"strings"
)

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Address is a postal address in Germany
type Address struct {
	Street       string
	StreetNumber string
	ZipCode      string
	City         string
}

func (a Address) Empty() bool {
	return strings.TrimSpace(a.Street+a.ZipCode+a.City) == ""
}

// Key normalizes the address for cache lookups
func (a Address) Key() string {
	parts := []string{a.Street, a.StreetNumber, a.ZipCode, a.City}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.Join(strings.Fields(p), " "))
	}
	return strings.Join(parts, "|")
}

// Geocoder resolves an address. A nil result without error means the
// address is unknown.
type Geocoder interface {
	Geocode(ctx context.Context, addr Address) (*Coordinates, error)
}

// Disabled is used when geocoding is switched off
type Disabled struct{}

func (Disabled) Geocode(ctx context.Context, addr Address) (*Coordinates, error) {
	return nil, nil
}
