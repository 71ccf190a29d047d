package domain

import "github.com/google/uuid"

type AreaType string

const (
	AreaTypeGlobal   AreaType = "global"
	AreaTypeCountry  AreaType = "country"
	AreaTypeState    AreaType = "state"
	AreaTypeDistrict AreaType = "district"
)

type Area struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Type     AreaType  `json:"type"`
	StateAGS string    `json:"stateAgsPrefix,omitempty"`
}

// State is a German federal state keyed by its two digit AGS prefix
type State struct {
	AGS  string `json:"ags"`
	Name string `json:"name"`
}

// District is a German Landkreis or kreisfreie Stadt keyed by its five digit AGS
type District struct {
	AGS      string `json:"ags"`
	Name     string `json:"name"`
	StateAGS string `json:"state"`
}
