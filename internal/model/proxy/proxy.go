package proxy

import (
	"encoding/json"

	"github.com/deppfellow/go-productivity/internal/validation"
)

type Quote struct {
	Content string `json:"content"`
	From    string `json:"from"`
	Author  string `json:"author"`
}

// Weather is the "now" block of the weather provider, passed through as is.
type Weather struct {
	Location string          `json:"location"`
	Now      json.RawMessage `json:"now"`
}

// CityInfo lists the provider's matches for a location query.
type CityInfo struct {
	Location string          `json:"location"`
	Cities   json.RawMessage `json:"cities"`
}

type Picture struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Copyright string `json:"copyright"`
}

// ------------------------------------------------------------

type LocationQuery struct {
	Location string `json:"location"`
}

var locationShape = validation.NewShape("LocationQuery",
	validation.Rule{Field: "location", Tag: "required,is_string", Message: "location is required"},
	validation.Rule{Field: "location", Tag: "max=64", Message: "location must not exceed 64 characters"},
)

func (LocationQuery) Shape() *validation.Shape { return locationShape }
