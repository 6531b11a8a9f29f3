// internal/workers/ai-conversation/geocode-location/models.go
package geocodelocation

import "assistant-workers/internal/models"

type Input struct {
	Location string `json:"location"`
}

type Output struct {
	Location models.ProviderOutput `json:"location"`
	Found    bool                  `json:"found"`
}

// place is one Nominatim search hit. lat/lon arrive as strings.
type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
