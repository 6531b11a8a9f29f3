// internal/workers/ai-conversation/fetch-weather/models.go
package fetchweather

import "assistant-workers/internal/models"

type Input struct {
	City string `json:"city"`
}

type Output struct {
	Weather  models.ProviderOutput `json:"weather"`
	NotFound bool                  `json:"notFound"`
}

// currentWeather is the subset of the OpenWeatherMap response we render.
type currentWeather struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Name string `json:"name"`
}
