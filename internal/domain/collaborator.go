package domain

import "context"

// TextGenerator is the LLM collaborator used by responders for free-form
// prose. The pipeline treats generated text as opaque.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// WeatherReport is the weather collaborator's condensed observation.
type WeatherReport struct {
	Location    string  `json:"location"`
	TempC       float64 `json:"temp_c"`
	Humidity    int     `json:"humidity"`
	WindKph     float64 `json:"wind_kph"`
	Condition   string  `json:"condition"`
	RainChance  int     `json:"rain_chance"`
	ForecastDay string  `json:"forecast_day,omitempty"`
}

// WeatherProvider supplies current conditions for a location. The real API
// client lives outside the core; tests and offline runs use a static
// provider.
type WeatherProvider interface {
	Current(ctx context.Context, location string) (*WeatherReport, error)
}
