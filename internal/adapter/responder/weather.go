package responder

import (
	"context"
	"fmt"
	"log/slog"

	"krishi-ai/internal/domain"
)

// Weather answers weather queries through a WeatherProvider and turns the
// report into farming guidance.
type Weather struct {
	provider domain.WeatherProvider
	gen      domain.TextGenerator
	logger   *slog.Logger
}

// NewWeather creates the weather responder. gen may be nil.
func NewWeather(provider domain.WeatherProvider, gen domain.TextGenerator, logger *slog.Logger) *Weather {
	return &Weather{provider: provider, gen: gen, logger: logger}
}

func (a *Weather) Name() string { return "Weather Advisory" }

func (a *Weather) Description() string {
	return "Provides weather-based farming advisories"
}

func (a *Weather) Capabilities() []string {
	return []string{"weather_forecast", "farming_advisory", "alert_interpretation"}
}

func (a *Weather) Process(ctx context.Context, query string, uc *domain.UserContext) (*domain.AgentResponse, error) {
	location := extractLocation(query, uc)

	report, err := a.provider.Current(ctx, location)
	if err != nil {
		a.logger.Warn("weather lookup failed", "location", location, "error", err)
		return &domain.AgentResponse{
			AgentName: a.Name(),
			Response: fmt.Sprintf("Weather data for %s is currently unavailable. "+
				"Please check your local meteorological department forecast before "+
				"planning field operations.", location),
			Confidence: 0.3,
			Metadata:   map[string]any{domain.MetaLocation: location, "error": err.Error()},
		}, nil
	}

	fallback := fmt.Sprintf("Current weather in %s: %.1f°C, %d%% humidity, %s, "+
		"rain chance %d%%.\n\nFarming advisory: %s", location, report.TempC,
		report.Humidity, report.Condition, report.RainChance, advisoryFor(report))

	prompt := fmt.Sprintf(`As an agricultural meteorologist, interpret these conditions for a farmer:

Location: %s
Temperature: %.1f°C
Humidity: %d%%
Conditions: %s
Rain Chance: %d%%
Query: %s

Advise on field operations, irrigation scheduling, and crop protection for the next few days.`,
		location, report.TempC, report.Humidity, report.Condition, report.RainChance, query)

	text := generateOr(ctx, a.gen, a.logger, prompt, fallback)

	return &domain.AgentResponse{
		AgentName:  a.Name(),
		Response:   text,
		Confidence: 0.9,
		Metadata: map[string]any{
			domain.MetaLocation: location,
			"current_temp":      report.TempC,
			"humidity":          report.Humidity,
			"conditions":        report.Condition,
			"rain_chance":       report.RainChance,
		},
		Citations: []string{"India Meteorological Department"},
	}, nil
}

func advisoryFor(r *domain.WeatherReport) string {
	switch {
	case r.RainChance >= 60:
		return "Rain is likely. Postpone spraying and fertilizer application, and " +
			"ensure field drainage is clear."
	case r.Humidity >= 80:
		return "High humidity raises fungal disease risk. Inspect crops closely and " +
			"avoid overhead irrigation."
	case r.TempC >= 38:
		return "Heat stress likely. Irrigate in early morning or evening and consider " +
			"mulching to conserve soil moisture."
	case r.TempC <= 10:
		return "Cold conditions. Protect sensitive crops and delay transplanting until " +
			"temperatures recover."
	default:
		return "Conditions are favorable for routine field operations."
	}
}
