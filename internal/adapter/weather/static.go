// Package weather provides the WeatherProvider implementation. Conditions
// come from a seasonal table keyed by region; no external weather API is
// called.
package weather

import (
	"context"
	"strings"
	"time"

	"krishi-ai/internal/domain"
)

type seasonal struct {
	tempC      float64
	humidity   int
	windKph    float64
	condition  string
	rainChance int
}

// Per-region conditions by month bucket. Values approximate long-term
// climate normals for the Indian subcontinent.
var climate = map[string]map[string]seasonal{
	"north": {
		"summer":  {tempC: 40, humidity: 35, windKph: 12, condition: "hot and dry", rainChance: 10},
		"monsoon": {tempC: 32, humidity: 80, windKph: 15, condition: "humid with intermittent rain", rainChance: 70},
		"winter":  {tempC: 14, humidity: 60, windKph: 8, condition: "cool and foggy", rainChance: 15},
	},
	"south": {
		"summer":  {tempC: 35, humidity: 55, windKph: 14, condition: "warm and partly cloudy", rainChance: 20},
		"monsoon": {tempC: 29, humidity: 85, windKph: 20, condition: "heavy rainfall", rainChance: 85},
		"winter":  {tempC: 24, humidity: 65, windKph: 10, condition: "mild and pleasant", rainChance: 25},
	},
	"east": {
		"summer":  {tempC: 36, humidity: 70, windKph: 10, condition: "hot and humid", rainChance: 30},
		"monsoon": {tempC: 30, humidity: 90, windKph: 18, condition: "frequent showers", rainChance: 80},
		"winter":  {tempC: 18, humidity: 55, windKph: 7, condition: "dry and mild", rainChance: 10},
	},
	"west": {
		"summer":  {tempC: 38, humidity: 40, windKph: 16, condition: "hot with dust haze", rainChance: 5},
		"monsoon": {tempC: 31, humidity: 75, windKph: 17, condition: "moderate rainfall", rainChance: 65},
		"winter":  {tempC: 20, humidity: 45, windKph: 9, condition: "clear and dry", rainChance: 5},
	},
}

var regionByState = map[string]string{
	"punjab": "north", "haryana": "north", "uttar pradesh": "north", "bihar": "north",
	"himachal pradesh": "north", "uttarakhand": "north",
	"karnataka": "south", "tamil nadu": "south", "andhra pradesh": "south",
	"telangana": "south", "kerala": "south",
	"west bengal": "east", "odisha": "east", "jharkhand": "east", "assam": "east",
	"maharashtra": "west", "gujarat": "west", "rajasthan": "west",
	"madhya pradesh": "west", "chhattisgarh": "west",
}

// StaticProvider serves climate-normal weather from lookup tables.
type StaticProvider struct {
	now func() time.Time
}

// NewStaticProvider creates a provider using the wall clock.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{now: time.Now}
}

// Current returns the seasonal normal for the location's region.
func (p *StaticProvider) Current(_ context.Context, location string) (*domain.WeatherReport, error) {
	region := "north"
	lower := strings.ToLower(location)
	for state, r := range regionByState {
		if strings.Contains(lower, state) {
			region = r
			break
		}
	}

	s := climate[region][seasonOf(p.now().Month())]
	return &domain.WeatherReport{
		Location:   location,
		TempC:      s.tempC,
		Humidity:   s.humidity,
		WindKph:    s.windKph,
		Condition:  s.condition,
		RainChance: s.rainChance,
	}, nil
}

func seasonOf(m time.Month) string {
	switch {
	case m >= time.June && m <= time.September:
		return "monsoon"
	case m >= time.November || m <= time.February:
		return "winter"
	default:
		return "summer"
	}
}
