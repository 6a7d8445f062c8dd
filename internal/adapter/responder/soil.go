package responder

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"krishi-ai/internal/domain"
)

type soilProfile struct {
	characteristics []string
	suitableCrops   []string
	phRange         string
	drainage        string
	fertility       string
}

var soilProfiles = map[string]soilProfile{
	"clay": {
		characteristics: []string{"High water retention", "Poor drainage", "Rich in nutrients"},
		suitableCrops:   []string{"Rice", "Wheat", "Cotton"},
		phRange:         "6.0-7.5",
		drainage:        "poor",
		fertility:       "high",
	},
	"sandy": {
		characteristics: []string{"Good drainage", "Low water retention", "Low nutrients"},
		suitableCrops:   []string{"Groundnut", "Watermelon", "Carrot"},
		phRange:         "6.0-7.0",
		drainage:        "excellent",
		fertility:       "low",
	},
	"loam": {
		characteristics: []string{"Balanced drainage", "Good water retention", "Fertile"},
		suitableCrops:   []string{"Most crops", "Vegetables", "Fruits"},
		phRange:         "6.0-7.0",
		drainage:        "good",
		fertility:       "high",
	},
	"black": {
		characteristics: []string{"High clay content", "Rich in nutrients", "Good for cotton"},
		suitableCrops:   []string{"Cotton", "Sugarcane", "Soybean"},
		phRange:         "7.0-8.5",
		drainage:        "moderate",
		fertility:       "very high",
	},
}

type npkDose struct {
	n, p, k int
	timing  string
}

var npkByCrop = map[string]npkDose{
	"rice":      {n: 120, p: 60, k: 40, timing: "Split application"},
	"wheat":     {n: 120, p: 60, k: 40, timing: "Basal + top dressing"},
	"cotton":    {n: 120, p: 60, k: 60, timing: "Multiple splits"},
	"sugarcane": {n: 280, p: 92, k: 140, timing: "Multiple applications"},
	"maize":     {n: 120, p: 60, k: 40, timing: "Split application"},
}

// SoilAnalysis reports soil characteristics and fertilizer doses.
type SoilAnalysis struct {
	gen    domain.TextGenerator
	logger *slog.Logger
}

// NewSoilAnalysis creates the soil analysis responder. gen may be nil.
func NewSoilAnalysis(gen domain.TextGenerator, logger *slog.Logger) *SoilAnalysis {
	return &SoilAnalysis{gen: gen, logger: logger}
}

func (a *SoilAnalysis) Name() string { return "Soil Analysis" }

func (a *SoilAnalysis) Description() string {
	return "Analyzes soil health and provides fertilizer recommendations"
}

func (a *SoilAnalysis) Capabilities() []string {
	return []string{"soil_profiling", "npk_recommendation", "ph_correction"}
}

func (a *SoilAnalysis) Process(ctx context.Context, query string, uc *domain.UserContext) (*domain.AgentResponse, error) {
	soilType := extractSoilType(query, uc)
	cropType := extractCrop(query, uc)
	ph := extractPH(query)

	profile, known := soilProfiles[soilType]
	fertility := "unknown"
	if known {
		fertility = profile.fertility
	}
	dose, hasDose := npkByCrop[cropType]

	var fallback strings.Builder
	fmt.Fprintf(&fallback, "Soil analysis for %s soil", soilType)
	if known {
		fmt.Fprintf(&fallback, " (fertility: %s, drainage: %s, ideal pH %s):\n- %s\n- Suitable crops: %s",
			profile.fertility, profile.drainage, profile.phRange,
			strings.Join(profile.characteristics, "\n- "),
			strings.Join(profile.suitableCrops, ", "))
	}
	if hasDose {
		fmt.Fprintf(&fallback, "\n\nRecommended NPK for %s: %d-%d-%d kg/ha (%s).",
			cropType, dose.n, dose.p, dose.k, dose.timing)
	}

	prompt := fmt.Sprintf(`As a soil scientist, provide detailed soil management advice for:

Soil Type: %s
Crop: %s
pH Level: %s

Provide specific recommendations for:
1. Soil health improvement strategies
2. Organic matter enhancement
3. Nutrient management plan
4. pH correction methods if needed
5. Sustainable farming practices

Include specific quantities, timing, and application methods.`, soilType, cropType, ph)

	text := generateOr(ctx, a.gen, a.logger, prompt, fallback.String())

	metadata := map[string]any{
		"soil_type":        soilType,
		"crop_type":        cropType,
		"ph_level":         ph,
		"fertility_status": fertility,
	}
	if hasDose {
		metadata["npk"] = fmt.Sprintf("%d-%d-%d", dose.n, dose.p, dose.k)
	}

	return &domain.AgentResponse{
		AgentName:  a.Name(),
		Response:   text,
		Confidence: 0.88,
		Metadata:   metadata,
		Citations:  []string{"Soil Health Card Scheme", "ICAR Guidelines", "State Agricultural Universities"},
	}, nil
}

// extractPH pulls an explicit pH value out of the query, or "unknown".
func extractPH(query string) string {
	m := phRe.FindStringSubmatch(strings.ToLower(query))
	if len(m) < 2 {
		return "unknown"
	}
	if _, err := strconv.ParseFloat(m[1], 64); err != nil {
		return "unknown"
	}
	return m[1]
}
