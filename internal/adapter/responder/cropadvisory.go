package responder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"krishi-ai/internal/domain"
)

type cropInfo struct {
	seasons       []string
	soilTypes     []string
	waterNeed     string
	growingPeriod string
	varieties     map[string][]string // region -> varieties
}

var cropDatabase = map[string]cropInfo{
	"rice": {
		seasons:       []string{"kharif", "rabi"},
		soilTypes:     []string{"clay", "loam"},
		waterNeed:     "high",
		growingPeriod: "120-150 days",
		varieties: map[string][]string{
			"north": {"Basmati", "PR-114", "Pusa-44"},
			"south": {"Ponni", "ADT-43", "Samba Mahsuri"},
			"east":  {"Swarna", "Lalat", "Pooja"},
			"west":  {"Indrayani", "Ambemohar", "Kolam"},
		},
	},
	"wheat": {
		seasons:       []string{"rabi"},
		soilTypes:     []string{"loam", "clay-loam"},
		waterNeed:     "medium",
		growingPeriod: "120-140 days",
		varieties: map[string][]string{
			"north":   {"PBW-343", "HD-2967", "WH-147"},
			"central": {"GW-366", "MP-3288", "HI-1544"},
			"south":   {"DWR-162", "NIAW-34", "UAS-304"},
		},
	},
	"maize": {
		seasons:       []string{"kharif", "rabi", "summer"},
		soilTypes:     []string{"loam", "well-drained loam"},
		waterNeed:     "medium",
		growingPeriod: "90-120 days",
		varieties: map[string][]string{
			"north": {"Ganga-5", "HQPM-1", "Vivek-9"},
			"south": {"NAC-6002", "COH-M5", "K-235"},
			"west":  {"Ganga-11", "Deccan-103", "Shaktiman-1"},
		},
	},
}

var regionStates = map[string][]string{
	"north": {"punjab", "haryana", "uttar pradesh", "bihar", "himachal pradesh", "uttarakhand"},
	"south": {"karnataka", "tamil nadu", "andhra pradesh", "telangana", "kerala"},
	"east":  {"west bengal", "odisha", "jharkhand", "assam"},
	"west":  {"maharashtra", "gujarat", "rajasthan", "madhya pradesh", "chhattisgarh"},
}

type cropRecommendation struct {
	name        string
	suitability float64
	varieties   []string
	period      string
	waterNeed   string
}

// CropAdvisory recommends crops from location, season, and soil. It is also
// the universal fallback responder for unmapped intents.
type CropAdvisory struct {
	gen    domain.TextGenerator
	logger *slog.Logger
	now    func() time.Time
}

// NewCropAdvisory creates the crop advisory responder. gen may be nil.
func NewCropAdvisory(gen domain.TextGenerator, logger *slog.Logger) *CropAdvisory {
	return &CropAdvisory{gen: gen, logger: logger, now: time.Now}
}

func (a *CropAdvisory) Name() string { return "Crop Advisory" }

func (a *CropAdvisory) Description() string {
	return "Provides crop recommendations based on location, season, and soil conditions"
}

func (a *CropAdvisory) Capabilities() []string {
	return []string{"crop_selection", "variety_recommendation", "sowing_guidance"}
}

func (a *CropAdvisory) Process(ctx context.Context, query string, uc *domain.UserContext) (*domain.AgentResponse, error) {
	location := extractLocation(query, uc)
	season := extractSeason(query, a.now())
	soilType := extractSoilType(query, uc)

	recs := recommendCrops(location, season, soilType)

	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.name
	}

	prompt := fmt.Sprintf(`As an agricultural expert, provide detailed crop recommendations for:
Location: %s
Season: %s
Soil Type: %s
Query: %s

Base recommendations: %s

Provide specific advice on:
1. Best crop varieties for this region and season
2. Sowing dates and techniques
3. Expected yield and market potential
4. Risk factors and mitigation strategies
5. Input requirements (seeds, fertilizers, water)

Keep the response practical and actionable for farmers.`,
		location, season, soilType, query, strings.Join(names, ", "))

	text := generateOr(ctx, a.gen, a.logger, prompt, formatRecommendations(recs, season, soilType))

	return &domain.AgentResponse{
		AgentName:  a.Name(),
		Response:   text,
		Confidence: 0.85,
		Metadata: map[string]any{
			domain.MetaLocation:  location,
			"season":             season,
			"soil_type":          soilType,
			"recommended_crops":  names,
			domain.MetaCropTypes: names,
			"analysis_factors":   []string{"location", "season", "soil", "market_demand"},
		},
		Citations: []string{"ICAR Crop Production Guidelines", "State Agricultural Department"},
	}, nil
}

func recommendCrops(location, season, soilType string) []cropRecommendation {
	region := regionOf(location)
	var recs []cropRecommendation

	for name, info := range cropDatabase {
		if !contains(info.seasons, season) {
			continue
		}
		if !soilCompatible(info.soilTypes, soilType) {
			continue
		}
		varieties, ok := info.varieties[region]
		if !ok {
			varieties = info.varieties["north"]
		}
		recs = append(recs, cropRecommendation{
			name:        name,
			suitability: suitabilityScore(info, season, soilType),
			varieties:   varieties,
			period:      info.growingPeriod,
			waterNeed:   info.waterNeed,
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].suitability != recs[j].suitability {
			return recs[i].suitability > recs[j].suitability
		}
		return recs[i].name < recs[j].name
	})
	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}

func regionOf(location string) string {
	lower := strings.ToLower(location)
	for region, states := range regionStates {
		for _, state := range states {
			if strings.Contains(lower, state) {
				return region
			}
		}
	}
	return "north"
}

func soilCompatible(soils []string, soilType string) bool {
	for _, s := range soils {
		if s == soilType || s == "well-drained "+soilType || strings.Contains(s, soilType) {
			return true
		}
	}
	return false
}

func suitabilityScore(info cropInfo, season, soilType string) float64 {
	score := 0.5
	if contains(info.seasons, season) {
		score += 0.3
	}
	if strings.Contains(strings.Join(info.soilTypes, " "), soilType) {
		score += 0.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func formatRecommendations(recs []cropRecommendation, season, soilType string) string {
	if len(recs) == 0 {
		return fmt.Sprintf("No crops in the advisory database match the %s season on %s soil. "+
			"Consult your local Krishi Vigyan Kendra for region-specific options.", season, soilType)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Recommended crops for the %s season on %s soil:\n", season, soilType)
	for _, r := range recs {
		fmt.Fprintf(&b, "\n- %s (suitability %.1f): varieties %s, growing period %s, water requirement %s",
			r.name, r.suitability, strings.Join(r.varieties, ", "), r.period, r.waterNeed)
	}
	return b.String()
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
