package responder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"krishi-ai/internal/domain"
)

type waterRequirement struct {
	totalMM   string
	critical  []string
	frequency string
}

var cropWaterRequirements = map[string]waterRequirement{
	"rice": {
		totalMM:   "1200-1500",
		critical:  []string{"tillering", "flowering", "grain filling"},
		frequency: "continuous flooding or alternate wetting and drying",
	},
	"wheat": {
		totalMM:   "450-650",
		critical:  []string{"crown root initiation", "flowering", "grain filling"},
		frequency: "4-6 irrigations",
	},
	"cotton": {
		totalMM:   "700-1300",
		critical:  []string{"flowering", "boll development"},
		frequency: "6-8 irrigations",
	},
	"sugarcane": {
		totalMM:   "1800-2500",
		critical:  []string{"germination", "tillering", "grand growth"},
		frequency: "weekly in summer, fortnightly in winter",
	},
	"maize": {
		totalMM:   "500-800",
		critical:  []string{"tasseling", "silking", "grain filling"},
		frequency: "4-5 irrigations",
	},
}

type irrigationMethod struct {
	efficiency string
	suitedFor  []string
	note       string
}

var irrigationMethods = map[string]irrigationMethod{
	"drip": {
		efficiency: "90%",
		suitedFor:  []string{"cotton", "sugarcane", "vegetables", "orchards"},
		note:       "Best water savings; eligible for PMKSY subsidy",
	},
	"sprinkler": {
		efficiency: "75%",
		suitedFor:  []string{"wheat", "maize", "pulses"},
		note:       "Good for undulating terrain and light soils",
	},
	"flood": {
		efficiency: "50%",
		suitedFor:  []string{"rice"},
		note:       "Traditional method; high water use",
	},
	"furrow": {
		efficiency: "60%",
		suitedFor:  []string{"cotton", "maize", "sugarcane"},
		note:       "Low cost for row crops",
	},
}

// Irrigation plans watering schedules from crop water requirement tables.
type Irrigation struct {
	gen    domain.TextGenerator
	logger *slog.Logger
}

// NewIrrigation creates the irrigation planning responder. gen may be nil.
func NewIrrigation(gen domain.TextGenerator, logger *slog.Logger) *Irrigation {
	return &Irrigation{gen: gen, logger: logger}
}

func (a *Irrigation) Name() string { return "Irrigation Planning" }

func (a *Irrigation) Description() string {
	return "Plans irrigation schedules and recommends water management methods"
}

func (a *Irrigation) Capabilities() []string {
	return []string{"schedule_planning", "method_selection", "water_budgeting"}
}

func (a *Irrigation) Process(ctx context.Context, query string, uc *domain.UserContext) (*domain.AgentResponse, error) {
	cropType := extractCrop(query, uc)
	soilType := extractSoilType(query, uc)
	method := extractMethod(query)

	req, hasReq := cropWaterRequirements[cropType]

	var fallback strings.Builder
	fmt.Fprintf(&fallback, "Irrigation plan for %s on %s soil:\n", cropType, soilType)
	if hasReq {
		fmt.Fprintf(&fallback, "- Seasonal water requirement: %s mm\n- Critical stages: %s\n- Schedule: %s\n",
			req.totalMM, strings.Join(req.critical, ", "), req.frequency)
	}
	if m, ok := irrigationMethods[method]; ok {
		fmt.Fprintf(&fallback, "\n%s irrigation (efficiency %s): %s.", method, m.efficiency, m.note)
	} else {
		fmt.Fprintf(&fallback, "\nConsider drip irrigation (90%% efficiency) where feasible "+
			"to reduce water use.")
	}

	prompt := fmt.Sprintf(`As an irrigation engineer, design a watering plan for:

Crop: %s
Soil Type: %s
Preferred Method: %s
Query: %s

Cover:
1. Irrigation schedule by growth stage
2. Water quantity per irrigation
3. Method suitability and efficiency
4. Water conservation techniques
5. Signs of over and under watering`, cropType, soilType, method, query)

	text := generateOr(ctx, a.gen, a.logger, prompt, fallback.String())

	metadata := map[string]any{
		"crop_type": cropType,
		"soil_type": soilType,
		"method":    method,
	}
	if hasReq {
		metadata["water_requirement_mm"] = req.totalMM
		metadata["critical_stages"] = req.critical
	}

	return &domain.AgentResponse{
		AgentName:  a.Name(),
		Response:   text,
		Confidence: 0.87,
		Metadata:   metadata,
		Citations:  []string{"PMKSY Guidelines", "ICAR Water Management Research"},
	}, nil
}

func extractMethod(query string) string {
	lower := strings.ToLower(query)
	for method := range irrigationMethods {
		if strings.Contains(lower, method) {
			return method
		}
	}
	return "drip"
}
