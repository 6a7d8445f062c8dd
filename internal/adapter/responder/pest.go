package responder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"krishi-ai/internal/domain"
)

type pestEntry struct {
	symptoms  []string
	treatment string
	organic   string
}

var pestDatabase = map[string]map[string]pestEntry{
	"rice": {
		"stem borer": {
			symptoms:  []string{"dead hearts in vegetative stage", "white ears at maturity"},
			treatment: "Apply cartap hydrochloride 4G @ 18.75 kg/ha",
			organic:   "Release Trichogramma japonicum egg parasitoids",
		},
		"blast": {
			symptoms:  []string{"diamond-shaped lesions on leaves", "neck rot"},
			treatment: "Spray tricyclazole 75 WP @ 0.6 g/litre",
			organic:   "Use resistant varieties and balanced nitrogen",
		},
		"brown planthopper": {
			symptoms:  []string{"hopper burn in circular patches", "honeydew on leaves"},
			treatment: "Apply imidacloprid 17.8 SL @ 0.25 ml/litre",
			organic:   "Drain fields and avoid excess nitrogen",
		},
	},
	"wheat": {
		"rust": {
			symptoms:  []string{"orange or brown pustules on leaves and stems"},
			treatment: "Spray propiconazole 25 EC @ 1 ml/litre",
			organic:   "Grow resistant varieties, early sowing",
		},
		"aphids": {
			symptoms:  []string{"curled leaves", "sticky honeydew", "stunted growth"},
			treatment: "Spray imidacloprid 17.8 SL @ 0.25 ml/litre",
			organic:   "Conserve ladybird beetles, spray neem oil 2%",
		},
	},
	"cotton": {
		"bollworm": {
			symptoms:  []string{"holes in bolls", "damaged squares and flowers"},
			treatment: "Spray emamectin benzoate 5 SG @ 0.4 g/litre",
			organic:   "Install pheromone traps @ 5/ha, release Trichogramma",
		},
		"whitefly": {
			symptoms:  []string{"yellowing leaves", "sooty mould", "leaf curl virus spread"},
			treatment: "Spray diafenthiuron 50 WP @ 1 g/litre",
			organic:   "Yellow sticky traps, neem seed kernel extract 5%",
		},
	},
}

// PestDisease diagnoses pest and disease problems from symptom keywords.
type PestDisease struct {
	gen    domain.TextGenerator
	logger *slog.Logger
}

// NewPestDisease creates the pest and disease responder. gen may be nil.
func NewPestDisease(gen domain.TextGenerator, logger *slog.Logger) *PestDisease {
	return &PestDisease{gen: gen, logger: logger}
}

func (a *PestDisease) Name() string { return "Pest and Disease Management" }

func (a *PestDisease) Description() string {
	return "Diagnoses crop pests and diseases and recommends treatments"
}

func (a *PestDisease) Capabilities() []string {
	return []string{"pest_diagnosis", "treatment_recommendation", "ipm_guidance"}
}

func (a *PestDisease) Process(ctx context.Context, query string, uc *domain.UserContext) (*domain.AgentResponse, error) {
	cropType := extractCrop(query, uc)
	pest, entry := matchPest(query, cropType)

	var fallback strings.Builder
	if pest != "" {
		fmt.Fprintf(&fallback, "Likely problem in %s: %s.\n\nSymptoms: %s\n\nChemical control: %s\nOrganic control: %s",
			cropType, pest, strings.Join(entry.symptoms, "; "), entry.treatment, entry.organic)
	} else {
		fmt.Fprintf(&fallback, "Could not identify a specific pest or disease for %s from the "+
			"description. Common checks: inspect leaf undersides for insects, look for lesions "+
			"or discoloration, and note the affected growth stage. Share clear symptoms or "+
			"photos with your local Krishi Vigyan Kendra for diagnosis.", cropType)
	}

	prompt := fmt.Sprintf(`As a plant protection specialist, diagnose and advise on this problem:

Crop: %s
Suspected Issue: %s
Query: %s

Provide:
1. Likely pest or disease identification
2. Integrated pest management approach
3. Chemical control with exact dosage and safety precautions
4. Organic and biological alternatives
5. Preventive measures for next season`, cropType, orUnknown(pest), query)

	text := generateOr(ctx, a.gen, a.logger, prompt, fallback.String())

	metadata := map[string]any{
		"crop_type":  cropType,
		"identified": pest != "",
	}
	if pest != "" {
		metadata["pest_or_disease"] = pest
	}

	return &domain.AgentResponse{
		AgentName:  a.Name(),
		Response:   text,
		Confidence: 0.82,
		Metadata:   metadata,
		Citations:  []string{"ICAR-NCIPM Advisories", "State Plant Protection Department"},
	}, nil
}

func matchPest(query, cropType string) (string, pestEntry) {
	lower := strings.ToLower(query)
	entries, ok := pestDatabase[cropType]
	if !ok {
		return "", pestEntry{}
	}
	for name, entry := range entries {
		if strings.Contains(lower, name) {
			return name, entry
		}
		for _, symptom := range entry.symptoms {
			if symptomOverlap(lower, symptom) {
				return name, entry
			}
		}
	}
	return "", pestEntry{}
}

// symptomOverlap reports whether a distinctive word of the symptom appears
// in the query. Short filler words are skipped.
func symptomOverlap(query, symptom string) bool {
	for _, word := range strings.Fields(symptom) {
		if len(word) < 5 {
			continue
		}
		if strings.Contains(query, word) {
			return true
		}
	}
	return false
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
