// Package responder implements the domain responders behind the uniform
// Responder contract: lookup tables for structured facts plus the text
// generator for free-form prose. Every responder populates confidence,
// metadata, and citations.
package responder

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"krishi-ai/internal/domain"
)

var (
	locationRe = regexp.MustCompile(`\b(punjab|haryana|uttar pradesh|bihar|west bengal|maharashtra|karnataka|tamil nadu|andhra pradesh|telangana|gujarat|rajasthan|madhya pradesh|odisha|jharkhand|chhattisgarh|kerala|assam|himachal pradesh|uttarakhand)\b`)
	seasonRe   = regexp.MustCompile(`\b(kharif|rabi|summer|monsoon|winter|rainy)\b`)
	soilRe     = regexp.MustCompile(`\b(clay|loam|sandy|silt|alluvial|black|red|laterite)\b`)
	cropRe     = regexp.MustCompile(`\b(rice|paddy|wheat|cotton|maize|corn|sugarcane)\b`)
	phRe       = regexp.MustCompile(`ph\s*(?:is|of|level|value)?\s*([0-9]+(?:\.[0-9]+)?)`)
)

// extractLocation prefers the stored context location over the query text.
func extractLocation(query string, uc *domain.UserContext) string {
	if uc != nil && uc.Location != "" {
		return uc.Location
	}
	if m := locationRe.FindString(strings.ToLower(query)); m != "" {
		return m
	}
	return "general"
}

// extractSeason maps colloquial names onto the two cropping seasons and
// falls back to the season implied by the current month.
func extractSeason(query string, now time.Time) string {
	if m := seasonRe.FindString(strings.ToLower(query)); m != "" {
		switch m {
		case "monsoon", "rainy":
			return "kharif"
		case "winter":
			return "rabi"
		default:
			return m
		}
	}
	switch month := now.Month(); {
	case month >= time.June && month <= time.October:
		return "kharif"
	case month >= time.November || month <= time.April:
		return "rabi"
	default:
		return "summer"
	}
}

func extractSoilType(query string, uc *domain.UserContext) string {
	if uc != nil && uc.SoilType != "" {
		return uc.SoilType
	}
	if m := soilRe.FindString(strings.ToLower(query)); m != "" {
		return m
	}
	return "loam"
}

func extractCrop(query string, uc *domain.UserContext) string {
	if uc != nil && uc.CropType != "" {
		return uc.CropType
	}
	m := cropRe.FindString(strings.ToLower(query))
	switch m {
	case "paddy":
		return "rice"
	case "corn":
		return "maize"
	case "":
		return "rice"
	default:
		return m
	}
}

// generateOr asks the text generator for prose and falls back to the
// table-derived text when the generator is absent or failing. Generator
// failures here are not pipeline failures; the responder still answers.
func generateOr(ctx context.Context, gen domain.TextGenerator, logger *slog.Logger, prompt, fallback string) string {
	if gen == nil {
		return fallback
	}
	out, err := gen.Generate(ctx, prompt)
	if err != nil {
		logger.Warn("text generation failed, using table answer", "error", err)
		return fallback
	}
	return out
}
