package usecase

import (
	"fmt"
	"strings"

	"krishi-ai/internal/domain"
)

// maxFollowUps bounds how many suggestions the enhancer appends per reply.
const maxFollowUps = 2

// DefaultFollowUps returns the static per-intent follow-up suggestions.
// Intents without an entry never set requires_followup.
func DefaultFollowUps() map[domain.Intent][]string {
	return map[domain.Intent][]string{
		domain.IntentCropAdvisory: {
			"Would you like weather information for your area?",
			"Do you need market price information for this crop?",
			"Would you like soil preparation advice?",
		},
		domain.IntentWeather: {
			"Would you like irrigation scheduling advice?",
			"Do you need crop protection recommendations?",
			"Would you like to know about suitable crops for this weather?",
		},
		domain.IntentMarket: {
			"Would you like crop advisory for better profits?",
			"Do you need information about storage and transportation?",
			"Would you like to know about government schemes?",
		},
	}
}

// Enhancer post-processes a responder's output: location note, follow-up
// suggestions, and classifier-derived metadata. Citations pass through
// unchanged.
type Enhancer struct {
	followUps map[domain.Intent][]string
}

// NewEnhancer creates an enhancer with the given follow-up table.
func NewEnhancer(followUps map[domain.Intent][]string) *Enhancer {
	return &Enhancer{followUps: followUps}
}

// Enhance returns a new AgentResponse derived from resp. The input response
// is not mutated.
func (e *Enhancer) Enhance(resp *domain.AgentResponse, cls domain.ClassificationResult, uc *domain.UserContext) *domain.AgentResponse {
	text := resp.Response

	if uc != nil && uc.Location != "" &&
		!strings.Contains(strings.ToLower(text), strings.ToLower(uc.Location)) {
		text += fmt.Sprintf("\n\n*Note: This advice is tailored for %s region.*", uc.Location)
	}

	suggestions := e.followUps[cls.PrimaryIntent]
	if len(suggestions) > 0 {
		top := suggestions
		if len(top) > maxFollowUps {
			top = top[:maxFollowUps]
		}
		var b strings.Builder
		b.WriteString("\n\n**Related Questions:**\n")
		for _, s := range top {
			b.WriteString("• " + s + "\n")
		}
		text += b.String()
	}

	// Responder keys win everywhere except the two classifier-derived keys.
	metadata := make(map[string]any, len(resp.Metadata)+3)
	for k, v := range resp.Metadata {
		metadata[k] = v
	}
	metadata[domain.MetaIntentConfidence] = cls.Confidence
	metadata[domain.MetaPrimaryIntent] = string(cls.PrimaryIntent)
	metadata["user_context_used"] = uc != nil && !isEmptyContext(uc)

	return &domain.AgentResponse{
		AgentName:        resp.AgentName,
		Response:         text,
		Confidence:       resp.Confidence,
		Metadata:         metadata,
		Citations:        resp.Citations,
		RequiresFollowup: len(suggestions) > 0,
	}
}

func isEmptyContext(uc *domain.UserContext) bool {
	return uc.Location == "" && uc.SoilType == "" && uc.CropType == "" &&
		uc.FarmSize == "" && uc.Language == "" && uc.LastCommodity == "" &&
		len(uc.CropInterests) == 0 && len(uc.ConversationHistory) == 0 && len(uc.Extra) == 0
}
