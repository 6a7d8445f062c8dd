package responder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"krishi-ai/internal/domain"
)

var greetings = []string{"hi", "hello", "hey", "namaste", "namaskar", "good morning", "good evening"}

const greetingReply = "Namaste! I'm your agricultural assistant. I can help with crop " +
	"selection, soil health, weather advisories, irrigation, pest control, market " +
	"prices, farm finance, and government schemes. What would you like to know?"

// Chat handles conversational queries that no domain responder covers,
// carrying recent conversation history into the generator prompt.
type Chat struct {
	gen    domain.TextGenerator
	logger *slog.Logger
}

// NewChat creates the general chat responder. gen may be nil.
func NewChat(gen domain.TextGenerator, logger *slog.Logger) *Chat {
	return &Chat{gen: gen, logger: logger}
}

func (a *Chat) Name() string { return "General Chat" }

func (a *Chat) Description() string {
	return "Handles greetings and general conversation with history awareness"
}

func (a *Chat) Capabilities() []string {
	return []string{"greeting", "general_conversation", "history_followup"}
}

func (a *Chat) Process(ctx context.Context, query string, uc *domain.UserContext) (*domain.AgentResponse, error) {
	// A bare greeting with no prior history gets the canned welcome.
	if isGreeting(query) && (uc == nil || len(uc.ConversationHistory) == 0) {
		return &domain.AgentResponse{
			AgentName:        a.Name(),
			Response:         greetingReply,
			Confidence:       1.0,
			Metadata:         map[string]any{"greeting": true},
			RequiresFollowup: true,
		}, nil
	}

	var history strings.Builder
	if uc != nil {
		turns := uc.ConversationHistory
		if len(turns) > 5 {
			turns = turns[len(turns)-5:]
		}
		for _, t := range turns {
			fmt.Fprintf(&history, "Farmer: %s\nAssistant: %s\n", t.User, t.Assistant)
		}
	}

	prompt := fmt.Sprintf(`Continue this conversation with a farmer. Stay on agricultural topics and be concise.

Recent conversation:
%s
Farmer: %s

Respond helpfully.`, history.String(), query)

	text := generateOr(ctx, a.gen, a.logger, prompt,
		"I can help with crops, soil, weather, irrigation, pests, prices, loans, and "+
			"schemes. Could you tell me a bit more about what you need?")

	return &domain.AgentResponse{
		AgentName:  a.Name(),
		Response:   text,
		Confidence: 0.95,
		Metadata:   map[string]any{"greeting": false},
	}, nil
}

func isGreeting(query string) bool {
	trimmed := strings.TrimRight(strings.ToLower(strings.TrimSpace(query)), "!. ")
	for _, g := range greetings {
		if trimmed == g {
			return true
		}
	}
	return false
}
