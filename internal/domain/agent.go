package domain

import "context"

// Well-known metadata keys. The conversation recorder reads these back into
// the user context; everything else in Metadata is responder-specific and
// opaque to the pipeline.
const (
	MetaLocation         = "location"
	MetaCommodity        = "commodity"
	MetaCropTypes        = "crop_types"
	MetaPrimaryIntent    = "primary_intent"
	MetaIntentConfidence = "intent_confidence"
)

// AgentResponse is the uniform contract every responder returns.
// Confidence is always populated; responders never return it unset.
type AgentResponse struct {
	AgentName        string         `json:"agent_name"`
	Response         string         `json:"response"`
	Confidence       float64        `json:"confidence"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	Citations        []string       `json:"citations,omitempty"`
	RequiresFollowup bool           `json:"requires_followup"`
}

// Responder is a domain-specific component that answers one category of
// farmer query. Process receives the raw query text and a working copy of
// the user's context; it must not retain the context past the call.
type Responder interface {
	Name() string
	Description() string
	Capabilities() []string
	Process(ctx context.Context, query string, uc *UserContext) (*AgentResponse, error)
}

// ResponderStatus is a read-only snapshot used by capability listings.
type ResponderStatus struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities,omitempty"`
}
