package domain

import (
	"context"
	"time"
)

// TTL tiers. Three independent lifetimes over the same conceptual memory;
// they are stored under separate keys and must never be merged.
const (
	UserContextTTL     = 7 * 24 * time.Hour
	AgentMemoryTTL     = 24 * time.Hour
	ConversationLogTTL = 24 * time.Hour
)

// Retention bounds for the managed history and the rolling turn log.
const (
	MaxHistory    = 10
	MaxLogEntries = 10
)

// Exchange is one user/assistant pair in the managed conversation history.
type Exchange struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// UserContext is the per-user persisted state. The named fields are the
// closed set of well-known keys; Extra carries caller-supplied keys outside
// that set. ConversationHistory is managed by the recorder and bounded to
// the most recent MaxHistory exchanges.
//
// Known consistency gap: the store offers no read-modify-write transaction,
// so two overlapping requests for the same user race and the second save
// wins (last-write-wins). This mirrors the upstream behavior deliberately.
type UserContext struct {
	Location            string         `json:"location,omitempty"`
	SoilType            string         `json:"soil_type,omitempty"`
	CropType            string         `json:"crop_type,omitempty"`
	FarmSize            string         `json:"farm_size,omitempty"`
	Language            string         `json:"language,omitempty"`
	LastCommodity       string         `json:"last_commodity,omitempty"`
	CropInterests       []string       `json:"crop_interests,omitempty"`
	ConversationHistory []Exchange     `json:"conversation_history"`
	Extra               map[string]any `json:"extra,omitempty"`

	// TargetLanguage is request-scoped: merged from ContextOverrides for one
	// request so the translation responder sees the caller's choice. Never
	// persisted.
	TargetLanguage string `json:"-"`
}

// NewUserContext returns an empty context ready for use.
func NewUserContext() *UserContext {
	return &UserContext{ConversationHistory: []Exchange{}}
}

// AppendExchange appends a turn to the history, evicting the oldest entries
// beyond MaxHistory (FIFO bound).
func (uc *UserContext) AppendExchange(user, assistant string) {
	uc.ConversationHistory = append(uc.ConversationHistory, Exchange{User: user, Assistant: assistant})
	if n := len(uc.ConversationHistory); n > MaxHistory {
		uc.ConversationHistory = uc.ConversationHistory[n-MaxHistory:]
	}
}

// ContextOverrides are caller-supplied per-request context values. They are
// merged into the working copy of the stored context for the duration of
// one request. TargetLanguage is the explicit translation trigger.
type ContextOverrides struct {
	Location       string     `json:"location,omitempty"`
	SoilType       string     `json:"soil_type,omitempty"`
	CropType       string     `json:"crop_type,omitempty"`
	FarmSize       string     `json:"farm_size,omitempty"`
	Language       string     `json:"language,omitempty"`
	TargetLanguage string     `json:"target_language,omitempty"`
	History        []Exchange `json:"conversation_history,omitempty"`
}

// Apply merges non-empty override values into the context.
func (uc *UserContext) Apply(o *ContextOverrides) {
	if o == nil {
		return
	}
	if o.Location != "" {
		uc.Location = o.Location
	}
	if o.SoilType != "" {
		uc.SoilType = o.SoilType
	}
	if o.CropType != "" {
		uc.CropType = o.CropType
	}
	if o.FarmSize != "" {
		uc.FarmSize = o.FarmSize
	}
	if o.Language != "" {
		uc.Language = o.Language
	}
	if o.TargetLanguage != "" {
		uc.TargetLanguage = o.TargetLanguage
	}
	if len(o.History) > 0 {
		uc.ConversationHistory = append(uc.ConversationHistory, o.History...)
		if n := len(uc.ConversationHistory); n > MaxHistory {
			uc.ConversationHistory = uc.ConversationHistory[n-MaxHistory:]
		}
	}
}

// Query is the immutable pipeline input.
type Query struct {
	UserID    string
	SessionID string
	Text      string
	Overrides *ContextOverrides
}

// ConversationTurn is one compact record in the rolling conversation log,
// independent of UserContext.ConversationHistory.
type ConversationTurn struct {
	ID         string    `json:"id"`
	Query      string    `json:"query"`
	Response   string    `json:"response"`
	AgentName  string    `json:"agent"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// ContextStore is the port to the TTL key-value memory backend.
//
// LoadContext returns ErrNotFound-free semantics: a missing record yields an
// empty context and a nil error. A read or decode failure returns an error;
// callers substitute an empty context and continue (best-effort cache, not a
// system of record).
type ContextStore interface {
	LoadContext(ctx context.Context, userID string) (*UserContext, error)
	SaveContext(ctx context.Context, userID string, uc *UserContext, ttl time.Duration) error

	LoadAgentMemory(ctx context.Context, userID string) (map[string]any, error)
	SaveAgentMemory(ctx context.Context, userID string, mem map[string]any, ttl time.Duration) error

	AppendTurn(ctx context.Context, userID, sessionID string, turn ConversationTurn, max int, ttl time.Duration) error
	RecentTurns(ctx context.Context, userID, sessionID string, n int) ([]ConversationTurn, error)
}

// Sweeper is an optional interface for stores that need periodic removal of
// expired records (sqlite, in-memory). Redis expires keys natively.
type Sweeper interface {
	Sweep(ctx context.Context) (removed int, err error)
}
