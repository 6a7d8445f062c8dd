package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"krishi-ai/internal/adapter/contextstore"
	"krishi-ai/internal/domain"
)

// failingStore errors on every persistence call.
type failingStore struct{}

func (failingStore) LoadContext(context.Context, string) (*domain.UserContext, error) {
	return nil, errors.New("down")
}
func (failingStore) SaveContext(context.Context, string, *domain.UserContext, time.Duration) error {
	return errors.New("down")
}
func (failingStore) LoadAgentMemory(context.Context, string) (map[string]any, error) {
	return nil, errors.New("down")
}
func (failingStore) SaveAgentMemory(context.Context, string, map[string]any, time.Duration) error {
	return errors.New("down")
}
func (failingStore) AppendTurn(context.Context, string, string, domain.ConversationTurn, int, time.Duration) error {
	return errors.New("down")
}
func (failingStore) RecentTurns(context.Context, string, string, int) ([]domain.ConversationTurn, error) {
	return nil, errors.New("down")
}

func TestRecordPersistsHistoryAndLog(t *testing.T) {
	store := contextstore.NewMemoryStore()
	rec := NewRecorder(store, discardLogger())
	ctx := context.Background()

	uc := domain.NewUserContext()
	resp := &domain.AgentResponse{
		AgentName:  "Crop Advisory",
		Response:   "Grow wheat.",
		Confidence: 0.85,
		Metadata:   map[string]any{domain.MetaLocation: "punjab"},
	}

	out := rec.Record(ctx, "u1", "s1", "what to grow", resp, uc)
	if out.Degraded {
		t.Fatalf("recording degraded: %s", out.Reason)
	}

	loaded, err := store.LoadContext(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadContext: %v", err)
	}
	if len(loaded.ConversationHistory) != 1 {
		t.Fatalf("history len = %d, want 1", len(loaded.ConversationHistory))
	}
	if loaded.ConversationHistory[0].User != "what to grow" {
		t.Errorf("history user = %q", loaded.ConversationHistory[0].User)
	}
	if loaded.Location != "punjab" {
		t.Errorf("location = %q, want extracted punjab", loaded.Location)
	}

	turns, err := store.RecentTurns(ctx, "u1", "s1", 10)
	if err != nil {
		t.Fatalf("RecentTurns: %v", err)
	}
	if len(turns) != 1 || turns[0].AgentName != "Crop Advisory" {
		t.Errorf("turns = %+v, want one Crop Advisory turn", turns)
	}
	if turns[0].ID == "" {
		t.Error("turn ID should be assigned")
	}

	mem, err := store.LoadAgentMemory(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadAgentMemory: %v", err)
	}
	if mem["last_agent"] != "Crop Advisory" {
		t.Errorf("agent memory last_agent = %v", mem["last_agent"])
	}
}

func TestRecordBoundsHistoryToTen(t *testing.T) {
	store := contextstore.NewMemoryStore()
	rec := NewRecorder(store, discardLogger())
	ctx := context.Background()

	uc := domain.NewUserContext()
	for i := 1; i <= 11; i++ {
		resp := &domain.AgentResponse{AgentName: "Crop Advisory", Response: fmt.Sprintf("answer %d", i)}
		rec.Record(ctx, "u1", "s1", fmt.Sprintf("question %d", i), resp, uc)
	}

	loaded, err := store.LoadContext(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadContext: %v", err)
	}
	if len(loaded.ConversationHistory) != domain.MaxHistory {
		t.Fatalf("history len = %d, want %d", len(loaded.ConversationHistory), domain.MaxHistory)
	}
	if got := loaded.ConversationHistory[0].User; got != "question 2" {
		t.Errorf("oldest kept entry = %q, want question 2", got)
	}
	if got := loaded.ConversationHistory[9].User; got != "question 11" {
		t.Errorf("newest entry = %q, want question 11", got)
	}
}

func TestRecordExtractsMetadata(t *testing.T) {
	store := contextstore.NewMemoryStore()
	rec := NewRecorder(store, discardLogger())
	ctx := context.Background()

	uc := domain.NewUserContext()
	resp := &domain.AgentResponse{
		AgentName: "Market Intelligence",
		Response:  "₹2250/quintal",
		Metadata: map[string]any{
			domain.MetaCommodity: "wheat",
			// JSON round-trips produce []any, not []string.
			domain.MetaCropTypes: []any{"wheat", "maize"},
		},
	}
	rec.Record(ctx, "u1", "s1", "wheat price", resp, uc)

	if uc.LastCommodity != "wheat" {
		t.Errorf("last commodity = %q, want wheat", uc.LastCommodity)
	}
	if len(uc.CropInterests) != 2 || uc.CropInterests[0] != "wheat" {
		t.Errorf("crop interests = %v, want [wheat maize]", uc.CropInterests)
	}
}

func TestRecordSwallowsStoreFailures(t *testing.T) {
	rec := NewRecorder(failingStore{}, discardLogger())

	uc := domain.NewUserContext()
	resp := &domain.AgentResponse{AgentName: "Crop Advisory", Response: "ok"}
	out := rec.Record(context.Background(), "u1", "s1", "q", resp, uc)

	if !out.Degraded {
		t.Fatal("outcome should be degraded when every store call fails")
	}
	// The in-memory history must still advance for this request.
	if len(uc.ConversationHistory) != 1 {
		t.Errorf("history len = %d, want 1", len(uc.ConversationHistory))
	}
}
