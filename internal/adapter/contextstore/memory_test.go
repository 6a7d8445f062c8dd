package contextstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"krishi-ai/internal/domain"
)

// fakeClock lets tests advance store time manually.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClockedMemoryStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = clock.now
	return store, clock
}

func TestMemoryStoreContextRoundTrip(t *testing.T) {
	store, _ := newClockedMemoryStore()
	ctx := context.Background()

	uc := domain.NewUserContext()
	uc.Location = "Punjab"
	uc.CropInterests = []string{"wheat", "rice"}
	uc.AppendExchange("q", "a")

	if err := store.SaveContext(ctx, "u1", uc, domain.UserContextTTL); err != nil {
		t.Fatalf("SaveContext: %v", err)
	}

	got, err := store.LoadContext(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadContext: %v", err)
	}
	if got.Location != "Punjab" || len(got.CropInterests) != 2 || len(got.ConversationHistory) != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestMemoryStoreMissingContextIsEmptyNotError(t *testing.T) {
	store, _ := newClockedMemoryStore()

	got, err := store.LoadContext(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("LoadContext: %v", err)
	}
	if got == nil || len(got.ConversationHistory) != 0 {
		t.Errorf("missing record should load as empty context, got %+v", got)
	}
}

func TestMemoryStoreContextExpires(t *testing.T) {
	store, clock := newClockedMemoryStore()
	ctx := context.Background()

	uc := domain.NewUserContext()
	uc.Location = "Kerala"
	if err := store.SaveContext(ctx, "u1", uc, domain.UserContextTTL); err != nil {
		t.Fatalf("SaveContext: %v", err)
	}

	clock.advance(domain.UserContextTTL + time.Second)

	got, err := store.LoadContext(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadContext: %v", err)
	}
	if got.Location != "" {
		t.Errorf("expired record should read as empty, got location %q", got.Location)
	}
}

func TestMemoryStoreTiersExpireIndependently(t *testing.T) {
	store, clock := newClockedMemoryStore()
	ctx := context.Background()

	uc := domain.NewUserContext()
	uc.Location = "Bihar"
	if err := store.SaveContext(ctx, "u1", uc, domain.UserContextTTL); err != nil {
		t.Fatalf("SaveContext: %v", err)
	}
	if err := store.SaveAgentMemory(ctx, "u1", map[string]any{"last_agent": "Weather Advisory"}, domain.AgentMemoryTTL); err != nil {
		t.Fatalf("SaveAgentMemory: %v", err)
	}

	// Past the 24h agent memory tier but inside the 7-day context tier.
	clock.advance(domain.AgentMemoryTTL + time.Hour)

	mem, err := store.LoadAgentMemory(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadAgentMemory: %v", err)
	}
	if len(mem) != 0 {
		t.Errorf("agent memory should have expired, got %v", mem)
	}

	got, err := store.LoadContext(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadContext: %v", err)
	}
	if got.Location != "Bihar" {
		t.Errorf("user context should survive the agent memory expiry, got %+v", got)
	}
}

func TestMemoryStoreTurnLogTrimsToMax(t *testing.T) {
	store, _ := newClockedMemoryStore()
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		turn := domain.ConversationTurn{ID: fmt.Sprintf("t%d", i), Query: fmt.Sprintf("q%d", i)}
		if err := store.AppendTurn(ctx, "u1", "s1", turn, domain.MaxLogEntries, domain.ConversationLogTTL); err != nil {
			t.Fatalf("AppendTurn %d: %v", i, err)
		}
	}

	turns, err := store.RecentTurns(ctx, "u1", "s1", 100)
	if err != nil {
		t.Fatalf("RecentTurns: %v", err)
	}
	if len(turns) != domain.MaxLogEntries {
		t.Fatalf("turn log len = %d, want %d", len(turns), domain.MaxLogEntries)
	}
	// Newest first.
	if turns[0].ID != "t12" || turns[len(turns)-1].ID != "t3" {
		t.Errorf("trim kept wrong window: first %s, last %s", turns[0].ID, turns[len(turns)-1].ID)
	}
}

func TestMemoryStoreTurnLogIsPerSession(t *testing.T) {
	store, _ := newClockedMemoryStore()
	ctx := context.Background()

	store.AppendTurn(ctx, "u1", "s1", domain.ConversationTurn{ID: "a"}, domain.MaxLogEntries, domain.ConversationLogTTL)
	store.AppendTurn(ctx, "u1", "s2", domain.ConversationTurn{ID: "b"}, domain.MaxLogEntries, domain.ConversationLogTTL)

	turns, err := store.RecentTurns(ctx, "u1", "s1", 10)
	if err != nil {
		t.Fatalf("RecentTurns: %v", err)
	}
	if len(turns) != 1 || turns[0].ID != "a" {
		t.Errorf("session s1 turns = %+v, want only ID a", turns)
	}
}

func TestMemoryStoreCorruptRecordIsStoreError(t *testing.T) {
	store, _ := newClockedMemoryStore()

	store.setKV(userContextKey("u1"), []byte("{not json"), domain.UserContextTTL)

	_, err := store.LoadContext(context.Background(), "u1")
	if err == nil {
		t.Fatal("corrupt record should surface an error, not an empty context")
	}
	if !domain.IsStoreError(err) {
		t.Errorf("error %v should classify as a store error", err)
	}
}

func TestMemoryStoreSweepRemovesExpired(t *testing.T) {
	store, clock := newClockedMemoryStore()
	ctx := context.Background()

	store.SaveContext(ctx, "old", domain.NewUserContext(), time.Minute)
	store.AppendTurn(ctx, "old", "s1", domain.ConversationTurn{ID: "x"}, 10, time.Minute)
	store.SaveContext(ctx, "fresh", domain.NewUserContext(), domain.UserContextTTL)

	clock.advance(2 * time.Minute)

	removed, err := store.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2 (context + turn list)", removed)
	}
	if _, ok := store.kv[userContextKey("fresh")]; !ok {
		t.Error("unexpired record was swept")
	}
}
