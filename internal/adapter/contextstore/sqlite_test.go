package contextstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"krishi-ai/internal/domain"
)

func newTestSQLiteStore(t *testing.T) (*SQLiteStore, *fakeClock) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	clock := &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	store.now = clock.now
	return store, clock
}

func TestSQLiteStoreContextRoundTrip(t *testing.T) {
	store, _ := newTestSQLiteStore(t)
	ctx := context.Background()

	uc := domain.NewUserContext()
	uc.Location = "Karnataka"
	uc.LastCommodity = "maize"
	uc.AppendExchange("q1", "a1")

	if err := store.SaveContext(ctx, "u1", uc, domain.UserContextTTL); err != nil {
		t.Fatalf("SaveContext: %v", err)
	}

	got, err := store.LoadContext(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadContext: %v", err)
	}
	if got.Location != "Karnataka" || got.LastCommodity != "maize" || len(got.ConversationHistory) != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestSQLiteStoreUpsertReplacesContext(t *testing.T) {
	store, _ := newTestSQLiteStore(t)
	ctx := context.Background()

	first := domain.NewUserContext()
	first.Location = "Punjab"
	store.SaveContext(ctx, "u1", first, domain.UserContextTTL)

	second := domain.NewUserContext()
	second.Location = "Haryana"
	if err := store.SaveContext(ctx, "u1", second, domain.UserContextTTL); err != nil {
		t.Fatalf("SaveContext upsert: %v", err)
	}

	got, err := store.LoadContext(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadContext: %v", err)
	}
	if got.Location != "Haryana" {
		t.Errorf("location = %q, want last write Haryana", got.Location)
	}
}

func TestSQLiteStoreLazyExpiry(t *testing.T) {
	store, clock := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := store.SaveAgentMemory(ctx, "u1", map[string]any{"last_agent": "Policy Query"}, domain.AgentMemoryTTL); err != nil {
		t.Fatalf("SaveAgentMemory: %v", err)
	}

	clock.advance(domain.AgentMemoryTTL + time.Minute)

	mem, err := store.LoadAgentMemory(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadAgentMemory: %v", err)
	}
	if len(mem) != 0 {
		t.Errorf("expired agent memory should read as empty, got %v", mem)
	}
}

func TestSQLiteStoreTurnLogTrimAndOrder(t *testing.T) {
	store, _ := newTestSQLiteStore(t)
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
	if turns[0].ID != "t12" || turns[len(turns)-1].ID != "t3" {
		t.Errorf("window wrong: first %s, last %s", turns[0].ID, turns[len(turns)-1].ID)
	}
}

func TestSQLiteStoreSweepRemovesExpiredRows(t *testing.T) {
	store, clock := newTestSQLiteStore(t)
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
		t.Errorf("removed = %d, want 2", removed)
	}

	got, err := store.LoadContext(ctx, "fresh")
	if err != nil {
		t.Fatalf("LoadContext after sweep: %v", err)
	}
	if got == nil {
		t.Error("unexpired context lost in sweep")
	}
}
