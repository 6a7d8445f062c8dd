package contextstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"krishi-ai/internal/domain"
)

type memoryRecord struct {
	value     []byte
	expiresAt time.Time
}

type memoryList struct {
	items     [][]byte // newest first
	expiresAt time.Time
}

// MemoryStore is an in-process domain.ContextStore for development and
// tests. Records are stored serialized so load/save round-trips behave like
// the networked backends.
type MemoryStore struct {
	mu    sync.RWMutex
	kv    map[string]memoryRecord
	lists map[string]memoryList
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		kv:    make(map[string]memoryRecord),
		lists: make(map[string]memoryList),
		now:   time.Now,
	}
}

func (s *MemoryStore) getKV(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.kv[key]
	if !ok || s.now().After(rec.expiresAt) {
		return nil, false
	}
	return rec.value, true
}

func (s *MemoryStore) setKV(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = memoryRecord{value: value, expiresAt: s.now().Add(ttl)}
}

func (s *MemoryStore) LoadContext(_ context.Context, userID string) (*domain.UserContext, error) {
	data, ok := s.getKV(userContextKey(userID))
	if !ok {
		return domain.NewUserContext(), nil
	}
	var uc domain.UserContext
	if err := json.Unmarshal(data, &uc); err != nil {
		return nil, domain.NewDomainError("MemoryStore.LoadContext", domain.ErrCorruptRecord, err.Error())
	}
	return &uc, nil
}

func (s *MemoryStore) SaveContext(_ context.Context, userID string, uc *domain.UserContext, ttl time.Duration) error {
	data, err := json.Marshal(uc)
	if err != nil {
		return domain.NewDomainError("MemoryStore.SaveContext", domain.ErrInvalidInput, err.Error())
	}
	s.setKV(userContextKey(userID), data, ttl)
	return nil
}

func (s *MemoryStore) LoadAgentMemory(_ context.Context, userID string) (map[string]any, error) {
	data, ok := s.getKV(agentMemoryKey(userID))
	if !ok {
		return map[string]any{}, nil
	}
	var mem map[string]any
	if err := json.Unmarshal(data, &mem); err != nil {
		return nil, domain.NewDomainError("MemoryStore.LoadAgentMemory", domain.ErrCorruptRecord, err.Error())
	}
	return mem, nil
}

func (s *MemoryStore) SaveAgentMemory(_ context.Context, userID string, mem map[string]any, ttl time.Duration) error {
	data, err := json.Marshal(mem)
	if err != nil {
		return domain.NewDomainError("MemoryStore.SaveAgentMemory", domain.ErrInvalidInput, err.Error())
	}
	s.setKV(agentMemoryKey(userID), data, ttl)
	return nil
}

func (s *MemoryStore) AppendTurn(_ context.Context, userID, sessionID string, turn domain.ConversationTurn, max int, ttl time.Duration) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return domain.NewDomainError("MemoryStore.AppendTurn", domain.ErrInvalidInput, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := conversationKey(userID, sessionID)
	list := s.lists[key]
	if s.now().After(list.expiresAt) {
		list.items = nil
	}
	list.items = append([][]byte{data}, list.items...)
	if len(list.items) > max {
		list.items = list.items[:max]
	}
	list.expiresAt = s.now().Add(ttl)
	s.lists[key] = list
	return nil
}

func (s *MemoryStore) RecentTurns(_ context.Context, userID, sessionID string, n int) ([]domain.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.lists[conversationKey(userID, sessionID)]
	if !ok || s.now().After(list.expiresAt) {
		return nil, nil
	}
	items := list.items
	if len(items) > n {
		items = items[:n]
	}
	turns := make([]domain.ConversationTurn, 0, len(items))
	for _, item := range items {
		var t domain.ConversationTurn
		if err := json.Unmarshal(item, &t); err != nil {
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// Sweep removes expired records.
func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, rec := range s.kv {
		if now.After(rec.expiresAt) {
			delete(s.kv, key)
			removed++
		}
	}
	for key, list := range s.lists {
		if now.After(list.expiresAt) {
			delete(s.lists, key)
			removed++
		}
	}
	return removed, nil
}
