package contextstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"krishi-ai/internal/domain"
)

// RedisStore implements domain.ContextStore on a Redis server. Redis
// expires keys natively, so no sweep is needed.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisStore connects to the Redis instance at url (redis:// form).
func NewRedisStore(url string, dialTimeout time.Duration, logger *slog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, domain.NewDomainError("NewRedisStore", domain.ErrInvalidInput, err.Error())
	}
	if dialTimeout > 0 {
		opts.DialTimeout = dialTimeout
	}
	return &RedisStore{client: redis.NewClient(opts), logger: logger}, nil
}

// Ping verifies connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return domain.WrapOp("RedisStore.Ping", s.client.Ping(ctx).Err())
}

// Close releases the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }

func (s *RedisStore) LoadContext(ctx context.Context, userID string) (*domain.UserContext, error) {
	data, err := s.client.Get(ctx, userContextKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.NewUserContext(), nil
	}
	if err != nil {
		return nil, domain.NewDomainError("RedisStore.LoadContext", domain.ErrStoreUnavailable, err.Error())
	}
	var uc domain.UserContext
	if err := json.Unmarshal([]byte(data), &uc); err != nil {
		return nil, domain.NewDomainError("RedisStore.LoadContext", domain.ErrCorruptRecord, err.Error())
	}
	return &uc, nil
}

func (s *RedisStore) SaveContext(ctx context.Context, userID string, uc *domain.UserContext, ttl time.Duration) error {
	data, err := json.Marshal(uc)
	if err != nil {
		return domain.NewDomainError("RedisStore.SaveContext", domain.ErrInvalidInput, err.Error())
	}
	if err := s.client.SetEx(ctx, userContextKey(userID), data, ttl).Err(); err != nil {
		return domain.NewDomainError("RedisStore.SaveContext", domain.ErrStoreUnavailable, err.Error())
	}
	return nil
}

func (s *RedisStore) LoadAgentMemory(ctx context.Context, userID string) (map[string]any, error) {
	data, err := s.client.Get(ctx, agentMemoryKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, domain.NewDomainError("RedisStore.LoadAgentMemory", domain.ErrStoreUnavailable, err.Error())
	}
	var mem map[string]any
	if err := json.Unmarshal([]byte(data), &mem); err != nil {
		return nil, domain.NewDomainError("RedisStore.LoadAgentMemory", domain.ErrCorruptRecord, err.Error())
	}
	return mem, nil
}

func (s *RedisStore) SaveAgentMemory(ctx context.Context, userID string, mem map[string]any, ttl time.Duration) error {
	data, err := json.Marshal(mem)
	if err != nil {
		return domain.NewDomainError("RedisStore.SaveAgentMemory", domain.ErrInvalidInput, err.Error())
	}
	if err := s.client.SetEx(ctx, agentMemoryKey(userID), data, ttl).Err(); err != nil {
		return domain.NewDomainError("RedisStore.SaveAgentMemory", domain.ErrStoreUnavailable, err.Error())
	}
	return nil
}

// AppendTurn pushes the turn onto the rolling log, trims it to max entries,
// and refreshes the list TTL (lpush/ltrim/expire semantics).
func (s *RedisStore) AppendTurn(ctx context.Context, userID, sessionID string, turn domain.ConversationTurn, max int, ttl time.Duration) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return domain.NewDomainError("RedisStore.AppendTurn", domain.ErrInvalidInput, err.Error())
	}
	key := conversationKey(userID, sessionID)
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(max-1))
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.NewDomainError("RedisStore.AppendTurn", domain.ErrStoreUnavailable, err.Error())
	}
	return nil
}

// RecentTurns returns up to n turns, newest first. Corrupt entries are
// skipped rather than surfaced.
func (s *RedisStore) RecentTurns(ctx context.Context, userID, sessionID string, n int) ([]domain.ConversationTurn, error) {
	items, err := s.client.LRange(ctx, conversationKey(userID, sessionID), 0, int64(n-1)).Result()
	if err != nil {
		return nil, domain.NewDomainError("RedisStore.RecentTurns", domain.ErrStoreUnavailable, err.Error())
	}
	turns := make([]domain.ConversationTurn, 0, len(items))
	for _, item := range items {
		var t domain.ConversationTurn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			s.logger.Warn("skipping corrupt turn record", "user_id", userID, "error", err)
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}
