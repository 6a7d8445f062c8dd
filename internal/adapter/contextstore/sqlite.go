package contextstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"krishi-ai/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS turns (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	list_key   TEXT NOT NULL,
	value      TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_turns_list ON turns(list_key, id);
`

// SQLiteStore implements domain.ContextStore on a local sqlite database.
// Expiry is lazy on read plus a periodic Sweep driven by the scheduler.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLiteStore opens (and creates if needed) the database at path.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, domain.WrapOp("NewSQLiteStore", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, domain.WrapOp("NewSQLiteStore: schema", err)
	}
	return &SQLiteStore{db: db, logger: logger, now: time.Now}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) getKV(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM kv WHERE key = ?`, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, domain.NewDomainError("SQLiteStore.get", domain.ErrStoreUnavailable, err.Error())
	}
	if s.now().Unix() >= expiresAt {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

func (s *SQLiteStore) setKV(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, string(value), s.now().Add(ttl).Unix())
	if err != nil {
		return domain.NewDomainError("SQLiteStore.set", domain.ErrStoreUnavailable, err.Error())
	}
	return nil
}

func (s *SQLiteStore) LoadContext(ctx context.Context, userID string) (*domain.UserContext, error) {
	data, ok, err := s.getKV(ctx, userContextKey(userID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return domain.NewUserContext(), nil
	}
	var uc domain.UserContext
	if err := json.Unmarshal(data, &uc); err != nil {
		return nil, domain.NewDomainError("SQLiteStore.LoadContext", domain.ErrCorruptRecord, err.Error())
	}
	return &uc, nil
}

func (s *SQLiteStore) SaveContext(ctx context.Context, userID string, uc *domain.UserContext, ttl time.Duration) error {
	data, err := json.Marshal(uc)
	if err != nil {
		return domain.NewDomainError("SQLiteStore.SaveContext", domain.ErrInvalidInput, err.Error())
	}
	return s.setKV(ctx, userContextKey(userID), data, ttl)
}

func (s *SQLiteStore) LoadAgentMemory(ctx context.Context, userID string) (map[string]any, error) {
	data, ok, err := s.getKV(ctx, agentMemoryKey(userID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]any{}, nil
	}
	var mem map[string]any
	if err := json.Unmarshal(data, &mem); err != nil {
		return nil, domain.NewDomainError("SQLiteStore.LoadAgentMemory", domain.ErrCorruptRecord, err.Error())
	}
	return mem, nil
}

func (s *SQLiteStore) SaveAgentMemory(ctx context.Context, userID string, mem map[string]any, ttl time.Duration) error {
	data, err := json.Marshal(mem)
	if err != nil {
		return domain.NewDomainError("SQLiteStore.SaveAgentMemory", domain.ErrInvalidInput, err.Error())
	}
	return s.setKV(ctx, agentMemoryKey(userID), data, ttl)
}

// AppendTurn inserts the turn, trims the list to the newest max rows, and
// slides the whole list's expiry forward.
func (s *SQLiteStore) AppendTurn(ctx context.Context, userID, sessionID string, turn domain.ConversationTurn, max int, ttl time.Duration) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return domain.NewDomainError("SQLiteStore.AppendTurn", domain.ErrInvalidInput, err.Error())
	}
	key := conversationKey(userID, sessionID)
	expiresAt := s.now().Add(ttl).Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewDomainError("SQLiteStore.AppendTurn", domain.ErrStoreUnavailable, err.Error())
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO turns (list_key, value, expires_at) VALUES (?, ?, ?)`,
		key, string(data), expiresAt); err != nil {
		return domain.NewDomainError("SQLiteStore.AppendTurn", domain.ErrStoreUnavailable, err.Error())
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM turns WHERE list_key = ? AND id NOT IN
		   (SELECT id FROM turns WHERE list_key = ? ORDER BY id DESC LIMIT ?)`,
		key, key, max); err != nil {
		return domain.NewDomainError("SQLiteStore.AppendTurn", domain.ErrStoreUnavailable, err.Error())
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE turns SET expires_at = ? WHERE list_key = ?`, expiresAt, key); err != nil {
		return domain.NewDomainError("SQLiteStore.AppendTurn", domain.ErrStoreUnavailable, err.Error())
	}
	if err := tx.Commit(); err != nil {
		return domain.NewDomainError("SQLiteStore.AppendTurn", domain.ErrStoreUnavailable, err.Error())
	}
	return nil
}

func (s *SQLiteStore) RecentTurns(ctx context.Context, userID, sessionID string, n int) ([]domain.ConversationTurn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT value FROM turns WHERE list_key = ? AND expires_at > ? ORDER BY id DESC LIMIT ?`,
		conversationKey(userID, sessionID), s.now().Unix(), n)
	if err != nil {
		return nil, domain.NewDomainError("SQLiteStore.RecentTurns", domain.ErrStoreUnavailable, err.Error())
	}
	defer rows.Close()

	var turns []domain.ConversationTurn
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, domain.NewDomainError("SQLiteStore.RecentTurns", domain.ErrStoreUnavailable, err.Error())
		}
		var t domain.ConversationTurn
		if err := json.Unmarshal([]byte(value), &t); err != nil {
			s.logger.Warn("skipping corrupt turn record", "user_id", userID, "error", err)
			continue
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Sweep removes expired rows from both tables.
func (s *SQLiteStore) Sweep(ctx context.Context) (int, error) {
	now := s.now().Unix()
	removed := 0

	res, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, domain.NewDomainError("SQLiteStore.Sweep", domain.ErrStoreUnavailable, err.Error())
	}
	if n, err := res.RowsAffected(); err == nil {
		removed += int(n)
	}

	res, err = s.db.ExecContext(ctx, `DELETE FROM turns WHERE expires_at <= ?`, now)
	if err != nil {
		return removed, domain.NewDomainError("SQLiteStore.Sweep", domain.ErrStoreUnavailable, err.Error())
	}
	if n, err := res.RowsAffected(); err == nil {
		removed += int(n)
	}
	return removed, nil
}
