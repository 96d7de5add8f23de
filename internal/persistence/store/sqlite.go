package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"shudao.quest/internal/protocol"
)

// DefaultTTL matches the original key-value contract: saves expire after
// roughly a year of inactivity.
const DefaultTTL = 365 * 24 * time.Hour

// LeaderboardLimit bounds every leaderboard read.
const LeaderboardLimit = 100

// Store is the sqlite-backed save and leaderboard backend. One process owns
// the file; calls are serialized through a single connection.
type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	ttl time.Duration

	now func() time.Time
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, ttl: DefaultTTL, now: time.Now}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS players (
			player_id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS leaderboard (
			player_id TEXT PRIMARY KEY,
			player_name TEXT NOT NULL,
			exp INTEGER NOT NULL,
			realm INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboard_exp ON leaderboard(exp DESC);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SavePlayer upserts a save blob under the player id and refreshes its TTL.
// The blob must be valid JSON; the store does not inspect it further.
func (s *Store) SavePlayer(playerID string, data []byte) error {
	if playerID == "" {
		return fmt.Errorf("empty player id")
	}
	if !json.Valid(data) {
		return fmt.Errorf("player data is not valid JSON")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()
	expires := s.now().Add(s.ttl).Unix()
	_, err := s.db.Exec(
		`INSERT INTO players (player_id, data, updated_at, expires_at) VALUES (?,?,?,?)
		 ON CONFLICT(player_id) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at, expires_at=excluded.expires_at`,
		playerID, string(data), now, expires,
	)
	return err
}

// LoadPlayer fetches a save blob. An expired row reads as absent and is
// purged on the way out.
func (s *Store) LoadPlayer(playerID string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		data    string
		expires int64
	)
	row := s.db.QueryRow(`SELECT data, expires_at FROM players WHERE player_id=?`, playerID)
	if err := row.Scan(&data, &expires); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	if expires <= s.now().Unix() {
		_, _ = s.db.Exec(`DELETE FROM players WHERE player_id=?`, playerID)
		return nil, false, nil
	}
	return []byte(data), true, nil
}

// SubmitScore upserts a leaderboard row by player id.
func (s *Store) SubmitScore(sub protocol.LeaderboardSubmit) error {
	if sub.PlayerID == "" {
		return fmt.Errorf("empty player id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO leaderboard (player_id, player_name, exp, realm, updated_at) VALUES (?,?,?,?,?)
		 ON CONFLICT(player_id) DO UPDATE SET player_name=excluded.player_name, exp=excluded.exp, realm=excluded.realm, updated_at=excluded.updated_at`,
		sub.PlayerID, sub.PlayerName, sub.Exp, sub.Realm, s.now().Unix(),
	)
	return err
}

// Leaderboard returns the top rows ordered by exp descending, capped at
// LeaderboardLimit.
func (s *Store) Leaderboard() ([]protocol.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT player_id, player_name, exp, realm, updated_at FROM leaderboard ORDER BY exp DESC, player_id ASC LIMIT ?`,
		LeaderboardLimit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []protocol.LeaderboardEntry
	for rows.Next() {
		var e protocol.LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.PlayerName, &e.Exp, &e.Realm, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PurgeExpired removes saves past their TTL. Returns the number of rows
// deleted.
func (s *Store) PurgeExpired() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM players WHERE expires_at <= ?`, s.now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ForEachPlayer streams every live save to fn, for backup export.
func (s *Store) ForEachPlayer(fn func(playerID string, data []byte) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT player_id, data FROM players WHERE expires_at > ?`, s.now().Unix())
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   string
			data string
		)
		if err := rows.Scan(&id, &data); err != nil {
			return err
		}
		if err := fn(id, []byte(data)); err != nil {
			return err
		}
	}
	return rows.Err()
}
