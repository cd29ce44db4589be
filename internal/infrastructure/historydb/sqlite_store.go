// Package historydb records completed turns in a local SQLite database.
package historydb

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/omnichat/omnichat/internal/domain"
	"github.com/omnichat/omnichat/internal/pkg/filesystem"
	"github.com/omnichat/omnichat/internal/ports"
)

// SQLiteStore persists turn records in ~/.omnichat/history/history.db.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the database. path may be empty for the
// default location. Open failures degrade to a disabled store rather than
// aborting the chat.
func NewSQLiteStore(path string) *SQLiteStore {
	if path == "" {
		path = filepath.Join(filesystem.UserHomeDir(), ".omnichat", "history", "history.db")
	}
	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteStore{path: path}
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		return &SQLiteStore{path: path}
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		timestamp TEXT,
		provider TEXT,
		model TEXT,
		prompt TEXT,
		reply TEXT,
		latency_ms INTEGER,
		failovers INTEGER
	);`)
	return err
}

// Save inserts a new turn record.
func (s *SQLiteStore) Save(record domain.TurnRecord) error {
	if s.db == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO turns
		(session_id, timestamp, provider, model, prompt, reply, latency_ms, failovers)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.SessionID,
		record.Timestamp.Format(time.RFC3339),
		record.Provider,
		record.Model,
		record.Prompt,
		record.Reply,
		record.LatencyMS,
		record.Failovers,
	)
	return err
}

// Records returns turn records, newest first. limit <= 0 means all; search
// matches prompt or reply substrings.
func (s *SQLiteStore) Records(limit int, search string) ([]domain.TurnRecord, error) {
	if s.db == nil {
		return nil, nil
	}
	builder := strings.Builder{}
	builder.WriteString("SELECT session_id, timestamp, provider, model, prompt, reply, latency_ms, failovers FROM turns")
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE prompt LIKE ? OR reply LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	builder.WriteString(" ORDER BY datetime(timestamp) DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.TurnRecord
	for rows.Next() {
		var rec domain.TurnRecord
		var ts string
		if err := rows.Scan(&rec.SessionID, &ts, &rec.Provider, &rec.Model, &rec.Prompt, &rec.Reply, &rec.LatencyMS, &rec.Failovers); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all turn records.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.Exec("DELETE FROM turns")
	return err
}

// ExportJSON writes the turns table to a jsonl file.
func (s *SQLiteStore) ExportJSON(dest string) error {
	records, err := s.Records(0, "")
	if err != nil {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := file.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
