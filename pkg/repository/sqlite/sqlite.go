package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/noticekit/pkg/domain/interfaces"
	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/domain/types"

	_ "modernc.org/sqlite"
)

//go:embed migrations.sql
var migrations string

// SQLite stores one row per (user, notice key).
type SQLite struct {
	db          *sql.DB
	now         func() time.Time
	busyTimeout time.Duration
}

var _ interfaces.DismissalStore = &SQLite{}

type Option func(*SQLite)

// DefaultBusyTimeout is how long a writer waits on a locked database.
const DefaultBusyTimeout = 5 * time.Second

func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLite) {
		s.busyTimeout = d
	}
}

// New opens (and creates when missing) the database at path. Use ":memory:"
// for a throwaway database.
func New(ctx context.Context, path string, opts ...Option) (*SQLite, error) {
	if path == "" {
		return nil, goerr.New("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, goerr.Wrap(err, "failed to create sqlite directory", goerr.V("path", path))
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite", goerr.V("path", path))
	}
	// SQLite prefers a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLite{db: db, now: time.Now, busyTimeout: DefaultBusyTimeout}
	for _, opt := range opts {
		opt(s)
	}
	if s.busyTimeout < 0 {
		_ = db.Close()
		return nil, goerr.New("busy timeout must not be negative", goerr.V("busy_timeout", s.busyTimeout))
	}

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeout.Milliseconds()),
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, goerr.Wrap(err, "failed to configure sqlite",
				goerr.V("path", path),
				goerr.V("pragma", pragma))
		}
	}

	if _, err := db.ExecContext(ctx, migrations); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to migrate sqlite", goerr.V("path", path))
	}

	return s, nil
}

func (s *SQLite) GetDismissal(ctx context.Context, userID types.UserID, key string) (time.Time, bool, error) {
	var ts int64
	err := s.db.QueryRowContext(ctx,
		`SELECT dismissed_at FROM dismissed_notices WHERE user_id = ? AND notice_key = ?`,
		userID.String(), key,
	).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, goerr.Wrap(err, "failed to get dismissal", goerr.V("user_id", userID), goerr.V("key", key))
	}
	return time.Unix(ts, 0), true, nil
}

func (s *SQLite) GetDismissals(ctx context.Context, userID types.UserID) (model.DismissalRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT notice_key, dismissed_at FROM dismissed_notices WHERE user_id = ?`,
		userID.String(),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query dismissals", goerr.V("user_id", userID))
	}
	defer func() { _ = rows.Close() }()

	record := model.DismissalRecord{}
	for rows.Next() {
		var key string
		var ts int64
		if err := rows.Scan(&key, &ts); err != nil {
			return nil, goerr.Wrap(err, "failed to scan dismissal", goerr.V("user_id", userID))
		}
		record[key] = ts
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate dismissals", goerr.V("user_id", userID))
	}
	return record, nil
}

func (s *SQLite) SetDismissed(ctx context.Context, userID types.UserID, key string) error {
	if userID == "" {
		return goerr.New("user ID is required")
	}
	if key == "" {
		return goerr.New("notice key is required", goerr.V("user_id", userID))
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dismissed_notices(user_id, notice_key, dismissed_at) VALUES(?,?,?)
		 ON CONFLICT(user_id, notice_key) DO UPDATE SET dismissed_at = excluded.dismissed_at`,
		userID.String(), key, s.now().Unix(),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to save dismissal", goerr.V("user_id", userID), goerr.V("key", key))
	}
	return nil
}

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
