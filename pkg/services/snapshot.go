package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"spacetraveling/pkg/models"
)

// SnapshotStore keeps the last good published page of each post so it can be
// served when the CMS is unreachable.
type SnapshotStore interface {
	SavePostPage(ctx context.Context, page models.PostPageModel) error
	LoadPostPage(ctx context.Context, uid string) (models.PostPageModel, bool, error)
	Close() error
}

// SQLiteSnapshotStore implements SnapshotStore using SQLite.
type SQLiteSnapshotStore struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// NewSQLiteSnapshotStore opens (or creates) the database at dbPath. Use
// ":memory:" for a throwaway store.
func NewSQLiteSnapshotStore(dbPath string) (*SQLiteSnapshotStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// An in-memory database lives per connection.
	db.SetMaxOpenConns(1)

	store := &SQLiteSnapshotStore{db: db, now: time.Now}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteSnapshotStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS post_snapshots (
		uid TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		stored_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SavePostPage upserts the snapshot for page.Post.ID.
func (s *SQLiteSnapshotStore) SavePostPage(ctx context.Context, page models.PostPageModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	page.Stale = false
	payload, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO post_snapshots (uid, payload, stored_at) VALUES (?, ?, ?)
		 ON CONFLICT(uid) DO UPDATE SET payload = excluded.payload, stored_at = excluded.stored_at`,
		page.Post.ID, payload, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// LoadPostPage returns the stored page for uid; the bool is false when none exists.
func (s *SQLiteSnapshotStore) LoadPostPage(ctx context.Context, uid string) (models.PostPageModel, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload []byte
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM post_snapshots WHERE uid = ?", uid).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PostPageModel{}, false, nil
	}
	if err != nil {
		return models.PostPageModel{}, false, fmt.Errorf("query snapshot: %w", err)
	}

	var page models.PostPageModel
	if err := json.Unmarshal(payload, &page); err != nil {
		return models.PostPageModel{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return page, true, nil
}

// Close releases the database.
func (s *SQLiteSnapshotStore) Close() error {
	return s.db.Close()
}
