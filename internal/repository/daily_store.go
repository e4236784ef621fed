package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"thermohub/internal/models"
	"thermohub/internal/repository/db"
)

const dayLayout = "2006-01-02"

// DailyStore is the append-only event store: one SQLite file per UTC calendar
// day, at most one open handle at a time. The handle for a new day is opened
// lazily on the first write (or read) after midnight UTC; the previous day's
// handle is closed then.
type DailyStore struct {
	mu   sync.Mutex
	dir  string
	open func(path string) (*sql.DB, error) // db.Open, injectable in tests

	day  string // UTC day the open handle belongs to
	conn *sql.DB
	repo *RecordSQLite
}

func NewDailyStore(dir string) *DailyStore {
	return &DailyStore{dir: dir, open: db.Open}
}

// Append writes one record to the store for the record's UTC date. Each
// append is a single INSERT, atomic under SQLite; a burst or crash never
// leaves a half-written row.
func (s *DailyStore) Append(ctx context.Context, rec models.LogRecord) error {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	repo, err := s.storeForLocked(ts.UTC())
	if err != nil {
		return err
	}
	return repo.Append(ctx, rec)
}

// QueryToday returns today's records ordered by timestamp ascending. A day
// with no writes yet yields an empty slice.
func (s *DailyStore) QueryToday(ctx context.Context) ([]models.LogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	repo, err := s.storeForLocked(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return repo.ListAsc(ctx)
}

// Close releases the open handle, if any.
func (s *DailyStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.repo = nil
	s.day = ""
	return err
}

// storeForLocked resolves the handle for the given UTC instant, rotating when
// the date differs from the open handle's. Caller must hold s.mu.
func (s *DailyStore) storeForLocked(ts time.Time) (*RecordSQLite, error) {
	day := ts.Format(dayLayout)
	if s.repo != nil && s.day == day {
		return s.repo, nil
	}

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			return nil, fmt.Errorf("close store for %s: %w", s.day, err)
		}
		s.conn = nil
		s.repo = nil
	}

	conn, err := s.open(s.pathFor(day))
	if err != nil {
		return nil, fmt.Errorf("open store for %s: %w", day, err)
	}
	s.conn = conn
	s.repo = NewRecordSQLite(conn)
	s.day = day
	return s.repo, nil
}

func (s *DailyStore) pathFor(day string) string {
	return filepath.Join(s.dir, "temperature_log_"+day+".db")
}
