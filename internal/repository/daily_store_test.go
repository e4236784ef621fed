package repository

import (
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"thermohub/internal/models"
)

// storeOpener hands out sqlmock connections in order and records the paths
// the DailyStore asked for.
type storeOpener struct {
	t     *testing.T
	paths []string
	conns []*sql.DB
	mocks []sqlmock.Sqlmock
	next  int
	err   error
}

func newStoreOpener(t *testing.T, n int) *storeOpener {
	t.Helper()
	o := &storeOpener{t: t}
	for i := 0; i < n; i++ {
		conn, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock new: %v", err)
		}
		o.conns = append(o.conns, conn)
		o.mocks = append(o.mocks, mock)
	}
	return o
}

func (o *storeOpener) open(path string) (*sql.DB, error) {
	if o.err != nil {
		return nil, o.err
	}
	if o.next >= len(o.conns) {
		o.t.Fatalf("unexpected open of %q", path)
	}
	o.paths = append(o.paths, path)
	conn := o.conns[o.next]
	o.next++
	return conn, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func tempRecord(ts time.Time) models.LogRecord {
	temp := 19.0
	return models.LogRecord{
		ID:           "rec",
		Timestamp:    ts,
		Kind:         models.KindReading,
		TemperatureC: &temp,
		Action:       models.HeaterUnknown,
	}
}

func TestDailyStore_LazyOpenAndReuse(t *testing.T) {
	opener := newStoreOpener(t, 1)
	s := NewDailyStore("database")
	s.open = opener.open

	opener.mocks[0].ExpectExec(regexp.QuoteMeta("INSERT INTO readings")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	opener.mocks[0].ExpectExec(regexp.QuoteMeta("INSERT INTO readings")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ts := day(2026, 8, 28)
	if err := s.Append(ctx(t), tempRecord(ts)); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := s.Append(ctx(t), tempRecord(ts.Add(time.Minute))); err != nil {
		t.Fatalf("second append: %v", err)
	}

	if len(opener.paths) != 1 {
		t.Fatalf("same day must reuse the open handle; opened %v", opener.paths)
	}
	want := filepath.Join("database", "temperature_log_2026-08-28.db")
	if opener.paths[0] != want {
		t.Fatalf("expected path %q, got %q", want, opener.paths[0])
	}
}

func TestDailyStore_RotatesOnDateChange(t *testing.T) {
	opener := newStoreOpener(t, 2)
	s := NewDailyStore("database")
	s.open = opener.open

	opener.mocks[0].ExpectExec(regexp.QuoteMeta("INSERT INTO readings")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	opener.mocks[0].ExpectClose()
	opener.mocks[1].ExpectExec(regexp.QuoteMeta("INSERT INTO readings")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Append(ctx(t), tempRecord(day(2026, 8, 28))); err != nil {
		t.Fatalf("day one append: %v", err)
	}
	if err := s.Append(ctx(t), tempRecord(day(2026, 8, 29))); err != nil {
		t.Fatalf("day two append: %v", err)
	}

	if len(opener.paths) != 2 {
		t.Fatalf("expected one store per day, opened %v", opener.paths)
	}
	if opener.paths[1] != filepath.Join("database", "temperature_log_2026-08-29.db") {
		t.Fatalf("wrong rollover path %q", opener.paths[1])
	}
	if err := opener.mocks[0].ExpectationsWereMet(); err != nil {
		t.Fatalf("old handle not closed on rotation: %v", err)
	}
}

func TestDailyStore_QueryToday_EmptyStore(t *testing.T) {
	opener := newStoreOpener(t, 1)
	s := NewDailyStore("database")
	s.open = opener.open

	rows := sqlmock.NewRows([]string{"id", "ts", "kind", "temperature", "action", "setpoint", "outside_temp", "location"})
	opener.mocks[0].ExpectQuery(regexp.QuoteMeta("SELECT id, ts, kind")).WillReturnRows(rows)

	recs, err := s.QueryToday(ctx(t))
	if err != nil {
		t.Fatalf("QueryToday: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty slice for fresh day, got %d", len(recs))
	}
	if recs == nil {
		t.Fatalf("expected non-nil empty slice")
	}
}

func TestDailyStore_OpenFailurePropagates(t *testing.T) {
	opener := newStoreOpener(t, 0)
	opener.err = errors.New("permission denied")
	s := NewDailyStore("database")
	s.open = opener.open

	if err := s.Append(ctx(t), tempRecord(day(2026, 8, 28))); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestDailyStore_CloseReleasesHandle(t *testing.T) {
	opener := newStoreOpener(t, 1)
	s := NewDailyStore("database")
	s.open = opener.open

	opener.mocks[0].ExpectExec(regexp.QuoteMeta("INSERT INTO readings")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	opener.mocks[0].ExpectClose()

	if err := s.Append(ctx(t), tempRecord(day(2026, 8, 28))); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close must be a no-op, got %v", err)
	}
	if err := opener.mocks[0].ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
