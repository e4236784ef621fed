package repository

import (
	"context"
	"database/sql"
	"time"

	"thermohub/internal/models"

	"github.com/google/uuid"
)

// RecordSQLite runs the per-handle SQL for one daily log file. The DailyStore
// owns handle rotation; this type only knows the readings table.
type RecordSQLite struct {
	db *sql.DB
}

func NewRecordSQLite(db *sql.DB) *RecordSQLite { return &RecordSQLite{db: db} }

// SQLite TIMESTAMP format "YYYY-MM-DD HH:MM:SS"
const sqliteTimeLayout = "2006-01-02 15:04:05"

// Append inserts a new log record. If ID or Timestamp are empty, they're set.
func (r *RecordSQLite) Append(ctx context.Context, rec models.LogRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	} else {
		rec.Timestamp = rec.Timestamp.UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO readings (id, ts, kind, temperature, action, setpoint, outside_temp, location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Timestamp.Format(sqliteTimeLayout),
		rec.Kind,
		rec.TemperatureC,
		nullableAction(rec.Action),
		rec.SetpointC,
		rec.OutsideTempC,
		nullableString(rec.Location),
	)

	return err
}

// ListAsc returns every record in this store ordered by timestamp ascending.
func (r *RecordSQLite) ListAsc(ctx context.Context) ([]models.LogRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ts, kind, temperature, action, setpoint, outside_temp, location
		FROM readings ORDER BY ts ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.LogRecord, 0, 64)
	for rows.Next() {
		var (
			rec      models.LogRecord
			action   sql.NullString
			location sql.NullString
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Timestamp,
			&rec.Kind,
			&rec.TemperatureC,
			&action,
			&rec.SetpointC,
			&rec.OutsideTempC,
			&location,
		); err != nil {
			return nil, err
		}
		rec.Timestamp = rec.Timestamp.UTC()
		if action.Valid {
			rec.Action = models.HeaterAction(action.String)
		}
		if location.Valid {
			rec.Location = location.String
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// nullableAction maps the zero action to NULL so STATUS rows don't carry
// an empty-string action column.
func nullableAction(a models.HeaterAction) *string {
	if a == "" {
		return nil
	}
	s := string(a)
	return &s
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
