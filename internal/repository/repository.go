package repository

import (
	"context"

	"thermohub/internal/models"
)

// EventStore is the append-only daily log the merger persists into and the
// dashboard reads its chart history from.
type EventStore interface {
	Append(ctx context.Context, rec models.LogRecord) error
	QueryToday(ctx context.Context) ([]models.LogRecord, error)
	Close() error
}

type Repository struct {
	Events EventStore
}

func NewRepository(dir string) *Repository {
	return &Repository{
		Events: NewDailyStore(dir),
	}
}
