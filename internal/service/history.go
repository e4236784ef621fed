package service

import (
	"context"

	"thermohub/internal/models"
	"thermohub/internal/repository"
)

// HistoryService serves the initial dashboard render: today's records in
// timestamp order, for charting.
type HistoryService struct {
	events repository.EventStore
}

func NewHistoryService(events repository.EventStore) *HistoryService {
	return &HistoryService{events: events}
}

func (s *HistoryService) Today(ctx context.Context) ([]models.LogRecord, error) {
	return s.events.QueryToday(ctx)
}
