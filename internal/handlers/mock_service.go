package handlers

import (
	"context"

	"thermohub/internal/models"
	"thermohub/internal/service"
)

// ---- Service Mocks ----

type mockMonitoring struct {
	snap service.Snapshot
}

func (m *mockMonitoring) Snapshot() service.Snapshot { return m.snap }

type mockHistory struct {
	records []models.LogRecord
	err     error
	calls   int
}

func (m *mockHistory) Today(ctx context.Context) ([]models.LogRecord, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

type mockCommands struct {
	err          error
	lastLocation string
	calls        int
}

func (m *mockCommands) RequestLocationUpdate(location string) error {
	m.calls++
	m.lastLocation = location
	return m.err
}

// newTestService assembles a Service from mocks plus a real fan-out, which
// is cheap and lets websocket tests publish actual events.
func newTestService(mon *mockMonitoring, hist *mockHistory, cmds *mockCommands, fanout *service.LiveFanout) *service.Service {
	if fanout == nil {
		fanout = service.NewLiveFanout(0)
	}
	return &service.Service{
		Monitoring: mon,
		History:    hist,
		Commands:   cmds,
		Broadcast:  fanout,
	}
}
