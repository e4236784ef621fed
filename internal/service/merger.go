package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"thermohub/internal/logger"
	"thermohub/internal/models"
	"thermohub/internal/repository"
)

// feedBuffer absorbs short bursts from the transport callbacks while a store
// write is in flight.
const feedBuffer = 16

// Snapshot is the merger's current view: the latest reading and status plus
// the action they imply. Nil fields mean that source has not reported yet.
type Snapshot struct {
	Reading *models.SensorReading    `json:"reading"`
	Status  *models.ControllerStatus `json:"status"`
	Action  models.HeaterAction      `json:"action"`
}

// StreamMerger consumes the two independently-paced inbound feeds, keeps the
// latest value of each, persists every event, and broadcasts unified domain
// events.
//
// Ordering rule: a reading or status older than the held latest of its kind
// never replaces it (displayed values never regress), but it is still
// persisted and still broadcast.
type StreamMerger struct {
	store   repository.EventStore
	fanout  Broadcast
	log     *logger.Logger
	sensorC chan models.SensorReading
	statusC chan models.ControllerStatus

	mu            sync.Mutex
	latestReading *models.SensorReading
	latestStatus  *models.ControllerStatus
}

func NewStreamMerger(store repository.EventStore, fanout Broadcast, log *logger.Logger) *StreamMerger {
	return &StreamMerger{
		store:   store,
		fanout:  fanout,
		log:     log,
		sensorC: make(chan models.SensorReading, feedBuffer),
		statusC: make(chan models.ControllerStatus, feedBuffer),
	}
}

// SensorFeed is the inbound channel the transport delivers readings to.
func (m *StreamMerger) SensorFeed() chan<- models.SensorReading { return m.sensorC }

// StatusFeed is the inbound channel the transport delivers statuses to.
func (m *StreamMerger) StatusFeed() chan<- models.ControllerStatus { return m.statusC }

// Run consumes both feeds until ctx is canceled. Each feed gets its own
// goroutine; the handlers synchronize on the merger's mutex.
func (m *StreamMerger) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case r := <-m.sensorC:
				m.HandleReading(ctx, r)
			}
		}
	}()

	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-m.statusC:
				m.HandleStatus(ctx, s)
			}
		}
	}()

	wg.Wait()
}

// HandleReading merges one sensor reading: update the latest slot (unless
// stale), decide the heating action against the status held right now,
// persist, then broadcast. Persistence failure never suppresses the
// broadcast, and the store is never touched while the state lock is held.
func (m *StreamMerger) HandleReading(ctx context.Context, r models.SensorReading) {
	m.mu.Lock()
	stale := m.latestReading != nil && r.Timestamp.Before(m.latestReading.Timestamp)
	if !stale {
		rc := r
		m.latestReading = &rc
	}
	status := m.latestStatus
	m.mu.Unlock()

	action := Decide(&r, status)

	rec := models.LogRecord{
		ID:           uuid.NewString(),
		Timestamp:    r.Timestamp,
		Kind:         models.KindReading,
		TemperatureC: &r.TemperatureC,
		Action:       action,
	}
	if status != nil {
		rec.SetpointC = &status.SetpointC
		rec.OutsideTempC = status.OutsideTempC
		rec.Location = status.Location
	}

	if stale {
		m.log.Warnw("stale_reading", "ts", r.Timestamp, "temperature_c", r.TemperatureC)
	}
	if err := m.store.Append(ctx, rec); err != nil {
		m.log.Errorw("reading_append_failed", "err", err, "ts", r.Timestamp)
	}

	m.fanout.Publish(models.SensorUpdate{Reading: r, Action: action, Stale: stale})
}

// HandleStatus merges one controller status. It does not recompute the
// action for the previous reading; the next reading picks the new setpoint
// up, and dashboards tolerate that brief window.
func (m *StreamMerger) HandleStatus(ctx context.Context, s models.ControllerStatus) {
	m.mu.Lock()
	stale := m.latestStatus != nil && s.Timestamp.Before(m.latestStatus.Timestamp)
	if !stale {
		sc := s
		m.latestStatus = &sc
	}
	m.mu.Unlock()

	rec := models.LogRecord{
		ID:           uuid.NewString(),
		Timestamp:    s.Timestamp,
		Kind:         models.KindStatus,
		SetpointC:    &s.SetpointC,
		OutsideTempC: s.OutsideTempC,
		Location:     s.Location,
	}

	if stale {
		m.log.Warnw("stale_status", "ts", s.Timestamp, "location", s.Location)
	}
	if err := m.store.Append(ctx, rec); err != nil {
		m.log.Errorw("status_append_failed", "err", err, "ts", s.Timestamp)
	}

	m.fanout.Publish(models.ControllerStatusUpdate{Status: s})
}

// Snapshot returns the current latest values and the action they imply.
func (m *StreamMerger) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{Action: Decide(m.latestReading, m.latestStatus)}
	if m.latestReading != nil {
		rc := *m.latestReading
		snap.Reading = &rc
	}
	if m.latestStatus != nil {
		sc := *m.latestStatus
		snap.Status = &sc
	}
	return snap
}

// Seed rebuilds the latest slots from today's log, best-effort: a failure
// just means the dashboard shows N/A until fresh events arrive.
func (m *StreamMerger) Seed(ctx context.Context) {
	records, err := m.store.QueryToday(ctx)
	if err != nil {
		m.log.Warnw("seed_query_failed", "err", err)
		return
	}

	var (
		reading *models.SensorReading
		status  *models.ControllerStatus
	)
	for _, rec := range records {
		switch rec.Kind {
		case models.KindReading:
			if rec.TemperatureC != nil {
				reading = &models.SensorReading{
					Timestamp:    rec.Timestamp,
					TemperatureC: *rec.TemperatureC,
				}
			}
		case models.KindStatus:
			if rec.SetpointC != nil {
				status = &models.ControllerStatus{
					Timestamp:    rec.Timestamp,
					Location:     rec.Location,
					SetpointC:    *rec.SetpointC,
					OutsideTempC: rec.OutsideTempC,
				}
			}
		}
	}

	m.mu.Lock()
	m.latestReading = reading
	m.latestStatus = status
	m.mu.Unlock()

	if reading != nil || status != nil {
		m.log.Infow("state_seeded",
			"have_reading", reading != nil,
			"have_status", status != nil,
			"records", len(records),
		)
	}
}
