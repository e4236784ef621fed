package service

import (
	"context"

	"thermohub/internal/logger"
	"thermohub/internal/models"
	"thermohub/internal/mqtt"
	"thermohub/internal/repository"
)

// Monitoring exposes the merger's current view for the initial page render.
type Monitoring interface {
	Snapshot() Snapshot
}

// History exposes today's append-only log for charting.
type History interface {
	Today(ctx context.Context) ([]models.LogRecord, error)
}

// Commands accepts dashboard requests and forwards them to the controller.
type Commands interface {
	RequestLocationUpdate(location string) error
}

// Broadcast is the live fan-out hub: register/deregister viewers and publish
// domain events to all of them without blocking.
type Broadcast interface {
	Subscribe() *Subscriber
	Unsubscribe(id string)
	Publish(ev models.DomainEvent)
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Monitoring
	History
	Commands
	Broadcast

	// Merger is exposed concretely: main owns its Run loop and wires its
	// feed channels into the transport.
	Merger *StreamMerger
}

// NewService wires the repository and transport into concrete services.
func NewService(repos *repository.Repository, transport mqtt.Client, log *logger.Logger, fanoutBuffer int) *Service {
	fanout := NewLiveFanout(fanoutBuffer)
	merger := NewStreamMerger(repos.Events, fanout, log)

	return &Service{
		Monitoring: merger,
		History:    NewHistoryService(repos.Events),
		Commands:   NewCommandService(transport, log),
		Broadcast:  fanout,
		Merger:     merger,
	}
}
