package service

import (
	"fmt"
	"strings"

	"thermohub/internal/logger"
	"thermohub/internal/mqtt"
)

// maxLocationLen bounds the weather location string; anything longer is not
// a plausible place name.
const maxLocationLen = 64

// ValidationError reports a rejected command input. The command is never
// emitted when validation fails.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CommandService forwards dashboard requests to the controller as command
// events. It returns as soon as the command is handed to the transport; the
// effect arrives later as a controller status event on the live feed.
type CommandService struct {
	transport mqtt.Client
	log       *logger.Logger
}

func NewCommandService(transport mqtt.Client, log *logger.Logger) *CommandService {
	return &CommandService{transport: transport, log: log}
}

// RequestLocationUpdate validates the location and publishes an
// UPDATE_LOCATION command addressed to the controller.
func (s *CommandService) RequestLocationUpdate(location string) error {
	loc := strings.TrimSpace(location)
	if loc == "" {
		return &ValidationError{Field: "location", Reason: "must not be empty"}
	}
	if len(loc) > maxLocationLen {
		return &ValidationError{Field: "location", Reason: fmt.Sprintf("must be at most %d characters", maxLocationLen)}
	}

	cmd := mqtt.Command{Command: mqtt.CommandUpdateLocation, Location: loc}
	if err := s.transport.PublishCommand(cmd); err != nil {
		return fmt.Errorf("publish location command: %w", err)
	}

	s.log.Infow("location_command_sent", "location", loc)
	return nil
}
