package mqtt

import (
	"sync"

	"thermohub/internal/models"
)

// FakeClient records published commands and lets tests inject feed events.
type FakeClient struct {
	mu sync.Mutex

	// Commands contains all commands that were published.
	Commands []Command

	// PublishError, if set, will be returned by PublishCommand.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	sensorCh chan<- models.SensorReading
	statusCh chan<- models.ControllerStatus
}

func NewFakeClient() *FakeClient {
	return &FakeClient{}
}

// SubscribeFeeds records the channels for later injection.
func (f *FakeClient) SubscribeFeeds(sensorCh chan<- models.SensorReading, statusCh chan<- models.ControllerStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sensorCh = sensorCh
	f.statusCh = statusCh
	return nil
}

// PublishCommand records the command.
func (f *FakeClient) PublishCommand(cmd Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Commands = append(f.Commands, cmd)
	return nil
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// InjectReading delivers a reading as if it arrived on the sensor topic.
func (f *FakeClient) InjectReading(r models.SensorReading) {
	f.mu.Lock()
	ch := f.sensorCh
	f.mu.Unlock()
	if ch != nil {
		ch <- r
	}
}

// InjectStatus delivers a status as if it arrived on the status topic.
func (f *FakeClient) InjectStatus(s models.ControllerStatus) {
	f.mu.Lock()
	ch := f.statusCh
	f.mu.Unlock()
	if ch != nil {
		ch <- s
	}
}

// PublishedCommands returns a copy of the recorded commands.
func (f *FakeClient) PublishedCommands() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Command, len(f.Commands))
	copy(out, f.Commands)
	return out
}
