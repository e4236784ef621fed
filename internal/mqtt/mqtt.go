// Package mqtt adapts the broker transport: it decodes the sensor and
// controller feeds into domain types and publishes controller commands.
package mqtt

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"thermohub/internal/models"
)

// Default topics, matching the wire contract of the sensor and controller.
const (
	DefaultSensorTopic  = "home/1/temperature"
	DefaultStatusTopic  = "smart_thermostat/controller/status_feed"
	DefaultCommandTopic = "smart_thermostat/controller/command"
)

// Topics holds the channel names the hub consumes and publishes on.
type Topics struct {
	Sensor  string
	Status  string
	Command string
}

// DefaultTopics returns the standard topic set.
func DefaultTopics() Topics {
	return Topics{
		Sensor:  DefaultSensorTopic,
		Status:  DefaultStatusTopic,
		Command: DefaultCommandTopic,
	}
}

// Client is the hub's view of the broker: two inbound feeds, one outbound
// command channel. Reconnect/retry is the transport's responsibility.
type Client interface {
	// SubscribeFeeds subscribes the sensor and status topics and delivers
	// decoded events to the given channels until Close.
	SubscribeFeeds(sensorCh chan<- models.SensorReading, statusCh chan<- models.ControllerStatus) error

	// PublishCommand sends a command to the controller.
	PublishCommand(cmd Command) error

	// Close disconnects from the broker.
	Close() error
}

// Command is the payload published to the controller command topic.
type Command struct {
	Command  string `json:"command"`
	Location string `json:"location"`
}

// CommandUpdateLocation asks the controller to track a new weather location.
const CommandUpdateLocation = "UPDATE_LOCATION"

// EncodeCommand creates the JSON payload for a controller command.
func EncodeCommand(cmd Command) ([]byte, error) {
	return json.Marshal(cmd)
}

// sensorPayload is the sensor's wire format. It carries no timestamp; the
// hub stamps receipt time.
type sensorPayload struct {
	Temperature float64 `json:"temperature"`
}

// statusPayload is the controller's wire format.
type statusPayload struct {
	Location        string   `json:"location"`
	CurrentSetpoint float64  `json:"current_setpoint"`
	LastOutsideTemp *float64 `json:"last_outside_temp"`
	Timestamp       float64  `json:"timestamp"` // unix seconds
}

// DecodeSensorReading parses a sensor feed payload, stamping it with now.
func DecodeSensorReading(payload []byte, now time.Time) (models.SensorReading, error) {
	var p sensorPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return models.SensorReading{}, fmt.Errorf("decode sensor payload: %w", err)
	}
	return models.SensorReading{
		Timestamp:    now.UTC(),
		TemperatureC: p.Temperature,
	}, nil
}

// DecodeControllerStatus parses a controller status payload. A missing or
// zero wire timestamp falls back to now.
func DecodeControllerStatus(payload []byte, now time.Time) (models.ControllerStatus, error) {
	var p statusPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return models.ControllerStatus{}, fmt.Errorf("decode status payload: %w", err)
	}

	ts := now.UTC()
	if p.Timestamp > 0 {
		sec, frac := math.Modf(p.Timestamp)
		ts = time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}

	return models.ControllerStatus{
		Timestamp:    ts,
		Location:     p.Location,
		SetpointC:    p.CurrentSetpoint,
		OutsideTempC: p.LastOutsideTemp,
	}, nil
}
