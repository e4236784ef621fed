package models

import "time"

// HeaterAction is the derived heating decision.
type HeaterAction string

const (
	HeaterOn      HeaterAction = "HEATER_ON"
	HeaterOff     HeaterAction = "HEATER_OFF"
	HeaterUnknown HeaterAction = "UNKNOWN"
)

// Record kinds stored in the daily log.
const (
	KindReading = "READING"
	KindStatus  = "STATUS"
)

// LogRecord is a single append-only row in the daily log.
//
// A READING row carries the sensor reading, the action decided for it, and a
// denormalized snapshot of the controller status active at merge time.
// A STATUS row carries only the controller fields.
type LogRecord struct {
	ID           string       `json:"id"`
	Timestamp    time.Time    `json:"timestamp"`
	Kind         string       `json:"kind"` // READING | STATUS
	TemperatureC *float64     `json:"temperature_c,omitempty"`
	Action       HeaterAction `json:"action,omitempty"`
	SetpointC    *float64     `json:"setpoint_c,omitempty"`
	OutsideTempC *float64     `json:"outside_temp_c,omitempty"`
	Location     string       `json:"location,omitempty"`
}
