package models

import "time"

// SensorReading is one indoor temperature sample from the sensor feed.
// The wire payload carries no timestamp; the hub stamps receipt time in UTC.
type SensorReading struct {
	Timestamp    time.Time `json:"timestamp"`
	TemperatureC float64   `json:"temperature_c"` // °C
}

// ControllerStatus is the controller's last published state: the weather
// location it tracks, the setpoint derived from it, and the outside
// temperature it last fetched (nil until the first successful fetch).
type ControllerStatus struct {
	Timestamp    time.Time `json:"timestamp"`
	Location     string    `json:"location"`
	SetpointC    float64   `json:"setpoint_c"`               // °C
	OutsideTempC *float64  `json:"outside_temp_c,omitempty"` // °C
}
