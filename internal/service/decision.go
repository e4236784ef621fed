package service

import "thermohub/internal/models"

// Decide maps the latest reading and controller status to a heating action.
// Either input missing means the answer is not knowable yet.
//
// The comparison is strict: a reading exactly at the setpoint keeps the
// heater off, so the boundary never short-cycles the heater.
func Decide(r *models.SensorReading, s *models.ControllerStatus) models.HeaterAction {
	if r == nil || s == nil {
		return models.HeaterUnknown
	}
	if r.TemperatureC < s.SetpointC {
		return models.HeaterOn
	}
	return models.HeaterOff
}
