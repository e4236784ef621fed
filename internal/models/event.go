package models

// DomainEvent is the unified notification the hub emits after merging an
// inbound transport event. Exactly two variants exist; consumers switch on
// the concrete type.
type DomainEvent interface {
	isDomainEvent()
}

// SensorUpdate is emitted when a sensor reading arrives, together with the
// action decided against the controller status held at that moment.
type SensorUpdate struct {
	Reading SensorReading
	Action  HeaterAction
	Stale   bool // reading was older than the latest; displayed values did not move
}

// ControllerStatusUpdate is emitted when the controller publishes new state.
type ControllerStatusUpdate struct {
	Status ControllerStatus
}

func (SensorUpdate) isDomainEvent()           {}
func (ControllerStatusUpdate) isDomainEvent() {}
