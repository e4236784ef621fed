package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"thermohub/internal/models"
)

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func TestDecodeSensorReading(t *testing.T) {
	t.Parallel()

	r, err := DecodeSensorReading([]byte(`{"temperature": 21.37}`), testNow)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.TemperatureC != 21.37 {
		t.Fatalf("expected 21.37, got %v", r.TemperatureC)
	}
	// The wire payload has no timestamp; receipt time is stamped on.
	if !r.Timestamp.Equal(testNow) {
		t.Fatalf("expected stamp %v, got %v", testNow, r.Timestamp)
	}
}

func TestDecodeSensorReading_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := DecodeSensorReading([]byte(`{"temperature": "hot"}`), testNow); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
	if _, err := DecodeSensorReading([]byte(`not json`), testNow); err == nil {
		t.Fatalf("expected error for non-JSON payload")
	}
}

func TestDecodeControllerStatus(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"location":"London","current_setpoint":19.0,"last_outside_temp":4.5,"timestamp":1787313600.5}`)
	s, err := DecodeControllerStatus(payload, testNow)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Location != "London" || s.SetpointC != 19.0 {
		t.Fatalf("wrong fields: %+v", s)
	}
	if s.OutsideTempC == nil || *s.OutsideTempC != 4.5 {
		t.Fatalf("expected outside temp 4.5, got %v", s.OutsideTempC)
	}
	want := time.Unix(1787313600, 500000000).UTC()
	if !s.Timestamp.Equal(want) {
		t.Fatalf("expected wire timestamp %v, got %v", want, s.Timestamp)
	}
}

func TestDecodeControllerStatus_NullOutsideTemp(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"location":"London","current_setpoint":20.0,"last_outside_temp":null,"timestamp":0}`)
	s, err := DecodeControllerStatus(payload, testNow)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.OutsideTempC != nil {
		t.Fatalf("expected nil outside temp, got %v", *s.OutsideTempC)
	}
	// Zero wire timestamp falls back to receipt time.
	if !s.Timestamp.Equal(testNow) {
		t.Fatalf("expected fallback stamp %v, got %v", testNow, s.Timestamp)
	}
}

func TestEncodeCommand(t *testing.T) {
	t.Parallel()

	payload, err := EncodeCommand(Command{Command: CommandUpdateLocation, Location: "Oslo"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if got["command"] != "UPDATE_LOCATION" || got["location"] != "Oslo" {
		t.Fatalf("wrong wire shape: %s", payload)
	}
}

func TestFakeClient_InjectsIntoRegisteredChannels(t *testing.T) {
	t.Parallel()

	f := NewFakeClient()
	sensorCh := make(chan models.SensorReading, 1)
	statusCh := make(chan models.ControllerStatus, 1)
	if err := f.SubscribeFeeds(sensorCh, statusCh); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	f.InjectReading(models.SensorReading{Timestamp: testNow, TemperatureC: 18.0})
	f.InjectStatus(models.ControllerStatus{Timestamp: testNow, Location: "London", SetpointC: 20.0})

	select {
	case r := <-sensorCh:
		if r.TemperatureC != 18.0 {
			t.Fatalf("wrong reading: %+v", r)
		}
	default:
		t.Fatalf("reading not delivered")
	}
	select {
	case s := <-statusCh:
		if s.Location != "London" {
			t.Fatalf("wrong status: %+v", s)
		}
	default:
		t.Fatalf("status not delivered")
	}
}
