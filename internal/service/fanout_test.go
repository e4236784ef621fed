package service

import (
	"sync"
	"testing"
	"time"

	"thermohub/internal/models"
)

func sensorEvent(temp float64) models.SensorUpdate {
	return models.SensorUpdate{
		Reading: models.SensorReading{Timestamp: time.Now().UTC(), TemperatureC: temp},
		Action:  models.HeaterUnknown,
	}
}

func TestFanout_PerSubscriberFIFO(t *testing.T) {
	t.Parallel()

	f := NewLiveFanout(16)
	sub := f.Subscribe()
	defer f.Unsubscribe(sub.ID)

	for i := 0; i < 5; i++ {
		f.Publish(sensorEvent(float64(i)))
	}

	for i := 0; i < 5; i++ {
		select {
		case ev := <-sub.C:
			up := ev.(models.SensorUpdate)
			if up.Reading.TemperatureC != float64(i) {
				t.Fatalf("out of order: got %.0f at position %d", up.Reading.TemperatureC, i)
			}
		case <-time.After(time.Second):
			t.Fatalf("missing event %d", i)
		}
	}
}

func TestFanout_OverflowDropsOldest(t *testing.T) {
	t.Parallel()

	f := NewLiveFanout(2)
	sub := f.Subscribe()
	defer f.Unsubscribe(sub.ID)

	f.Publish(sensorEvent(1))
	f.Publish(sensorEvent(2))
	f.Publish(sensorEvent(3)) // buffer full: 1 is evicted

	got := []float64{}
	for i := 0; i < 2; i++ {
		ev := <-sub.C
		got = append(got, ev.(models.SensorUpdate).Reading.TemperatureC)
	}
	if got[0] != 2 || got[1] != 3 {
		t.Fatalf("expected oldest dropped, kept [2 3], got %v", got)
	}
	if len(sub.C) != 0 {
		t.Fatalf("expected empty buffer, %d left", len(sub.C))
	}
}

func TestFanout_StalledSubscriberDoesNotAffectOthers(t *testing.T) {
	t.Parallel()

	f := NewLiveFanout(1)
	stalled := f.Subscribe()
	healthy := f.Subscribe()
	defer f.Unsubscribe(stalled.ID)

	drained := make(chan models.DomainEvent, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range healthy.C {
			drained <- ev
		}
	}()

	const n = 50
	start := time.Now()
	for i := 0; i < n; i++ {
		f.Publish(sensorEvent(float64(i)))
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("publish stalled by slow subscriber: took %v", elapsed)
	}

	f.Unsubscribe(healthy.ID)
	wg.Wait()

	// The healthy subscriber was drained continuously; the stalled one kept
	// only its buffer's worth. Neither condition may affect the other.
	if len(stalled.C) != 1 {
		t.Fatalf("stalled subscriber should hold exactly its buffer, got %d", len(stalled.C))
	}
	if len(drained) == 0 {
		t.Fatalf("healthy subscriber received nothing")
	}
}

func TestFanout_NoReplayForLateSubscriber(t *testing.T) {
	t.Parallel()

	f := NewLiveFanout(8)
	f.Publish(sensorEvent(1))

	sub := f.Subscribe()
	defer f.Unsubscribe(sub.ID)

	select {
	case ev := <-sub.C:
		t.Fatalf("late subscriber must not see past events, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFanout_UnsubscribeConcurrentWithPublish(t *testing.T) {
	t.Parallel()

	f := NewLiveFanout(4)
	sub := f.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			f.Publish(sensorEvent(float64(i)))
		}
	}()

	// Drain a little, then drop out mid-stream.
	for i := 0; i < 10; i++ {
		<-sub.C
	}
	f.Unsubscribe(sub.ID)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("publisher blocked after unsubscribe")
	}

	// Channel is closed; draining must terminate.
	for range sub.C {
	}

	if f.Count() != 0 {
		t.Fatalf("expected no subscribers, got %d", f.Count())
	}
}

func TestFanout_UnsubscribeUnknownIDIsNoop(t *testing.T) {
	t.Parallel()

	f := NewLiveFanout(4)
	f.Unsubscribe("nope")
	f.Unsubscribe("nope")
}
