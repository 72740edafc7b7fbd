package engine

import (
	"testing"
	"time"
)

func TestPublishAndExpire(t *testing.T) {
	bus := NewNotificationBus(50 * time.Millisecond)
	defer bus.Close()

	bus.Publish("premier", SeverityInfo)
	bus.Publish("deuxième", SeveritySuccess)

	if got := len(bus.List()); got != 2 {
		t.Fatalf("List() = %d notifications, want 2", got)
	}

	time.Sleep(150 * time.Millisecond)
	if got := len(bus.List()); got != 0 {
		t.Fatalf("List() = %d notifications after TTL, want 0", got)
	}
}

func TestNewestFirstAndMonotonicIDs(t *testing.T) {
	bus := NewNotificationBus(time.Hour)
	defer bus.Close()

	first := bus.Publish("un", SeverityInfo)
	second := bus.Publish("deux", SeverityInfo)
	third := bus.Publish("trois", SeverityInfo)

	if !(first.ID < second.ID && second.ID < third.ID) {
		t.Errorf("ids not monotonic: %d %d %d", first.ID, second.ID, third.ID)
	}

	items := bus.List()
	if len(items) != 3 {
		t.Fatalf("List() = %d notifications, want 3", len(items))
	}
	if items[0].Message != "trois" || items[2].Message != "un" {
		t.Errorf("expected newest first, got %q .. %q", items[0].Message, items[2].Message)
	}
}

func TestMarkAllRead(t *testing.T) {
	bus := NewNotificationBus(time.Hour)
	defer bus.Close()

	bus.Publish("un", SeverityInfo)
	bus.Publish("deux", SeverityWarning)
	bus.MarkAllRead()

	for _, n := range bus.List() {
		if !n.Read {
			t.Errorf("notification %q not marked read", n.Message)
		}
	}
}

func TestSubscribeSink(t *testing.T) {
	bus := NewNotificationBus(time.Hour)
	defer bus.Close()

	var got []Notification
	bus.Subscribe(func(n Notification) { got = append(got, n) })

	bus.Publish("poussé", SeverityInfo)
	if len(got) != 1 || got[0].Message != "poussé" {
		t.Fatalf("sink received %+v, want one notification %q", got, "poussé")
	}
}

func TestCloseStopsPublishing(t *testing.T) {
	bus := NewNotificationBus(time.Hour)
	bus.Publish("avant", SeverityInfo)
	bus.Close()

	n := bus.Publish("après", SeverityInfo)
	if n.ID != 0 {
		t.Errorf("Publish() after Close returned id %d, want zero value", n.ID)
	}
}
