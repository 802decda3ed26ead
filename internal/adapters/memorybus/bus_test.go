package memorybus

import (
	"testing"
	"time"
)

func TestBus_PublishReachesAllSubscriber(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Publish("course.checked", []byte(`{}`))

	select {
	case evt := <-ch:
		if evt.Topic != "course.checked" {
			t.Fatalf("topic: want course.checked, got %s", evt.Topic)
		}
	case <-time.After(time.Second):
		t.Fatalf("event not delivered")
	}
}

func TestBus_SubscribeFiltersTopics(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe("alert.fired", "watcher.state")
	defer cancel()

	b.Publish("course.checked", []byte(`{}`))
	b.Publish("alert.fired", []byte(`{}`))

	select {
	case evt := <-ch:
		if evt.Topic != "alert.fired" {
			t.Fatalf("filtered subscriber got %s", evt.Topic)
		}
	case <-time.After(time.Second):
		t.Fatalf("alert.fired not delivered")
	}

	select {
	case evt := <-ch:
		t.Fatalf("unexpected event after filter: %s", evt.Topic)
	default:
	}
}

func TestBus_CancelClosesChannel(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed after cancel")
	}

	// Publish après cancel ne doit pas paniquer.
	b.Publish("course.checked", []byte(`{}`))
}
