// Package memorybus fournit le bus d'événements in-process qui alimente le
// flux SSE de l'UI (course.checked, alert.fired, watcher.state).
package memorybus

import (
	"sync"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/ports"
)

type Bus struct {
	mu sync.Mutex
	// topics vide = tous les topics.
	subs  map[chan ports.Event]map[string]struct{}
	alive bool
}

func New() *Bus {
	return &Bus{subs: make(map[chan ports.Event]map[string]struct{}), alive: true}
}

func (b *Bus) Publish(topic string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.alive {
		return
	}
	evt := ports.Event{Topic: topic, Payload: payload}
	for ch, topics := range b.subs {
		if topics != nil {
			if _, ok := topics[topic]; !ok {
				continue
			}
		}
		select {
		case ch <- evt:
		default:
			// drop si le client est trop lent
		}
	}
}

func (b *Bus) Subscribe(topics ...string) (<-chan ports.Event, func()) {
	ch := make(chan ports.Event, 64)
	b.mu.Lock()
	if !b.alive {
		close(ch)
		b.mu.Unlock()
		return ch, func() {}
	}
	var filter map[string]struct{}
	if len(topics) > 0 {
		filter = make(map[string]struct{}, len(topics))
		for _, t := range topics {
			filter[t] = struct{}{}
		}
	}
	b.subs[ch] = filter
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}

	return ch, cancel
}
