//go:build !production

package testutil

import (
	"sync"

	"github.com/ines1102/SeriousGame-sub000/internal/events"
)

// RecordingPublisher 记录所有已发布事件
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	closed bool
}

func (p *RecordingPublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *RecordingPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// Events 已发布事件的副本
func (p *RecordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Event, len(p.events))
	copy(out, p.events)
	return out
}

// Types 已发布事件类型，按发布顺序
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
