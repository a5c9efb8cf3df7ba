package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pitabwire/frame/queue"
	"github.com/rs/xid"
)

// Filter selects the envelopes a local subscriber receives. Empty fields
// match everything.
type Filter struct {
	Types          map[EventType]bool
	ConversationID string
}

// Match reports whether env passes the filter.
func (f Filter) Match(env Envelope) bool {
	if len(f.Types) > 0 && !f.Types[env.Type] {
		return false
	}
	return f.ConversationID == "" || f.ConversationID == env.ConversationID
}

type subscriber struct {
	ch     chan Envelope
	filter Filter
}

// Publisher sends order events to the frame queue and to local
// subscribers. A nil Publisher discards events; one without a queue
// manager only fans out locally.
type Publisher struct {
	queueMgr queue.Manager
	source   string
	queueRef string

	subMu       sync.RWMutex
	subscribers map[string]subscriber
	dropped     atomic.Uint64
}

// NewPublisher creates a publisher that emits events to the given queue reference.
func NewPublisher(queueMgr queue.Manager, source string, queueRef string) *Publisher {
	return &Publisher{
		queueMgr:    queueMgr,
		source:      source,
		queueRef:    queueRef,
		subscribers: make(map[string]subscriber),
	}
}

// Emit wraps data in an envelope and publishes it.
func (p *Publisher) Emit(ctx context.Context, eventType EventType, conversationID string, data any) error {
	if p == nil {
		return nil
	}

	raw, err := sonic.Marshal(data)
	if err != nil {
		return err
	}

	return p.Publish(ctx, Envelope{
		ID:             xid.New().String(),
		Type:           eventType,
		Source:         p.source,
		ConversationID: conversationID,
		Timestamp:      time.Now().UTC(),
		Data:           raw,
	})
}

// Publish delivers a ready envelope. Local subscribers never block the
// caller: a full subscriber misses the event.
func (p *Publisher) Publish(ctx context.Context, env Envelope) error {
	if p == nil {
		return nil
	}

	p.subMu.RLock()
	for id, sub := range p.subscribers {
		if !sub.filter.Match(env) {
			continue
		}
		select {
		case sub.ch <- env:
		default:
			p.dropped.Add(1)
			slog.WarnContext(ctx, "event dropped: subscriber buffer full",
				slog.String("subscriber", id), slog.String("event_type", string(env.Type)))
		}
	}
	p.subMu.RUnlock()

	if p.queueMgr == nil {
		return nil
	}
	return p.queueMgr.Publish(ctx, p.queueRef, env)
}

// Subscribe receives every event. The caller must call Unsubscribe with
// the same id to clean up.
func (p *Publisher) Subscribe(id string, bufSize int) <-chan Envelope {
	return p.SubscribeFiltered(id, bufSize, Filter{})
}

// SubscribeFiltered receives the events matching f.
func (p *Publisher) SubscribeFiltered(id string, bufSize int, f Filter) <-chan Envelope {
	if bufSize <= 0 {
		bufSize = 64
	}
	ch := make(chan Envelope, bufSize)
	p.subMu.Lock()
	if old, ok := p.subscribers[id]; ok {
		close(old.ch)
	}
	p.subscribers[id] = subscriber{ch: ch, filter: f}
	p.subMu.Unlock()
	return ch
}

// Unsubscribe removes a local subscription and closes its channel.
func (p *Publisher) Unsubscribe(id string) {
	p.subMu.Lock()
	if sub, ok := p.subscribers[id]; ok {
		close(sub.ch)
		delete(p.subscribers, id)
	}
	p.subMu.Unlock()
}

// Dropped returns how many events full subscribers have missed.
func (p *Publisher) Dropped() uint64 {
	return p.dropped.Load()
}
