// Package platform is the in-process conversation platform: it owns the
// dialog sessions, serialises turns per conversation and queues the bot's
// output until the channel collects it.
package platform

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/voicetyped/orderbot/pkg/conversation"
	"github.com/voicetyped/orderbot/pkg/dialog"
)

// DefaultMaxPending caps the undelivered messages kept per conversation.
const DefaultMaxPending = 256

var (
	// ErrNoConversation is returned when output is addressed to nobody.
	ErrNoConversation = errors.New("message has no conversation id")
	// ErrConversationClosed is returned when output arrives for a
	// conversation whose mailbox was never opened or has been closed.
	ErrConversationClosed = errors.New("conversation mailbox is closed")
)

type mailbox struct {
	msgs   []conversation.Message
	notify chan struct{}
}

// Outbox queues bot output per conversation. It implements dialog.Platform
// and the proactive sender used for holdings replies. Mailboxes exist only
// between Open and Close; output for any other id is dropped.
type Outbox struct {
	mu         sync.Mutex
	boxes      map[string]*mailbox
	maxPending int
}

// NewOutbox creates an empty outbox. maxPending <= 0 uses DefaultMaxPending.
func NewOutbox(maxPending int) *Outbox {
	if maxPending <= 0 {
		maxPending = DefaultMaxPending
	}
	return &Outbox{
		boxes:      make(map[string]*mailbox),
		maxPending: maxPending,
	}
}

// Send queues a plain message.
func (o *Outbox) Send(ctx context.Context, addr dialog.Address, text, locale string) error {
	return o.push(ctx, addr.ConversationID, conversation.Message{
		Kind:      conversation.KindMessage,
		Text:      text,
		Locale:    locale,
		CreatedAt: time.Now(),
	})
}

// EmitPrompt queues a prompt.
func (o *Outbox) EmitPrompt(ctx context.Context, addr dialog.Address, p dialog.Prompt) error {
	return o.push(ctx, addr.ConversationID, conversation.Message{
		Kind:      conversation.KindPrompt,
		Text:      p.Text,
		Locale:    p.Locale,
		Prompt:    &p,
		CreatedAt: time.Now(),
	})
}

func (o *Outbox) push(ctx context.Context, id string, msg conversation.Message) error {
	if id == "" {
		return ErrNoConversation
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	box, ok := o.boxes[id]
	if !ok {
		slog.DebugContext(ctx, "dropping output for closed conversation",
			slog.String("conversation_id", id))
		return ErrConversationClosed
	}
	if len(box.msgs) >= o.maxPending {
		slog.WarnContext(ctx, "outbox full, dropping oldest message",
			slog.String("conversation_id", id))
		box.msgs = box.msgs[1:]
	}
	box.msgs = append(box.msgs, msg)

	close(box.notify)
	box.notify = make(chan struct{})
	return nil
}

// Open creates the mailbox for a conversation. Opening an open mailbox
// keeps what is queued.
func (o *Outbox) Open(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.boxes[id]; !ok {
		o.boxes[id] = &mailbox{notify: make(chan struct{})}
	}
}

// Drain removes and returns everything queued for a conversation.
func (o *Outbox) Drain(id string) []conversation.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	box, ok := o.boxes[id]
	if !ok || len(box.msgs) == 0 {
		return []conversation.Message{}
	}
	msgs := box.msgs
	box.msgs = nil
	return msgs
}

// Wait drains a conversation's messages, waiting up to d for the first one
// when nothing is queued yet. Unknown conversations return at once.
func (o *Outbox) Wait(ctx context.Context, id string, d time.Duration) []conversation.Message {
	o.mu.Lock()
	box, ok := o.boxes[id]
	if !ok {
		o.mu.Unlock()
		return []conversation.Message{}
	}
	pending := len(box.msgs)
	notify := box.notify
	o.mu.Unlock()

	if pending == 0 && d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-notify:
		case <-timer.C:
		case <-ctx.Done():
		}
	}
	return o.Drain(id)
}

// Pending returns the number of queued messages for a conversation.
func (o *Outbox) Pending(id string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if box, ok := o.boxes[id]; ok {
		return len(box.msgs)
	}
	return 0
}

// Len returns the number of open mailboxes.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.boxes)
}

// Close discards a conversation's mailbox and wakes any waiter.
func (o *Outbox) Close(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if box, ok := o.boxes[id]; ok {
		close(box.notify)
		delete(o.boxes, id)
	}
}
