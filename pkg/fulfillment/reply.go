package fulfillment

import (
	"context"
	"log/slog"
	"time"

	"github.com/pitabwire/frame/workerpool"
	"github.com/pitabwire/util"

	"github.com/voicetyped/orderbot/pkg/dialog"
	"github.com/voicetyped/orderbot/pkg/events"
)

// Sender delivers a proactive message to a conversation.
type Sender interface {
	Send(ctx context.Context, addr dialog.Address, text, locale string) error
}

// HoldingsReplier answers holdings queries in the background. The turn that
// asked returns immediately; the answer arrives as a proactive message, or
// not at all when the store fails or has nothing to say.
type HoldingsReplier struct {
	store     HoldingsStore
	sender    Sender
	pool      workerpool.WorkerPool
	publisher *events.Publisher
	timeout   time.Duration
	locale    string
}

// NewHoldingsReplier creates a replier. pool may be nil, in which case each
// query runs on its own goroutine.
func NewHoldingsReplier(store HoldingsStore, sender Sender, pool workerpool.WorkerPool, pub *events.Publisher, timeout time.Duration, locale string) *HoldingsReplier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if locale == "" {
		locale = "en-US"
	}
	return &HoldingsReplier{
		store:     store,
		sender:    sender,
		pool:      pool,
		publisher: pub,
		timeout:   timeout,
		locale:    locale,
	}
}

// Reply dispatches a holdings query. An empty stock asks for the summary of
// all holdings. The returned channel is closed when the query has finished.
func (h *HoldingsReplier) Reply(ctx context.Context, addr dialog.Address, stock string) <-chan struct{} {
	done := make(chan struct{})
	ctx = context.WithoutCancel(ctx)

	task := func() {
		defer close(done)
		h.answer(ctx, addr, stock)
	}

	if h.pool != nil {
		if err := h.pool.Submit(ctx, task); err != nil {
			slog.WarnContext(ctx, "holdings pool full, dropping query",
				slog.String("conversation_id", addr.ConversationID))
			close(done)
		}
	} else {
		go task()
	}
	return done
}

func (h *HoldingsReplier) answer(ctx context.Context, addr dialog.Address, stock string) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	text, ok, err := h.lookup(ctx, stock)
	if err != nil {
		util.Log(ctx).WithError(err).Error("holdings query failed")
		_ = h.publisher.Emit(ctx, events.HoldingsError, addr.ConversationID, &events.HoldingsErrorData{
			Stock: stock,
			Error: err.Error(),
		})
		return
	}
	if !ok {
		return
	}

	if err := h.sender.Send(ctx, addr, text, h.locale); err != nil {
		util.Log(ctx).WithError(err).Error("holdings reply not delivered")
		return
	}
	_ = h.publisher.Emit(ctx, events.HoldingsReply, addr.ConversationID, &events.HoldingsReplyData{
		Stock: stock,
		Text:  text,
	})
}

func (h *HoldingsReplier) lookup(ctx context.Context, stock string) (string, bool, error) {
	if stock == "" {
		holdings, err := h.store.Holdings(ctx)
		if err != nil || holdings == nil {
			return "", false, err
		}
		return FormatHoldings(holdings), true, nil
	}

	pos, err := h.store.HoldingFor(ctx, stock)
	if err != nil || pos == nil {
		return "", false, err
	}
	return FormatHolding(stock, pos), true, nil
}
