package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"connectrpc.com/connect"
	"github.com/pitabwire/frame/workerpool"

	"github.com/voicetyped/orderbot/internal/platform"
	"github.com/voicetyped/orderbot/internal/recognizer"
	"github.com/voicetyped/orderbot/pkg/conversation"
	"github.com/voicetyped/orderbot/pkg/dialog"
)

const (
	DefaultSessionTTL = 30 * time.Minute
	reaperInterval    = 1 * time.Minute
	maxDrainWait      = 30 * time.Second
)

// Ensure we implement the interface.
var _ conversation.ServiceHandler = (*ConversationHandler)(nil)

// HoldingsResponder answers holdings queries out of band. An empty stock
// asks for all holdings.
type HoldingsResponder interface {
	Reply(ctx context.Context, addr dialog.Address, stock string) <-chan struct{}
}

// activeConversation is one conversation's state. mu serialises its turns.
type activeConversation struct {
	mu       sync.Mutex
	addr     dialog.Address
	session  *dialog.Session
	started  time.Time
	lastSeen atomic.Int64
}

func (c *activeConversation) touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

func (c *activeConversation) idle(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, c.lastSeen.Load()))
}

// SessionStore holds active conversations.
type SessionStore struct {
	mu            sync.RWMutex
	conversations map[string]*activeConversation
}

func (s *SessionStore) get(id string) (*activeConversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[id]
	return c, ok
}

func (s *SessionStore) getOrCreate(addr dialog.Address) *activeConversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[addr.ConversationID]
	if !ok {
		c = &activeConversation{addr: addr, started: time.Now()}
		c.touch()
		s.conversations[addr.ConversationID] = c
	}
	return c
}

func (s *SessionStore) remove(id string) (*activeConversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if ok {
		delete(s.conversations, id)
	}
	return c, ok
}

// Option configures a ConversationHandler.
type Option func(*ConversationHandler)

// WithHoldings enables holdings queries.
func WithHoldings(h HoldingsResponder) Option {
	return func(ch *ConversationHandler) { ch.holdings = h }
}

// WithPool runs the session reaper on a frame worker pool.
func WithPool(pool workerpool.WorkerPool) Option {
	return func(ch *ConversationHandler) { ch.pool = pool }
}

// WithSessionTTL sets how long an idle conversation is kept.
func WithSessionTTL(d time.Duration) Option {
	return func(ch *ConversationHandler) {
		if d > 0 {
			ch.ttl = d
		}
	}
}

// ConversationHandler implements conversation.ServiceHandler. It routes
// each turn either into the conversation's order dialog or to the
// holdings and default replies.
type ConversationHandler struct {
	engine     *dialog.Engine
	recognizer recognizer.Recognizer
	defs       dialog.DefinitionSource
	outbox     *platform.Outbox
	holdings   HoldingsResponder
	pool       workerpool.WorkerPool
	ttl        time.Duration
	store      SessionStore
}

// NewConversationHandler creates a new conversation service handler. The
// engine must have been built with outbox as its platform.
func NewConversationHandler(engine *dialog.Engine, rec recognizer.Recognizer, defs dialog.DefinitionSource, outbox *platform.Outbox, opts ...Option) *ConversationHandler {
	h := &ConversationHandler{
		engine:     engine,
		recognizer: rec,
		defs:       defs,
		outbox:     outbox,
		ttl:        DefaultSessionTTL,
		store: SessionStore{
			conversations: make(map[string]*activeConversation),
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// StartReaper begins the background session TTL reaper.
func (h *ConversationHandler) StartReaper(ctx context.Context) {
	reap := func() {
		ticker := time.NewTicker(reaperInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.reapStaleConversations(time.Now())
			}
		}
	}
	if h.pool != nil {
		_ = h.pool.Submit(ctx, reap)
	} else {
		go reap()
	}
}

func (h *ConversationHandler) reapStaleConversations(now time.Time) int {
	var stale []string
	h.store.mu.RLock()
	for id, c := range h.store.conversations {
		if c.idle(now) > h.ttl {
			stale = append(stale, id)
		}
	}
	h.store.mu.RUnlock()

	for _, id := range stale {
		slog.Warn("reaping idle conversation", slog.String("conversation_id", id))
		h.store.remove(id)
		h.outbox.Close(id)
	}
	if len(stale) > 0 {
		slog.Info("idle conversations reaped",
			slog.Int("reaped", len(stale)),
			slog.Int("open_mailboxes", h.outbox.Len()))
	}
	return len(stale)
}

func (h *ConversationHandler) SendTurn(ctx context.Context, req *connect.Request[conversation.SendTurnRequest]) (*connect.Response[conversation.SendTurnResponse], error) {
	msg := req.Msg
	if msg.ConversationID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("conversation_id is required"))
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("text is required"))
	}

	conv := h.store.getOrCreate(dialog.Address{
		ConversationID: msg.ConversationID,
		ChannelID:      msg.ChannelID,
		UserID:         msg.UserID,
	})
	conv.mu.Lock()
	defer conv.mu.Unlock()
	conv.touch()
	h.outbox.Open(msg.ConversationID)

	intent, err := h.recognizer.Recognize(ctx, text)
	if err != nil {
		slog.WarnContext(ctx, "recognizer failed, treating turn as unrecognised",
			slog.String("conversation_id", msg.ConversationID),
			slog.String("error", err.Error()))
		intent = nil
	}

	resp := &conversation.SendTurnResponse{ConversationID: msg.ConversationID}
	if intent != nil {
		resp.Intent = intent.Name
	}

	turn := dialog.Turn{Text: text, Locale: msg.Locale, Intent: intent}
	if err := h.route(ctx, conv, turn, resp); err != nil {
		return nil, err
	}

	resp.Messages = h.outbox.Drain(msg.ConversationID)
	return connect.NewResponse(resp), nil
}

// route hands the turn to the active dialog, if any. An order intent
// arriving mid-dialog is an answer to the outstanding prompt, not a new
// order.
func (h *ConversationHandler) route(ctx context.Context, conv *activeConversation, turn dialog.Turn, resp *conversation.SendTurnResponse) error {
	if conv.session != nil && !conv.session.Done() {
		return h.runDialog(ctx, conv.session, turn, resp)
	}

	name := dialog.IntentNone
	if turn.Intent != nil {
		name = turn.Intent.Name
	}

	switch name {
	case dialog.IntentOrder:
		conv.session = dialog.NewSession(conv.addr, dialog.DefaultDialogName)
		return h.runDialog(ctx, conv.session, turn, resp)
	case dialog.IntentOrderQuery:
		if h.holdings != nil {
			stock, _ := dialog.ExtractStockMention(turn.Intent)
			h.holdings.Reply(ctx, conv.addr, stock)
		}
		return nil
	default:
		return h.notUnderstood(ctx, conv.addr, turn)
	}
}

func (h *ConversationHandler) runDialog(ctx context.Context, sess *dialog.Session, turn dialog.Turn, resp *conversation.SendTurnResponse) error {
	outcome, err := h.engine.HandleTurn(ctx, sess, turn)
	resp.Phase = outcome.Phase.String()
	resp.Terminal = outcome.Terminal
	resp.Restarted = outcome.Restarted
	if err == nil {
		return nil
	}
	if errors.Is(err, dialog.ErrSessionEnded) {
		return connect.NewError(connect.CodeFailedPrecondition, err)
	}
	slog.ErrorContext(ctx, "order dialog turn failed",
		slog.String("conversation_id", sess.ID),
		slog.String("error", err.Error()))
	return connect.NewError(connect.CodeInternal, err)
}

func (h *ConversationHandler) notUnderstood(ctx context.Context, addr dialog.Address, turn dialog.Turn) error {
	def := h.defs.Definition()
	locale := turn.Locale
	if locale == "" {
		locale = def.Locale
	}
	text, err := dialog.Render(def.Messages.NotUnderstood, dialog.OrderState{}, turn.Text)
	if err != nil {
		return connect.NewError(connect.CodeInternal, fmt.Errorf("render default reply: %w", err))
	}
	if err := h.outbox.Send(ctx, addr, text, locale); err != nil {
		return connect.NewError(connect.CodeInternal, err)
	}
	return nil
}

func (h *ConversationHandler) GetConversation(_ context.Context, req *connect.Request[conversation.GetConversationRequest]) (*connect.Response[conversation.GetConversationResponse], error) {
	conv, ok := h.store.get(req.Msg.ConversationID)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("conversation %q not found", req.Msg.ConversationID))
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	resp := &conversation.GetConversationResponse{
		ConversationID: conv.addr.ConversationID,
		ChannelID:      conv.addr.ChannelID,
		History:        []dialog.StateRecord{},
		StartedAt:      conv.started,
		LastActivity:   time.Unix(0, conv.lastSeen.Load()),
		Pending:        h.outbox.Pending(conv.addr.ConversationID),
	}
	if sess := conv.session; sess != nil {
		order := sess.Order.Snapshot()
		resp.Active = !sess.Done()
		resp.Phase = sess.Phase.String()
		resp.Order = &order
		resp.Restarts = sess.Restarts
		resp.History = sess.CopyHistory()
	}
	return connect.NewResponse(resp), nil
}

func (h *ConversationHandler) EndConversation(_ context.Context, req *connect.Request[conversation.EndConversationRequest]) (*connect.Response[conversation.EndConversationResponse], error) {
	if _, ok := h.store.remove(req.Msg.ConversationID); !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("conversation %q not found", req.Msg.ConversationID))
	}
	h.outbox.Close(req.Msg.ConversationID)
	return connect.NewResponse(&conversation.EndConversationResponse{}), nil
}

func (h *ConversationHandler) DrainMessages(ctx context.Context, req *connect.Request[conversation.DrainMessagesRequest]) (*connect.Response[conversation.DrainMessagesResponse], error) {
	if req.Msg.ConversationID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("conversation_id is required"))
	}
	if req.Msg.WaitSeconds < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("wait_seconds must not be negative"))
	}

	wait := min(time.Duration(req.Msg.WaitSeconds)*time.Second, maxDrainWait)
	msgs := h.outbox.Wait(ctx, req.Msg.ConversationID, wait)
	return connect.NewResponse(&conversation.DrainMessagesResponse{Messages: msgs}), nil
}
