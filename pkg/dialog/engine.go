package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/voicetyped/orderbot/pkg/events"
)

// ErrSessionEnded is returned for turns delivered to a finished dialog.
var ErrSessionEnded = errors.New("dialog session has ended")

// Turn is one inbound user message.
type Turn struct {
	Text   string
	Locale string
	// Intent is the recognizer's reading of Text. It is consulted only by
	// the entry step.
	Intent *Intent
}

// Outcome summarises where a turn left the dialog.
type Outcome struct {
	Phase     Phase
	Terminal  bool
	Restarted bool
}

// Engine drives order dialogs one turn at a time. It holds no session
// state; the caller passes the session for every turn.
type Engine struct {
	defs       DefinitionSource
	platform   Platform
	vocabulary []string
	prices     PriceSource
	recorder   Recorder
	publisher  *events.Publisher
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithVocabulary sets the canonical stock names free text is matched against.
func WithVocabulary(names []string) EngineOption {
	return func(e *Engine) { e.vocabulary = names }
}

// WithPricing quotes a price at the confirmation step. Without it orders
// are confirmed and completed without a price.
func WithPricing(p PriceSource) EngineOption {
	return func(e *Engine) { e.prices = p }
}

// WithRecorder reports every system message to a transcript.
func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) { e.recorder = r }
}

// WithPublisher emits order events.
func WithPublisher(p *events.Publisher) EngineOption {
	return func(e *Engine) { e.publisher = p }
}

// NewEngine creates a new dialog engine.
func NewEngine(defs DefinitionSource, platform Platform, opts ...EngineOption) *Engine {
	e := &Engine{defs: defs, platform: platform}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleTurn applies one user message to sess. The first turn runs the
// entry step, later turns answer the outstanding prompt. Cancellation is
// checked before any slot is resolved.
func (e *Engine) HandleTurn(ctx context.Context, sess *Session, turn Turn) (Outcome, error) {
	if sess.Done() {
		return Outcome{Phase: sess.Phase, Terminal: true}, ErrSessionEnded
	}

	def := e.defs.Definition()
	schema := OrderSchema(def, e.vocabulary)
	if turn.Locale == "" {
		turn.Locale = def.Locale
	}

	from := sess.Phase
	restarts := sess.Restarts
	sess.beginTurn(turn.Text)

	var err error
	switch {
	case sess.Started() && def.Cancels(turn.Text):
		err = e.cancel(ctx, sess, def, turn)
	case !sess.Started():
		err = e.enter(ctx, sess, def, schema, turn)
	default:
		err = e.advance(ctx, sess, def, schema, turn)
	}

	e.publishTurn(ctx, sess, turn, from)

	return Outcome{
		Phase:     sess.Phase,
		Terminal:  sess.Done(),
		Restarted: sess.Restarts > restarts,
	}, err
}

// enter fills what the intent already answers and asks for the first
// missing slot. A restarted dialog keeps its carried order and skips
// extraction.
func (e *Engine) enter(ctx context.Context, sess *Session, def *Definition, schema Schema, turn Turn) error {
	if !sess.Reprompt {
		extracted := Extract(turn.Intent)
		if extracted.Stock != nil && !sess.Order.Filled(SlotStock) {
			sess.Order.Stock = extracted.Stock
		}
		if extracted.Qty != nil && *extracted.Qty > 0 && !sess.Order.Filled(SlotQty) {
			sess.Order.Qty = extracted.Qty
		}
		if extracted.Direction != nil && !sess.Order.Filled(SlotDirection) {
			sess.Order.Direction = extracted.Direction
		}
	}
	return e.promptNext(ctx, sess, def, schema, turn, "entry")
}

func (e *Engine) advance(ctx context.Context, sess *Session, def *Definition, schema Schema, turn Turn) error {
	slot, ok := schema.ForPhase(sess.Phase)
	if !ok {
		return fmt.Errorf("dialog %q: no slot is awaited in phase %s", def.Name, sess.Phase)
	}

	res := slot.Resolver.Resolve(turn.Text, sess.Order)
	if !res.Matched {
		if slot.OnUnmatched == Restart {
			return e.restart(ctx, sess, def, schema, turn)
		}
		return e.emit(ctx, sess, def, slot, turn, true)
	}

	if err := sess.Order.Assign(slot.Name, res.Value); err != nil {
		return fmt.Errorf("dialog %q: %w", def.Name, err)
	}
	if slot.Name == SlotConfirm {
		return e.finalize(ctx, sess, def, turn)
	}
	return e.promptNext(ctx, sess, def, schema, turn, turn.Text)
}

// restart sends the dialog back through its entry step, carrying the
// partially filled order.
func (e *Engine) restart(ctx context.Context, sess *Session, def *Definition, schema Schema, turn Turn) error {
	if err := transition(sess, Entry, turn.Text); err != nil {
		return err
	}
	sess.Reprompt = true
	sess.Restarts++

	slog.InfoContext(ctx, "order dialog restarted",
		slog.String("conversation_id", sess.ID),
		slog.Int("restarts", sess.Restarts))
	e.publishEvent(ctx, events.OrderRestarted, sess.ID, &events.RestartData{
		Text:     turn.Text,
		Restarts: sess.Restarts,
	})

	return e.enter(ctx, sess, def, schema, turn)
}

func (e *Engine) promptNext(ctx context.Context, sess *Session, def *Definition, schema Schema, turn Turn, trigger string) error {
	slot, ok := schema.Next(sess.Order)
	if !ok {
		return fmt.Errorf("order has no slot left to prompt for")
	}
	if slot.Name == SlotConfirm {
		e.quote(sess)
	}
	if err := transition(sess, slot.Phase, trigger); err != nil {
		return err
	}
	return e.emit(ctx, sess, def, slot, turn, false)
}

// quote prices the order once stock, qty and direction are known.
func (e *Engine) quote(sess *Session) {
	if e.prices == nil || sess.Order.Price != nil || sess.Order.Stock == nil {
		return
	}
	price := e.prices.Quote(*sess.Order.Stock)
	sess.Order.Price = &price
}

func (e *Engine) emit(ctx context.Context, sess *Session, def *Definition, slot SlotSpec, turn Turn, retry bool) error {
	text := slot.Prompt
	if slot.DependsOnText {
		var err error
		text, err = Render(slot.Prompt, sess.Order, turn.Text)
		if err != nil {
			return fmt.Errorf("render %s prompt: %w", slot.Name, err)
		}
	}

	p := Prompt{
		Kind:       slot.Kind,
		Text:       text,
		Speak:      text,
		RetrySpeak: text + def.RetrySuffix,
		InputHint:  InputHintExpecting,
		Choices:    slot.Choices,
		ListStyle:  slot.ListStyle,
		Locale:     turn.Locale,
	}
	if retry {
		p.Text = p.RetrySpeak
		p.Speak = p.RetrySpeak
	}

	e.record(ctx, sess, p.Text, slot.Choices)
	e.publishEvent(ctx, events.OrderPrompt, sess.ID, &events.PromptData{
		Slot:    slot.Name,
		Kind:    string(slot.Kind),
		Text:    p.Text,
		Retry:   retry,
		Choices: slot.Choices,
	})

	if err := e.platform.EmitPrompt(ctx, sess.Address, p); err != nil {
		return fmt.Errorf("emit %s prompt: %w", slot.Name, err)
	}
	return nil
}

func (e *Engine) finalize(ctx context.Context, sess *Session, def *Definition, turn Turn) error {
	if err := transition(sess, Finalized, turn.Text); err != nil {
		return err
	}

	completed := sess.Order.Completed != nil && *sess.Order.Completed
	tmpl := def.Messages.Declined
	if completed {
		tmpl = def.Messages.Completed
	}
	msg, err := Render(tmpl, sess.Order, turn.Text)
	if err != nil {
		return fmt.Errorf("render final message: %w", err)
	}

	data := &events.FinalizedData{Completed: completed}
	if sess.Order.Stock != nil {
		data.Stock = *sess.Order.Stock
	}
	if sess.Order.Qty != nil {
		data.Qty = *sess.Order.Qty
	}
	if sess.Order.Direction != nil {
		data.Direction = string(*sess.Order.Direction)
	}
	if sess.Order.Price != nil {
		data.Price = *sess.Order.Price
	}
	if total, ok := sess.Order.Total(); ok {
		data.Total = total
	}
	e.publishEvent(ctx, events.OrderFinalized, sess.ID, data)

	return e.say(ctx, sess, msg, turn.Locale)
}

func (e *Engine) cancel(ctx context.Context, sess *Session, def *Definition, turn Turn) error {
	from := sess.Phase
	if err := transition(sess, Cancelled, turn.Text); err != nil {
		return err
	}

	e.publishEvent(ctx, events.OrderCancelled, sess.ID, &events.CancelledData{
		Phase: from.String(),
		Text:  turn.Text,
	})

	return e.say(ctx, sess, def.CancelMessage, turn.Locale)
}

func (e *Engine) say(ctx context.Context, sess *Session, msg, locale string) error {
	e.record(ctx, sess, msg, nil)
	if err := e.platform.Send(ctx, sess.Address, msg, locale); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (e *Engine) record(ctx context.Context, sess *Session, msg string, choices []string) {
	if e.recorder == nil {
		return
	}
	e.recorder.Record(ctx, sess, msg, choices)
}

func (e *Engine) publishTurn(ctx context.Context, sess *Session, turn Turn, from Phase) {
	if e.publisher == nil {
		return
	}
	delta, err := events.OrderDelta(sess.turnStart, sess.Order)
	if err != nil {
		slog.WarnContext(ctx, "order delta failed", slog.String("error", err.Error()))
	}
	data := &events.TurnData{
		Text:      turn.Text,
		FromPhase: from.String(),
		ToPhase:   sess.Phase.String(),
		Delta:     delta,
	}
	if turn.Intent != nil {
		data.Intent = turn.Intent.Name
	}
	e.publishEvent(ctx, events.OrderTurn, sess.ID, data)
}

func (e *Engine) publishEvent(ctx context.Context, eventType events.EventType, conversationID string, data any) {
	if err := e.publisher.Emit(ctx, eventType, conversationID, data); err != nil {
		slog.WarnContext(ctx, "publish event failed",
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()))
	}
}

// transition moves sess to a new phase. Staying in the same phase is not
// a transition and is not recorded.
func transition(sess *Session, to Phase, trigger string) error {
	from := sess.Phase
	if from == to {
		return nil
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid transition %s -> %s", from, to)
	}
	sess.RecordTransition(from, to, trigger)
	return nil
}
