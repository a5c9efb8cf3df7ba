package events

import (
	"encoding/json"
	"time"
)

// EventType identifies the kind of event flowing through the system.
type EventType string

const (
	OrderTurn      EventType = "order.turn"
	OrderPrompt    EventType = "order.prompt"
	OrderRestarted EventType = "order.restarted"
	OrderFinalized EventType = "order.finalized"
	OrderCancelled EventType = "order.cancelled"
	HoldingsReply  EventType = "holdings.reply"
	HoldingsError  EventType = "holdings.error"
	TranscriptDrop EventType = "transcript.dropped"
)

// Envelope is the standard event wrapper published to the event bus.
type Envelope struct {
	ID             string            `json:"id"`
	Type           EventType         `json:"type"`
	Source         string            `json:"source"`
	ConversationID string            `json:"conversation_id"`
	Timestamp      time.Time         `json:"timestamp"`
	Data           json.RawMessage   `json:"data"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// TurnData is the payload for order.turn events. Delta is a JSON merge
// patch from the order state at the start of the turn to the state after it.
type TurnData struct {
	Text      string          `json:"text"`
	Intent    string          `json:"intent,omitempty"`
	FromPhase string          `json:"from_phase"`
	ToPhase   string          `json:"to_phase"`
	Delta     json.RawMessage `json:"delta,omitempty"`
}

// PromptData is the payload for order.prompt events.
type PromptData struct {
	Slot    string   `json:"slot"`
	Kind    string   `json:"kind"`
	Text    string   `json:"text"`
	Retry   bool     `json:"retry,omitempty"`
	Choices []string `json:"choices,omitempty"`
}

// RestartData is the payload for order.restarted events.
type RestartData struct {
	Text     string `json:"text"`
	Restarts int    `json:"restarts"`
}

// FinalizedData is the payload for order.finalized events.
type FinalizedData struct {
	Stock     string  `json:"stock"`
	Qty       float64 `json:"qty"`
	Direction string  `json:"direction"`
	Price     float64 `json:"price,omitempty"`
	Total     float64 `json:"total,omitempty"`
	Completed bool    `json:"completed"`
}

// CancelledData is the payload for order.cancelled events.
type CancelledData struct {
	Phase string `json:"phase"`
	Text  string `json:"text"`
}

// HoldingsReplyData is the payload for holdings.reply events.
type HoldingsReplyData struct {
	Stock string `json:"stock,omitempty"`
	Text  string `json:"text"`
}

// HoldingsErrorData is the payload for holdings.error events.
type HoldingsErrorData struct {
	Stock string `json:"stock,omitempty"`
	Error string `json:"error"`
}

// TranscriptDropData is the payload for transcript.dropped events.
type TranscriptDropData struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
