// Package conversation defines the Connect RPC surface a messaging channel
// uses to talk to the order bot. Messages are plain Go structs carried with
// the JSON codec.
package conversation

import (
	"time"

	"github.com/voicetyped/orderbot/pkg/dialog"
)

// MessageKind distinguishes plain messages from prompts in an outbox.
type MessageKind string

const (
	KindMessage MessageKind = "message"
	KindPrompt  MessageKind = "prompt"
)

// Message is one piece of bot output addressed to a conversation.
type Message struct {
	Kind      MessageKind    `json:"kind"`
	Text      string         `json:"text"`
	Locale    string         `json:"locale,omitempty"`
	Prompt    *dialog.Prompt `json:"prompt,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// SendTurnRequest delivers one user message.
type SendTurnRequest struct {
	ConversationID string `json:"conversation_id"`
	ChannelID      string `json:"channel_id"`
	UserID         string `json:"user_id,omitempty"`
	Text           string `json:"text"`
	Locale         string `json:"locale,omitempty"`
}

// SendTurnResponse carries what the bot said in reply to the turn.
// Messages produced later, such as holdings answers, are collected with
// DrainMessages.
type SendTurnResponse struct {
	ConversationID string    `json:"conversation_id"`
	Intent         string    `json:"intent,omitempty"`
	Phase          string    `json:"phase,omitempty"`
	Terminal       bool      `json:"terminal"`
	Restarted      bool      `json:"restarted,omitempty"`
	Messages       []Message `json:"messages"`
}

type GetConversationRequest struct {
	ConversationID string `json:"conversation_id"`
}

type GetConversationResponse struct {
	ConversationID string               `json:"conversation_id"`
	ChannelID      string               `json:"channel_id"`
	Active         bool                 `json:"active"`
	Phase          string               `json:"phase,omitempty"`
	Order          *dialog.OrderState   `json:"order,omitempty"`
	Restarts       int                  `json:"restarts"`
	History        []dialog.StateRecord `json:"history"`
	StartedAt      time.Time            `json:"started_at"`
	LastActivity   time.Time            `json:"last_activity"`
	// Pending counts queued messages not yet drained.
	Pending        int                  `json:"pending"`
}

type EndConversationRequest struct {
	ConversationID string `json:"conversation_id"`
}

type EndConversationResponse struct{}

type DrainMessagesRequest struct {
	ConversationID string `json:"conversation_id"`
	// WaitSeconds makes the call wait for at least one message when the
	// outbox is empty.
	WaitSeconds int `json:"wait_seconds,omitempty"`
}

type DrainMessagesResponse struct {
	Messages []Message `json:"messages"`
}

// Conversation returns the conversation a request belongs to; request
// logging uses it to tag log lines.
func (r *SendTurnRequest) Conversation() string { return r.ConversationID }

func (r *GetConversationRequest) Conversation() string { return r.ConversationID }

func (r *EndConversationRequest) Conversation() string { return r.ConversationID }

func (r *DrainMessagesRequest) Conversation() string { return r.ConversationID }
