// Package transcript reports every message the bot sends to an external
// order log, without ever holding up the conversation.
package transcript

import "github.com/voicetyped/orderbot/pkg/dialog"

// Event is one logged system message together with the order state it
// was sent in.
type Event struct {
	ConversationID    string            `json:"conversationId"`
	Channel           string            `json:"channel"`
	LastUserMessage   string            `json:"lastUserMessage"`
	LastOrderState    dialog.OrderState `json:"lastOrderState"`
	LastSystemMessage string            `json:"lastSystemMessage"`
	Choices           []string          `json:"choices"`
}

// NewEvent snapshots a session and order for the log. Choices default to
// an empty list.
func NewEvent(sess *dialog.Session, order dialog.OrderState, message string, choices []string) Event {
	cp := make([]string, len(choices))
	copy(cp, choices)
	return Event{
		ConversationID:    sess.Address.ConversationID,
		Channel:           sess.Address.ChannelID,
		LastUserMessage:   sess.LastUserMessage,
		LastOrderState:    order.Snapshot(),
		LastSystemMessage: message,
		Choices:           cp,
	}
}
