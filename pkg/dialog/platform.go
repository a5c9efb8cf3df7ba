package dialog

import "context"

// InputHintExpecting tells the channel the bot is waiting for a reply.
const InputHintExpecting = "expectingInput"

// Prompt is a question handed to the conversation platform.
type Prompt struct {
	Kind       PromptKind `json:"kind"`
	Text       string     `json:"text"`
	Speak      string     `json:"speak"`
	RetrySpeak string     `json:"retry_speak"`
	InputHint  string     `json:"input_hint"`
	Choices    []string   `json:"choices,omitempty"`
	ListStyle  string     `json:"list_style,omitempty"`
	Locale     string     `json:"locale,omitempty"`
}

// Platform delivers the bot's output for a conversation.
type Platform interface {
	Send(ctx context.Context, addr Address, text, locale string) error
	EmitPrompt(ctx context.Context, addr Address, p Prompt) error
}

// Recorder reports a system message to the transcript. Implementations
// must snapshot what they need before returning and must not block on I/O.
type Recorder interface {
	Record(ctx context.Context, sess *Session, message string, choices []string)
}

// PriceSource quotes a price for a stock. It never fails.
type PriceSource interface {
	Quote(symbol string) float64
}
