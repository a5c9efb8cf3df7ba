// Package recognizer turns user text into intents and typed entities.
package recognizer

import (
	"context"
	"log/slog"

	"github.com/voicetyped/orderbot/pkg/dialog"
)

// Recognizer reads the intent of one utterance.
type Recognizer interface {
	Recognize(ctx context.Context, text string) (*dialog.Intent, error)
}

// Fallback asks primary first and falls back to secondary when primary
// fails. Recognition never fails outright while secondary does not.
type Fallback struct {
	Primary   Recognizer
	Secondary Recognizer
}

func (f Fallback) Recognize(ctx context.Context, text string) (*dialog.Intent, error) {
	in, err := f.Primary.Recognize(ctx, text)
	if err == nil {
		return in, nil
	}
	slog.WarnContext(ctx, "primary recognizer failed, using fallback",
		slog.String("error", err.Error()))
	return f.Secondary.Recognize(ctx, text)
}
