package platform

import (
	"errors"
	"testing"
	"time"

	"github.com/voicetyped/orderbot/pkg/conversation"
	"github.com/voicetyped/orderbot/pkg/dialog"
)

var testAddr = dialog.Address{ConversationID: "conv-1", ChannelID: "emulator"}

func TestOutboxSendAndPrompt(t *testing.T) {
	o := NewOutbox(0)
	o.Open("conv-1")

	if err := o.Send(t.Context(), testAddr, "hello", "en-US"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	p := dialog.Prompt{Kind: dialog.PromptChoice, Text: "Buy or sell?", Choices: dialog.DirectionChoices}
	if err := o.EmitPrompt(t.Context(), testAddr, p); err != nil {
		t.Fatalf("EmitPrompt: %v", err)
	}

	if got := o.Pending("conv-1"); got != 2 {
		t.Fatalf("Pending = %d, want 2", got)
	}

	msgs := o.Drain("conv-1")
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Kind != conversation.KindMessage || msgs[0].Text != "hello" || msgs[0].Locale != "en-US" {
		t.Errorf("first message = %+v", msgs[0])
	}
	if msgs[1].Kind != conversation.KindPrompt || msgs[1].Prompt == nil || len(msgs[1].Prompt.Choices) != 2 {
		t.Errorf("second message = %+v", msgs[1])
	}

	if got := o.Drain("conv-1"); len(got) != 0 {
		t.Errorf("second drain returned %d messages", len(got))
	}
}

func TestOutboxRequiresConversation(t *testing.T) {
	o := NewOutbox(0)
	err := o.Send(t.Context(), dialog.Address{}, "hello", "")
	if !errors.Is(err, ErrNoConversation) {
		t.Errorf("err = %v, want ErrNoConversation", err)
	}
}

func TestOutboxDropsOldest(t *testing.T) {
	o := NewOutbox(2)
	o.Open("conv-1")
	for _, text := range []string{"one", "two", "three"} {
		if err := o.Send(t.Context(), testAddr, text, ""); err != nil {
			t.Fatalf("Send(%q): %v", text, err)
		}
	}

	msgs := o.Drain("conv-1")
	if len(msgs) != 2 || msgs[0].Text != "two" || msgs[1].Text != "three" {
		t.Errorf("messages = %+v, want [two three]", msgs)
	}
}

func TestOutboxWait(t *testing.T) {
	o := NewOutbox(0)
	o.Open("conv-1")

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = o.Send(t.Context(), testAddr, "late", "")
	}()

	msgs := o.Wait(t.Context(), "conv-1", 2*time.Second)
	if len(msgs) != 1 || msgs[0].Text != "late" {
		t.Errorf("messages = %+v, want [late]", msgs)
	}
}

func TestOutboxWaitTimesOut(t *testing.T) {
	o := NewOutbox(0)
	o.Open("conv-1")

	start := time.Now()
	msgs := o.Wait(t.Context(), "conv-1", 20*time.Millisecond)
	if len(msgs) != 0 {
		t.Errorf("messages = %+v, want none", msgs)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("Wait returned before the timeout")
	}
}

func TestOutboxClose(t *testing.T) {
	o := NewOutbox(0)
	o.Open("conv-1")
	_ = o.Send(t.Context(), testAddr, "hello", "")

	o.Close("conv-1")
	if got := o.Pending("conv-1"); got != 0 {
		t.Errorf("Pending after Close = %d, want 0", got)
	}
	if err := o.Send(t.Context(), testAddr, "late", ""); !errors.Is(err, ErrConversationClosed) {
		t.Errorf("Send after Close err = %v, want ErrConversationClosed", err)
	}
	if got := o.Len(); got != 0 {
		t.Errorf("Len after Close = %d, want 0", got)
	}
}

func TestOutboxOpenKeepsQueued(t *testing.T) {
	o := NewOutbox(0)
	o.Open("conv-1")
	_ = o.Send(t.Context(), testAddr, "hello", "")
	o.Open("conv-1")

	if got := o.Pending("conv-1"); got != 1 {
		t.Errorf("Pending after reopen = %d, want 1", got)
	}
}

func TestOutboxUnknownConversationCreatesNothing(t *testing.T) {
	o := NewOutbox(0)

	start := time.Now()
	for _, id := range []string{"x1", "x2", "x3"} {
		if msgs := o.Wait(t.Context(), id, time.Second); len(msgs) != 0 {
			t.Errorf("Wait(%q) = %+v, want none", id, msgs)
		}
		if msgs := o.Drain(id); len(msgs) != 0 {
			t.Errorf("Drain(%q) = %+v, want none", id, msgs)
		}
	}
	if time.Since(start) >= time.Second {
		t.Error("Wait blocked on an unknown conversation")
	}
	if got := len(o.boxes); got != 0 {
		t.Errorf("%d mailboxes created, want 0", got)
	}
}
