package dialog

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"text/template"
)

// Phase identifies which prompt, if any, is outstanding for a session.
type Phase string

const (
	// Entry is the phase of a session whose entry step has not run yet.
	Entry                Phase = ""
	AwaitingStock        Phase = "awaiting_stock"
	AwaitingQty          Phase = "awaiting_qty"
	AwaitingDirection    Phase = "awaiting_direction"
	AwaitingConfirmation Phase = "awaiting_confirmation"
	Finalized            Phase = "finalized"
	Cancelled            Phase = "cancelled"
)

// InitialPhase is the phase a fresh order dialog starts collecting in.
const InitialPhase = AwaitingStock

var transitions = map[Phase][]Phase{
	Entry:                {AwaitingStock, AwaitingQty, AwaitingDirection, AwaitingConfirmation},
	AwaitingStock:        {Entry, AwaitingQty, AwaitingDirection, AwaitingConfirmation, Cancelled},
	AwaitingQty:          {AwaitingDirection, AwaitingConfirmation, Cancelled},
	AwaitingDirection:    {AwaitingConfirmation, Cancelled},
	AwaitingConfirmation: {Finalized, Cancelled},
}

// Terminal reports whether no further turns are accepted in p.
func (p Phase) Terminal() bool {
	return p == Finalized || p == Cancelled
}

// String returns the phase name, "entry" for Entry.
func (p Phase) String() string {
	if p == Entry {
		return "entry"
	}
	return string(p)
}

// CanTransition reports whether the dialog may move from one phase to another.
func CanTransition(from, to Phase) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

var cancelPatterns sync.Map

func compileCancelPattern(pattern string) (*regexp.Regexp, error) {
	if cached, ok := cancelPatterns.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	cancelPatterns.Store(pattern, re)
	return re, nil
}

// Cancels reports whether text asks to abandon the dialog.
func (d *Definition) Cancels(text string) bool {
	if d.CancelPattern == "" {
		return false
	}
	re, err := compileCancelPattern(d.CancelPattern)
	if err != nil {
		return false
	}
	return re.MatchString(strings.TrimSpace(text))
}

// Validate checks the definition for consistency.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("dialog definition: name is required")
	}

	if _, err := compileCancelPattern(d.CancelPattern); err != nil {
		return fmt.Errorf("dialog %q: cancel_pattern: %w", d.Name, err)
	}

	for _, slot := range []string{SlotStock, SlotQty, SlotDirection, SlotConfirm} {
		text, ok := d.Prompts[slot]
		if !ok || strings.TrimSpace(text) == "" {
			return fmt.Errorf("dialog %q: prompt for slot %q is required", d.Name, slot)
		}
		if _, err := template.New(slot).Parse(text); err != nil {
			return fmt.Errorf("dialog %q: prompt for slot %q: %w", d.Name, slot, err)
		}
	}

	for name, text := range map[string]string{
		"completed":      d.Messages.Completed,
		"declined":       d.Messages.Declined,
		"not_understood": d.Messages.NotUnderstood,
	} {
		if _, err := template.New(name).Parse(text); err != nil {
			return fmt.Errorf("dialog %q: message %q: %w", d.Name, name, err)
		}
	}

	return nil
}
