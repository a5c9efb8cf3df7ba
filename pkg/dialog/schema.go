package dialog

import "strings"

// PromptKind selects how the platform renders a prompt.
type PromptKind string

const (
	PromptText    PromptKind = "text"
	PromptNumber  PromptKind = "number"
	PromptChoice  PromptKind = "choice"
	PromptConfirm PromptKind = "confirm"
)

// ListStyleButton renders choices as buttons.
const ListStyleButton = "button"

// UnmatchedPolicy decides what an unresolvable reply does to the dialog.
type UnmatchedPolicy int

const (
	// Reprompt asks the same question again using the retry text.
	Reprompt UnmatchedPolicy = iota
	// Restart runs the entry step again, keeping the partial order.
	Restart
)

// SlotSpec describes one piece of information the dialog collects.
type SlotSpec struct {
	Name          string
	Phase         Phase
	Kind          PromptKind
	Prompt        string
	Choices       []string
	ListStyle     string
	Resolver      Resolver
	DependsOnText bool
	OnUnmatched   UnmatchedPolicy
}

// Schema is the ordered list of slots a dialog fills.
type Schema []SlotSpec

// OrderSchema builds the stock order schema from a definition's prompts.
// vocabulary is the closed list of canonical stock names.
func OrderSchema(def *Definition, vocabulary []string) Schema {
	slot := func(name string, phase Phase, kind PromptKind, r Resolver) SlotSpec {
		prompt := def.Prompts[name]
		return SlotSpec{
			Name:          name,
			Phase:         phase,
			Kind:          kind,
			Prompt:        prompt,
			Resolver:      r,
			DependsOnText: strings.Contains(prompt, "{{"),
		}
	}

	stock := slot(SlotStock, AwaitingStock, PromptText, VocabularyResolver{Vocabulary: vocabulary})
	stock.OnUnmatched = Restart

	direction := slot(SlotDirection, AwaitingDirection, PromptChoice, DirectionResolver{Choices: DirectionChoices})
	direction.Choices = DirectionChoices
	direction.ListStyle = ListStyleButton

	return Schema{
		stock,
		slot(SlotQty, AwaitingQty, PromptNumber, NumberResolver{}),
		direction,
		slot(SlotConfirm, AwaitingConfirmation, PromptConfirm, ConfirmResolver{}),
	}
}

// ForPhase returns the slot whose answer is outstanding in phase p.
func (s Schema) ForPhase(p Phase) (SlotSpec, bool) {
	for _, slot := range s {
		if slot.Phase == p {
			return slot, true
		}
	}
	return SlotSpec{}, false
}

// Next returns the first slot the order has not filled.
func (s Schema) Next(order OrderState) (SlotSpec, bool) {
	for _, slot := range s {
		if !order.Filled(slot.Name) {
			return slot, true
		}
	}
	return SlotSpec{}, false
}
