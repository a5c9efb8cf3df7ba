package dialog

// Slot names used by the order schema and by OrderState.
const (
	SlotStock     = "stock"
	SlotQty       = "qty"
	SlotDirection = "direction"
	SlotConfirm   = "completed"
)

// Definition is a YAML-mappable description of the texts and cancellation
// behaviour of the order dialog. Loaded files are overlaid on
// DefaultDefinition, so a file only needs the fields it changes.
type Definition struct {
	Name          string            `yaml:"name"           json:"name"`
	Version       string            `yaml:"version"        json:"version"`
	Description   string            `yaml:"description"    json:"description"`
	Locale        string            `yaml:"locale"         json:"locale"`
	CancelPattern string            `yaml:"cancel_pattern" json:"cancel_pattern"`
	CancelMessage string            `yaml:"cancel_message" json:"cancel_message"`
	RetrySuffix   string            `yaml:"retry_suffix"   json:"retry_suffix"`
	Prompts       map[string]string `yaml:"prompts"        json:"prompts"`
	Messages      Messages          `yaml:"messages"       json:"messages"`
}

// Messages holds the non-prompt texts sent by the bot.
type Messages struct {
	Completed     string `yaml:"completed"      json:"completed"`
	Declined      string `yaml:"declined"       json:"declined"`
	NotUnderstood string `yaml:"not_understood" json:"not_understood"`
}

// DefaultDefinition returns the built-in order dialog texts.
func DefaultDefinition() Definition {
	return Definition{
		Name:          "order",
		Version:       "1.0",
		Description:   "Stock buy/sell order taking",
		Locale:        "en-US",
		CancelPattern: `(?i)^(cancel|nevermind)`,
		CancelMessage: "Order canceled.",
		RetrySuffix:   " Say cancel to dismiss me",
		Prompts: map[string]string{
			SlotStock:     "What stock would you like to order?",
			SlotQty:       "How many {{.Stock}} would you like to order?",
			SlotDirection: "Would you like to buy or sell {{.Stock}}?",
			SlotConfirm: "Confirm you would like to place a {{.Direction}} order for {{.Qty}} of {{.Stock}}" +
				"{{if .Priced}} at AUD ${{.Price}}? The total value is ${{.Total}}{{else}}?{{end}}",
		},
		Messages: Messages{
			Completed: "OK, order completed!{{if .Priced}} Total value is AUD ${{.Total}}" +
				" at an average price of ${{.Price}} per share.{{end}}",
			Declined:      "Order cancelled.",
			NotUnderstood: "Sorry, the OMS autobot didn't understand '{{.Text}}'. Type 'order' if you would like to place an order.",
		},
	}
}

// Definition returns d itself so a fixed definition can be handed to
// NewEngine wherever a DefinitionSource is expected.
func (d *Definition) Definition() *Definition {
	return d
}

// DefinitionSource yields the definition to use for the next turn.
// Loader implements it with hot-reloaded files.
type DefinitionSource interface {
	Definition() *Definition
}
