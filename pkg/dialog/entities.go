package dialog

// Intent names the recognizer routes on.
const (
	IntentOrder      = "Order"
	IntentOrderQuery = "OrderQuery"
	IntentNone       = "None"
)

// EntityKind tags which field of an Entity is meaningful.
type EntityKind int

const (
	EntityStock EntityKind = iota + 1
	EntityNumber
	EntityDirection
)

func (k EntityKind) String() string {
	switch k {
	case EntityStock:
		return "stock"
	case EntityNumber:
		return "number"
	case EntityDirection:
		return "direction"
	}
	return "unknown"
}

// Entity is one pre-parsed value from an utterance. Text is the span the
// user actually said; exactly one of Stock, Number or Direction is set
// according to Kind.
type Entity struct {
	Kind      EntityKind
	Text      string
	Stock     string
	Number    float64
	Direction Direction
}

// Intent is a recognizer's reading of one utterance.
type Intent struct {
	Name     string
	Score    float64
	Entities []Entity
}

// StockEntity builds a stock entity. canonical is the vocabulary form the
// recognizer resolved the span to and may be empty when it could not.
func StockEntity(canonical, text string) Entity {
	return Entity{Kind: EntityStock, Stock: canonical, Text: text}
}

// NumberEntity builds a numeric entity.
func NumberEntity(n float64, text string) Entity {
	return Entity{Kind: EntityNumber, Number: n, Text: text}
}

// DirectionEntity builds a direction entity, normalising the spoken form.
func DirectionEntity(text string) Entity {
	return Entity{Kind: EntityDirection, Direction: NormaliseDirection(text), Text: text}
}

func (in *Intent) find(kind EntityKind) (Entity, bool) {
	if in == nil {
		return Entity{}, false
	}
	for _, e := range in.Entities {
		if e.Kind == kind {
			return e, true
		}
	}
	return Entity{}, false
}

// ExtractStock returns the canonical stock named by the intent.
func ExtractStock(in *Intent) (string, bool) {
	e, ok := in.find(EntityStock)
	if !ok || e.Stock == "" {
		return "", false
	}
	return e.Stock, true
}

// ExtractStockMention returns the canonical stock, or the raw span when the
// recognizer could not resolve it.
func ExtractStockMention(in *Intent) (string, bool) {
	e, ok := in.find(EntityStock)
	if !ok {
		return "", false
	}
	if e.Stock != "" {
		return e.Stock, true
	}
	return e.Text, e.Text != ""
}

// ExtractQty returns the first number in the intent.
func ExtractQty(in *Intent) (float64, bool) {
	e, ok := in.find(EntityNumber)
	if !ok {
		return 0, false
	}
	return e.Number, true
}

// ExtractDirection returns the normalised order direction.
func ExtractDirection(in *Intent) (Direction, bool) {
	e, ok := in.find(EntityDirection)
	if !ok || e.Text == "" && e.Direction == "" {
		return "", false
	}
	if e.Direction == "" {
		return NormaliseDirection(e.Text), true
	}
	return e.Direction, true
}

// Extract fills the slots an intent already answers.
func Extract(in *Intent) OrderState {
	var order OrderState
	if stock, ok := ExtractStock(in); ok {
		order.Stock = &stock
	}
	if qty, ok := ExtractQty(in); ok {
		order.Qty = &qty
	}
	if dir, ok := ExtractDirection(in); ok {
		order.Direction = &dir
	}
	return order
}
