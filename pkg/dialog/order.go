package dialog

import (
	"errors"
	"fmt"
	"strconv"
)

// Direction is the side of an order.
type Direction string

const (
	Buy  Direction = "buy"
	Sell Direction = "sell"
)

// ErrSlotFilled is returned when a resolved value targets a slot that already
// holds a value. Slots are only cleared by the restart path.
var ErrSlotFilled = errors.New("slot already filled")

// OrderState is the partially filled order carried by a session. Nil fields
// are unset. Price is computed by the engine, never supplied by the user.
type OrderState struct {
	Stock     *string    `json:"stock,omitempty"`
	Qty       *float64   `json:"qty,omitempty"`
	Direction *Direction `json:"direction,omitempty"`
	Price     *float64   `json:"price,omitempty"`
	Completed *bool      `json:"completed,omitempty"`
}

// Filled reports whether the named slot holds a value.
func (o *OrderState) Filled(slot string) bool {
	switch slot {
	case SlotStock:
		return o.Stock != nil
	case SlotQty:
		return o.Qty != nil
	case SlotDirection:
		return o.Direction != nil
	case SlotConfirm:
		return o.Completed != nil
	}
	return false
}

// Assign stores a resolved value in an empty slot.
func (o *OrderState) Assign(slot string, value any) error {
	if o.Filled(slot) {
		return fmt.Errorf("%w: %s", ErrSlotFilled, slot)
	}

	switch v := value.(type) {
	case string:
		if slot == SlotStock {
			o.Stock = &v
			return nil
		}
	case float64:
		if slot == SlotQty {
			o.Qty = &v
			return nil
		}
	case Direction:
		if slot == SlotDirection {
			o.Direction = &v
			return nil
		}
	case bool:
		if slot == SlotConfirm {
			o.Completed = &v
			return nil
		}
	}
	return fmt.Errorf("slot %q cannot hold %T", slot, value)
}

// Total returns price*qty, or false while either is unknown.
func (o *OrderState) Total() (float64, bool) {
	if o.Price == nil || o.Qty == nil {
		return 0, false
	}
	return *o.Price * *o.Qty, true
}

// Snapshot returns a deep copy that later turns cannot mutate.
func (o OrderState) Snapshot() OrderState {
	var cp OrderState
	if o.Stock != nil {
		v := *o.Stock
		cp.Stock = &v
	}
	if o.Qty != nil {
		v := *o.Qty
		cp.Qty = &v
	}
	if o.Direction != nil {
		v := *o.Direction
		cp.Direction = &v
	}
	if o.Price != nil {
		v := *o.Price
		cp.Price = &v
	}
	if o.Completed != nil {
		v := *o.Completed
		cp.Completed = &v
	}
	return cp
}

// FormatQty renders a quantity without trailing zeros ("5", "2.5").
func FormatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// FormatMoney renders an amount rounded to cents.
func FormatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
