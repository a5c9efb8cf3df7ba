package dialog

import "testing"

func TestExtract(t *testing.T) {
	in := &Intent{
		Name: IntentOrder,
		Entities: []Entity{
			StockEntity("Apple", "apple"),
			NumberEntity(5, "five"),
			DirectionEntity("short"),
		},
	}

	order := Extract(in)
	if order.Stock == nil || *order.Stock != "Apple" {
		t.Errorf("stock = %v, want Apple", order.Stock)
	}
	if order.Qty == nil || *order.Qty != 5 {
		t.Errorf("qty = %v, want 5", order.Qty)
	}
	if order.Direction == nil || *order.Direction != Sell {
		t.Errorf("direction = %v, want sell", order.Direction)
	}
	if order.Price != nil || order.Completed != nil {
		t.Error("extraction must not set price or completed")
	}
}

func TestExtractNilAndPartial(t *testing.T) {
	if order := Extract(nil); order.Stock != nil || order.Qty != nil || order.Direction != nil {
		t.Errorf("Extract(nil) = %+v, want empty", order)
	}

	in := &Intent{Entities: []Entity{StockEntity("", "telstra")}}
	if _, ok := ExtractStock(in); ok {
		t.Error("unresolved stock span extracted as canonical")
	}
	if got, ok := ExtractStockMention(in); !ok || got != "telstra" {
		t.Errorf("ExtractStockMention = (%q, %v), want (telstra, true)", got, ok)
	}
}

func TestOrderStateAssign(t *testing.T) {
	var order OrderState
	if err := order.Assign(SlotStock, "Apple"); err != nil {
		t.Fatalf("Assign stock: %v", err)
	}
	if err := order.Assign(SlotStock, "Sony"); err == nil {
		t.Error("expected ErrSlotFilled on overwrite")
	}
	if err := order.Assign(SlotQty, "five"); err == nil {
		t.Error("expected type error")
	}
	if err := order.Assign(SlotDirection, Sell); err != nil {
		t.Errorf("Assign direction: %v", err)
	}

	snap := order.Snapshot()
	*order.Stock = "Changed"
	if *snap.Stock != "Apple" {
		t.Errorf("snapshot stock = %q, want Apple", *snap.Stock)
	}
}

func TestRender(t *testing.T) {
	stock := "Apple"
	qty := 2.5
	price := 160.12
	dir := Buy
	order := OrderState{Stock: &stock, Qty: &qty, Price: &price, Direction: &dir}

	def := DefaultDefinition()
	got, err := Render(def.Prompts[SlotConfirm], order, "")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "Confirm you would like to place a buy order for 2.5 of Apple at AUD $160.12? The total value is $400.30"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}

	got, err = Render(def.Messages.NotUnderstood, OrderState{}, "hello")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Sorry, the OMS autobot didn't understand 'hello'. Type 'order' if you would like to place an order." {
		t.Errorf("Render = %q", got)
	}
}
