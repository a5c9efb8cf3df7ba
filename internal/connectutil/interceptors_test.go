package connectutil

import (
	"testing"
)

func TestNewLoggingInterceptor(t *testing.T) {
	interceptor := NewLoggingInterceptor()
	if interceptor == nil {
		t.Fatal("expected non-nil interceptor")
	}
}

func TestDefaultOptions(t *testing.T) {
	if len(DefaultOptions()) != 2 {
		t.Fatalf("handler options = %d, want codec and interceptors", len(DefaultOptions()))
	}
	if len(DefaultClientOptions()) != 2 {
		t.Fatalf("client options = %d, want codec and interceptors", len(DefaultClientOptions()))
	}
}

func TestJSONCodec(t *testing.T) {
	type msg struct {
		ConversationID string `json:"conversation_id"`
		Text           string `json:"text"`
	}

	var c JSONCodec
	if c.Name() != "json" {
		t.Errorf("Name() = %q, want json", c.Name())
	}

	raw, err := c.Marshal(&msg{ConversationID: "c1", Text: "order"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got msg
	if err := c.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ConversationID != "c1" || got.Text != "order" {
		t.Errorf("round trip = %+v", got)
	}

	if err := c.Unmarshal(nil, &got); err != nil {
		t.Errorf("Unmarshal(empty) = %v, want nil", err)
	}
}
