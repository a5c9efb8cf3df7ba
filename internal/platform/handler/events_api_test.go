package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"

	"github.com/voicetyped/orderbot/pkg/events"
)

func TestEventsAPIStreamFilters(t *testing.T) {
	pub := events.NewPublisher(nil, "test", "")
	mux := http.NewServeMux()
	NewEventsAPI(pub).RegisterRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/events?type=order.cancelled&conversation_id=conv-1", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	// Headers are written after subscribing, so these are all observed.
	_ = pub.Emit(t.Context(), events.OrderTurn, "conv-1", &events.TurnData{Text: "order"})
	_ = pub.Emit(t.Context(), events.OrderCancelled, "conv-2", &events.CancelledData{Text: "cancel"})
	_ = pub.Emit(t.Context(), events.OrderCancelled, "conv-1", &events.CancelledData{Text: "nevermind"})

	scanner := bufio.NewScanner(resp.Body)
	if !scanner.Scan() {
		t.Fatalf("no event streamed: %v", scanner.Err())
	}
	var env events.Envelope
	if err := sonic.Unmarshal(scanner.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Type != events.OrderCancelled || env.ConversationID != "conv-1" {
		t.Errorf("envelope = %s/%s, want order.cancelled/conv-1", env.Type, env.ConversationID)
	}
}

func TestEventsAPIWithoutPublisher(t *testing.T) {
	rec := httptest.NewRecorder()
	NewEventsAPI(nil).Stream(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
