package handler

import (
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/rs/xid"

	"github.com/voicetyped/orderbot/pkg/events"
)

const eventBuffer = 128

// EventsAPI streams order events to operators as newline-delimited JSON.
type EventsAPI struct {
	pub *events.Publisher
}

// NewEventsAPI creates a new event stream handler.
func NewEventsAPI(pub *events.Publisher) *EventsAPI {
	return &EventsAPI{pub: pub}
}

// RegisterRoutes registers the event stream on the given mux.
func (a *EventsAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/events", a.Stream)
}

// Stream handles GET /api/v1/events?type=order.turn&conversation_id=...
// Both filters are optional; type may be repeated or comma separated.
func (a *EventsAPI) Stream(w http.ResponseWriter, r *http.Request) {
	if a.pub == nil {
		http.Error(w, "event publisher not configured", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	filter := events.Filter{
		Types:          make(map[events.EventType]bool),
		ConversationID: r.URL.Query().Get("conversation_id"),
	}
	for _, v := range r.URL.Query()["type"] {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.Types[events.EventType(t)] = true
			}
		}
	}

	subID := xid.New().String()
	eventCh := a.pub.SubscribeFiltered(subID, eventBuffer, filter)
	defer a.pub.Unsubscribe(subID)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-eventCh:
			if !ok {
				return
			}
			line, err := sonic.Marshal(env)
			if err != nil {
				continue
			}
			if _, err := w.Write(append(line, '\n')); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
