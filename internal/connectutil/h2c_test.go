package connectutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestH2CHandlerServesHTTP1(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.Proto)
	})
	server := httptest.NewServer(H2CHandler(inner))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "HTTP/1.1" {
		t.Errorf("proto = %q, want HTTP/1.1", body)
	}
}
