package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/voicetyped/orderbot/internal/connectutil"
	"github.com/voicetyped/orderbot/internal/platform"
	platformhandler "github.com/voicetyped/orderbot/internal/platform/handler"
	"github.com/voicetyped/orderbot/internal/recognizer"
	"github.com/voicetyped/orderbot/pkg/catalog"
	"github.com/voicetyped/orderbot/pkg/conversation"
	"github.com/voicetyped/orderbot/pkg/dialog"
)

func startBot(t *testing.T) string {
	t.Helper()

	stocks := catalog.New("Apple", "IBM", "Sony")
	def := dialog.DefaultDefinition()
	outbox := platform.NewOutbox(0)
	engine := dialog.NewEngine(&def, outbox, dialog.WithVocabulary(stocks.Names()))
	h := platformhandler.NewConversationHandler(engine, recognizer.Keyword{Catalog: stocks}, &def, outbox)

	mux := http.NewServeMux()
	path, hdlr := conversation.NewServiceHandler(h, connectutil.DefaultOptions()...)
	mux.Handle(path, hdlr)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server.URL
}

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func wantOutput(t *testing.T, out string, lines ...string) {
	t.Helper()
	for _, l := range lines {
		if !strings.Contains(out, l) {
			t.Errorf("output missing %q:\n%s", l, out)
		}
	}
}

func TestChatSingleMessage(t *testing.T) {
	url := startBot(t)

	out, err := runCommand(t, "", "chat", "--server", url, "--conversation", "c1", "--wait", "0", "order", "Apple")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	wantOutput(t, out,
		"conversation c1",
		"bot> How many Apple would you like to order?",
	)
}

func TestChatFromStdin(t *testing.T) {
	url := startBot(t)

	out, err := runCommand(t, "order 5 IBM\n\n2\nyes\n", "chat", "--server", url, "--conversation", "c2", "--wait", "0")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	wantOutput(t, out,
		"bot> Would you like to buy or sell IBM?",
		"1. Buy  2. Sell",
		"bot> Confirm you would like to place a sell order for 5 of IBM?",
		"bot> OK, order completed!",
	)
}

func TestShowAndEnd(t *testing.T) {
	url := startBot(t)

	if _, err := runCommand(t, "", "chat", "--server", url, "--conversation", "c3", "--wait", "0", "order", "3", "Sony"); err != nil {
		t.Fatalf("chat: %v", err)
	}

	out, err := runCommand(t, "", "show", "--server", url, "c3")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	wantOutput(t, out,
		"Conversation: c3",
		"stock=Sony qty=3 direction=?",
		"awaiting_direction",
	)

	out, err = runCommand(t, "", "end", "--server", url, "c3")
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	wantOutput(t, out, "Conversation ended: c3")

	if _, err := runCommand(t, "", "show", "--server", url, "c3"); err == nil {
		t.Error("show succeeded for an ended conversation")
	}
}

func TestDescribeOrder(t *testing.T) {
	stock := "Apple"
	qty := 2.5
	price := 160.12
	dir := dialog.Sell

	tests := []struct {
		order dialog.OrderState
		want  string
	}{
		{dialog.OrderState{Stock: &stock, Qty: &qty, Direction: &dir, Price: &price}, "stock=Apple qty=2.5 direction=sell price=160.12 total=400.30"},
		{dialog.OrderState{}, "stock=? qty=? direction=?"},
	}
	for _, tt := range tests {
		if got := describeOrder(tt.order); got != tt.want {
			t.Errorf("describeOrder() = %q, want %q", got, tt.want)
		}
	}
}
