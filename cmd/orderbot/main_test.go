package main

import (
	"testing"

	obconfig "github.com/voicetyped/orderbot/config"
)

func TestLogEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		cfg    obconfig.OrderBotConfig
		wantOK bool
	}{
		{name: "no host", cfg: obconfig.OrderBotConfig{}, wantOK: false},
		{name: "loopback host", cfg: obconfig.OrderBotConfig{BotLogHostname: "localhost:8080", BotLogAllowPrivate: true}, wantOK: true},
		{name: "loopback host refused", cfg: obconfig.OrderBotConfig{BotLogHostname: "localhost:8080"}, wantOK: false},
		{name: "bad scheme", cfg: obconfig.OrderBotConfig{BotLogHostname: "ftp://logs.example.com", BotLogAllowPrivate: true}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, ok := logEndpoint(&tt.cfg)
			if ok != tt.wantOK {
				t.Fatalf("logEndpoint() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && base == nil {
				t.Error("logEndpoint() returned ok without a URL")
			}
		})
	}
}
