package config

import (
	"errors"
	"testing"
	"time"
)

func TestFeatureTogglesRequireLogHost(t *testing.T) {
	cfg := OrderBotConfig{TranscriptEnabled: true, HoldingsEnabled: true}
	if cfg.TranscriptLogging() || cfg.HoldingsQueries() {
		t.Error("features enabled without a log host")
	}

	cfg.BotLogHostname = "localhost:8080"
	if !cfg.TranscriptLogging() || !cfg.HoldingsQueries() {
		t.Error("features disabled with a log host")
	}

	cfg.HoldingsEnabled = false
	if cfg.HoldingsQueries() {
		t.Error("holdings enabled after toggling off")
	}
}

func TestLogBaseURL(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{host: "", want: ""},
		{host: "localhost:8080", want: "http://localhost:8080"},
		{host: "https://log.example.com", want: "https://log.example.com"},
	}
	for _, tt := range tests {
		cfg := OrderBotConfig{BotLogHostname: tt.host}
		if got := cfg.LogBaseURL(); got != tt.want {
			t.Errorf("LogBaseURL(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestDurations(t *testing.T) {
	var cfg OrderBotConfig
	if got := cfg.DownstreamTimeout(); got != 10*time.Second {
		t.Errorf("DownstreamTimeout() = %v, want 10s", got)
	}
	if got := cfg.SessionTTL(); got != 30*time.Minute {
		t.Errorf("SessionTTL() = %v, want 30m", got)
	}

	cfg.LogSinkBreakerResetSec = 5
	if got := cfg.BreakerReset(); got != 5*time.Second {
		t.Errorf("BreakerReset() = %v, want 5s", got)
	}
}

func TestLUISEnabled(t *testing.T) {
	cfg := OrderBotConfig{LUISAppID: "app"}
	if cfg.LUISEnabled() {
		t.Error("LUIS enabled without a key")
	}
	cfg.LUISAPIKey = "key"
	if !cfg.LUISEnabled() {
		t.Error("LUIS disabled with app id and key")
	}
}

func TestLogEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		cfg     OrderBotConfig
		want    string
		wantErr bool
	}{
		{
			name: "co-located loopback host",
			cfg:  OrderBotConfig{BotLogHostname: "localhost:8080", BotLogAllowPrivate: true},
			want: "http://localhost:8080",
		},
		{
			name: "loopback url with scheme",
			cfg:  OrderBotConfig{BotLogHostname: "http://localhost:8080/", BotLogAllowPrivate: true},
			want: "http://localhost:8080",
		},
		{
			name:    "loopback refused when private hosts are off",
			cfg:     OrderBotConfig{BotLogHostname: "localhost:8080"},
			wantErr: true,
		},
		{
			name:    "private ip refused when private hosts are off",
			cfg:     OrderBotConfig{BotLogHostname: "http://10.1.2.3"},
			wantErr: true,
		},
		{
			name:    "plain http refused when https is required",
			cfg:     OrderBotConfig{BotLogHostname: "localhost:8080", BotLogAllowPrivate: true, BotLogRequireHTTPS: true},
			wantErr: true,
		},
		{
			name: "https accepted when required",
			cfg:  OrderBotConfig{BotLogHostname: "https://127.0.0.1:8443", BotLogAllowPrivate: true, BotLogRequireHTTPS: true},
			want: "https://127.0.0.1:8443",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := tt.cfg.LogEndpoint()
			if (err != nil) != tt.wantErr {
				t.Fatalf("LogEndpoint() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && u.String() != tt.want {
				t.Errorf("LogEndpoint() = %q, want %q", u.String(), tt.want)
			}
		})
	}
}

func TestLogEndpointWithoutHost(t *testing.T) {
	var cfg OrderBotConfig
	if _, err := cfg.LogEndpoint(); !errors.Is(err, ErrNoLogHost) {
		t.Errorf("err = %v, want ErrNoLogHost", err)
	}
}
