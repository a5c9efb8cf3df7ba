package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/pitabwire/frame/config"

	"github.com/voicetyped/orderbot/pkg/urlvalidation"
)

// ErrNoLogHost is returned by LogEndpoint when no log host is configured.
var ErrNoLogHost = errors.New("BOT_LOG_HOSTNAME not set")

// OrderBotConfig holds configuration for the order bot service.
type OrderBotConfig struct {
	config.ConfigurationDefault

	// Recognizer
	LUISAppID    string `envDefault:""                                  env:"LUIS_APP_ID"`
	LUISAPIKey   string `envDefault:""                                  env:"LUIS_API_KEY"`
	LUISHostname string `envDefault:"westus.api.cognitive.microsoft.com" env:"LUIS_API_HOSTNAME"`
	LUISStaging  bool   `envDefault:"false"                             env:"LUIS_STAGING"`

	// Downstream log and holdings service.
	BotLogHostname          string `envDefault:""            env:"BOT_LOG_HOSTNAME"`
	BotLogAllowPrivate      bool   `envDefault:"true"        env:"BOT_LOG_ALLOW_PRIVATE"`
	BotLogRequireHTTPS      bool   `envDefault:"false"       env:"BOT_LOG_REQUIRE_HTTPS"`
	BotLogSigningSecret     string `envDefault:""            env:"BOT_LOG_SIGNING_SECRET"`
	BotLogToken             string `envDefault:""            env:"BOT_LOG_TOKEN"`
	DownstreamTimeoutSec    int    `envDefault:"10"          env:"DOWNSTREAM_TIMEOUT_SEC"`
	LogSinkBreakerThreshold int    `envDefault:"5"           env:"LOG_SINK_BREAKER_THRESHOLD"`
	LogSinkBreakerResetSec  int    `envDefault:"60"          env:"LOG_SINK_BREAKER_RESET_SEC"`

	// Dialog
	StockVocabularyPath string `envDefault:"./luis.json" env:"STOCK_VOCABULARY_PATH"`
	DialogDir           string `envDefault:"./dialogs"   env:"DIALOG_DIR"`
	DefaultLocale       string `envDefault:"en-US"       env:"DEFAULT_LOCALE"`
	SessionTTLMin       int    `envDefault:"30"          env:"SESSION_TTL_MIN"`
	OutboxMaxPending    int    `envDefault:"256"         env:"OUTBOX_MAX_PENDING"`

	// Features
	PricingEnabled    bool `envDefault:"true" env:"ORDER_PRICING_ENABLED"`
	TranscriptEnabled bool `envDefault:"true" env:"ORDER_TRANSCRIPT_ENABLED"`
	HoldingsEnabled   bool `envDefault:"true" env:"ORDER_HOLDINGS_ENABLED"`
}

// LUISEnabled reports whether the hosted recognizer is configured.
func (c *OrderBotConfig) LUISEnabled() bool {
	return c.LUISAppID != "" && c.LUISAPIKey != ""
}

// TranscriptLogging reports whether transcript events are sent. Both the
// toggle and a log host are required.
func (c *OrderBotConfig) TranscriptLogging() bool {
	return c.TranscriptEnabled && c.BotLogHostname != ""
}

// HoldingsQueries reports whether holdings queries are answered. Both the
// toggle and a log host are required.
func (c *OrderBotConfig) HoldingsQueries() bool {
	return c.HoldingsEnabled && c.BotLogHostname != ""
}

// LogBaseURL returns the log host as a URL. A bare host:port is taken to
// mean plain http.
func (c *OrderBotConfig) LogBaseURL() string {
	host := strings.TrimSpace(c.BotLogHostname)
	if host == "" || strings.Contains(host, "://") {
		return host
	}
	return "http://" + host
}

// LogEndpoint validates the log host and returns its base URL. The log
// service usually runs next to the bot, so loopback and private hosts are
// accepted unless BotLogAllowPrivate is turned off, in which case hostnames
// are resolved and every address is checked.
func (c *OrderBotConfig) LogEndpoint() (*url.URL, error) {
	raw := c.LogBaseURL()
	if raw == "" {
		return nil, ErrNoLogHost
	}

	var opts []urlvalidation.Option
	if c.BotLogAllowPrivate {
		opts = append(opts, urlvalidation.AllowPrivateIPs())
	} else {
		opts = append(opts, urlvalidation.Resolve())
	}
	if c.BotLogRequireHTTPS {
		opts = append(opts, urlvalidation.RequireHTTPS())
	}
	return urlvalidation.ValidateEndpoint(raw, opts...)
}

// DownstreamTimeout is the per-request timeout for log and holdings calls.
func (c *OrderBotConfig) DownstreamTimeout() time.Duration {
	return secondsOr(c.DownstreamTimeoutSec, 10)
}

// BreakerReset is how long the log sink breaker stays open.
func (c *OrderBotConfig) BreakerReset() time.Duration {
	return secondsOr(c.LogSinkBreakerResetSec, 60)
}

// SessionTTL is how long an idle conversation is kept.
func (c *OrderBotConfig) SessionTTL() time.Duration {
	if c.SessionTTLMin <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.SessionTTLMin) * time.Minute
}

func secondsOr(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}
