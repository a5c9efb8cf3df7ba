package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/voicetyped/orderbot/internal/restutil"
)

// Sink accepts transcript events.
type Sink interface {
	Put(ctx context.Context, ev Event) error
}

// BreakerConfig controls when the HTTP sink stops calling a failing log service.
type BreakerConfig struct {
	FailureThreshold uint32
	ResetTimeout     time.Duration
}

// HTTPSink writes events with PUT <base>/order/log. Calls go through a
// circuit breaker so a dead log service is not hammered on every turn.
type HTTPSink struct {
	client  *restutil.Client
	url     string
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewHTTPSink creates a sink rooted at base.
func NewHTTPSink(client *restutil.Client, base *url.URL, cfg BreakerConfig) *HTTPSink {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}

	threshold := cfg.FailureThreshold
	return &HTTPSink{
		client: client,
		url:    base.JoinPath("order", "log").String(),
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        "transcript-sink",
			MaxRequests: 1,
			Timeout:     cfg.ResetTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state changed",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}),
	}
}

// Put sends one event. The response body is ignored.
func (s *HTTPSink) Put(ctx context.Context, ev Event) error {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		_, err := s.client.Do(ctx, http.MethodPut, s.url, ev)
		return struct{}{}, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("transcript sink unavailable: %w", err)
	}
	return err
}
