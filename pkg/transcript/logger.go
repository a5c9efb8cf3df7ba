package transcript

import (
	"context"
	"log/slog"
	"time"

	"github.com/pitabwire/frame/workerpool"
	"github.com/pitabwire/util"

	"github.com/voicetyped/orderbot/pkg/dialog"
	"github.com/voicetyped/orderbot/pkg/events"
)

// Logger implements dialog.Recorder. Each record is snapshotted
// synchronously and delivered in the background; failures are logged and
// dropped.
type Logger struct {
	sink      Sink
	pool      workerpool.WorkerPool
	publisher *events.Publisher
	timeout   time.Duration

	// delivered, when set, is called after every delivery attempt.
	delivered func(Event, error)
}

// LoggerOption configures a Logger.
type LoggerOption func(*Logger)

// WithPool runs deliveries on a frame worker pool instead of bare goroutines.
func WithPool(pool workerpool.WorkerPool) LoggerOption {
	return func(l *Logger) { l.pool = pool }
}

// WithPublisher reports dropped records as events.
func WithPublisher(pub *events.Publisher) LoggerOption {
	return func(l *Logger) { l.publisher = pub }
}

// WithTimeout bounds each delivery.
func WithTimeout(d time.Duration) LoggerOption {
	return func(l *Logger) { l.timeout = d }
}

// WithDeliveryHook observes delivery results.
func WithDeliveryHook(fn func(Event, error)) LoggerOption {
	return func(l *Logger) { l.delivered = fn }
}

// NewLogger creates a transcript logger writing to sink.
func NewLogger(sink Sink, opts ...LoggerOption) *Logger {
	l := &Logger{sink: sink, timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record implements dialog.Recorder.
func (l *Logger) Record(ctx context.Context, sess *dialog.Session, message string, choices []string) {
	ev := NewEvent(sess, sess.Order, message, choices)
	ctx = context.WithoutCancel(ctx)

	task := func() { l.deliver(ctx, ev) }
	if l.pool != nil {
		if err := l.pool.Submit(ctx, task); err != nil {
			slog.WarnContext(ctx, "transcript pool full, dropping record",
				slog.String("conversation_id", ev.ConversationID))
		}
		return
	}
	go task()
}

func (l *Logger) deliver(ctx context.Context, ev Event) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	err := l.sink.Put(ctx, ev)
	if err != nil {
		util.Log(ctx).WithError(err).Error("transcript record dropped")
		_ = l.publisher.Emit(ctx, events.TranscriptDrop, ev.ConversationID, &events.TranscriptDropData{
			Message: ev.LastSystemMessage,
			Error:   err.Error(),
		})
	}
	if l.delivered != nil {
		l.delivered(ev, err)
	}
}
