package connectutil

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/pitabwire/frame/security"
	connectInterceptors "github.com/pitabwire/frame/security/interceptors/connect"
	securityhttp "github.com/pitabwire/frame/security/interceptors/httptor"
)

// DefaultOptions returns the Connect handler options for unauthenticated
// endpoints: the JSON codec and request logging.
func DefaultOptions() []connect.HandlerOption {
	return []connect.HandlerOption{
		connect.WithCodec(JSONCodec{}),
		connect.WithInterceptors(
			NewLoggingInterceptor(),
		),
	}
}

// AuthenticatedOptions returns Connect handler options with frame's full
// security interceptor chain plus the JSON codec and request logging.
func AuthenticatedOptions(ctx context.Context, authenticator security.Authenticator) ([]connect.HandlerOption, error) {
	interceptors, err := connectInterceptors.DefaultList(ctx, authenticator)
	if err != nil {
		return nil, err
	}
	interceptors = append(interceptors, NewLoggingInterceptor())

	return []connect.HandlerOption{
		connect.WithCodec(JSONCodec{}),
		connect.WithInterceptors(interceptors...),
	}, nil
}

// AuthenticatedHTTPMiddleware wraps an http.Handler with frame's
// authentication middleware, validating bearer tokens on REST endpoints.
func AuthenticatedHTTPMiddleware(handler http.Handler, authenticator security.Authenticator) http.Handler {
	return securityhttp.AuthenticationMiddleware(handler, authenticator)
}

// DefaultClientOptions returns the Connect client options matching
// DefaultOptions.
func DefaultClientOptions() []connect.ClientOption {
	return []connect.ClientOption{
		connect.WithCodec(JSONCodec{}),
		connect.WithInterceptors(
			NewLoggingInterceptor(),
		),
	}
}

// conversationScoped is implemented by request messages that belong to a
// conversation, so log lines can be correlated with transcript events.
type conversationScoped interface {
	Conversation() string
}

// loggingInterceptor logs every unary RPC. Streaming calls pass through;
// no streaming procedures are served.
type loggingInterceptor struct{}

// NewLoggingInterceptor creates an interceptor that logs RPC procedure,
// duration and error code.
func NewLoggingInterceptor() connect.Interceptor {
	return &loggingInterceptor{}
}

func (l *loggingInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		start := time.Now()
		resp, err := next(ctx, req)

		attrs := []any{
			slog.String("procedure", req.Spec().Procedure),
			slog.Duration("duration", time.Since(start)),
		}
		if peer := req.Peer().Addr; peer != "" {
			attrs = append(attrs, slog.String("peer", peer))
		}
		if msg, ok := req.Any().(conversationScoped); ok && msg.Conversation() != "" {
			attrs = append(attrs, slog.String("conversation_id", msg.Conversation()))
		}

		if err != nil {
			attrs = append(attrs,
				slog.String("code", connect.CodeOf(err).String()),
				slog.String("error", err.Error()))
			slog.WarnContext(ctx, "rpc error", attrs...)
		} else {
			slog.DebugContext(ctx, "rpc ok", attrs...)
		}

		return resp, err
	}
}

func (l *loggingInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (l *loggingInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}
