package connectutil

import (
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const (
	maxStreamsPerConn = 100
	maxFrameSize      = 1 << 16
	idleConnTimeout   = 2 * time.Minute
)

// H2CHandler serves handler over HTTP/1.1 and cleartext HTTP/2. Turns are
// small unary calls; the event stream is the only long-lived request.
func H2CHandler(handler http.Handler) http.Handler {
	return h2c.NewHandler(handler, &http2.Server{
		MaxConcurrentStreams: maxStreamsPerConn,
		MaxReadFrameSize:     maxFrameSize,
		IdleTimeout:          idleConnTimeout,
	})
}
