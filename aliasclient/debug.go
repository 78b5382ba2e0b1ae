package aliasclient

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// debugLogger is the package-level zerolog logger for debug output.
var debugLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// ZerologReporter adapts a zerolog logger into a StatusReporter.
//
// Messages are emitted at debug level under the "alias" component:
//
//	client := aliasclient.New(
//	    aliasclient.WithStatusReporter(aliasclient.ZerologReporter(logger)),
//	)
func ZerologReporter(logger zerolog.Logger) StatusReporter {
	return func(message string) {
		logger.Debug().Str("component", "alias").Msg(message)
	}
}

// logRequest logs an outgoing request when debug mode is enabled.
func logRequest(logger zerolog.Logger, req *http.Request) {
	ev := logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String())
	if req.ContentLength > 0 {
		ev = ev.Int64("body_size", req.ContentLength)
	}
	ev.Msg("http request")
}

// logResponse logs a received response when debug mode is enabled.
func logResponse(logger zerolog.Logger, resp *http.Response, duration time.Duration) {
	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Msg("http response")
}
