package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Logger writes one structured line per request with request_id, method,
// path, status, latency_ms and, once authenticated, subject.
//
// A handler error is rendered through the app's ErrorHandler before logging so
// the recorded status is the one the client receives.
func Logger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			resolveError(c, err)
		}

		status := c.Response().StatusCode()
		rid, _ := c.Locals(RequestIDLocalKey).(string)

		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error()
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev = ev.
			Str("request_id", rid).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Float64("latency_ms", float64(time.Since(start).Microseconds())/1000)
		if who, ok := IdentityFromCtx(c); ok {
			ev = ev.Str("subject", who.Subject)
		}
		ev.Msg("request")
		return nil
	}
}

// resolveError hands err to the app ErrorHandler. If that fails too the
// response falls back to a bare 500.
func resolveError(c *fiber.Ctx, err error) {
	if herr := c.App().ErrorHandler(c, err); herr != nil {
		_ = c.SendStatus(fiber.StatusInternalServerError)
	}
}
