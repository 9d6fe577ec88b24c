package middleware

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"

	"pdfchat/internal/logging"
)

// UserIDLocalKey is where the auth guard stores the signed-in user's ID.
const UserIDLocalKey = "user_id"

// Logger writes one access log record per request:
// request_id, method, path, status, latency (ms) and ip, plus user_id when signed in
// and trace_id when the request carries a span.
func Logger(logger *slog.Logger) fiber.Handler {
	log := logger.With("component", "http")

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		attrs := []any{
			"request_id", rid,
			"method", c.Method(),
			"path", c.Path(),
			"status", statusOf(c, err),
			"latency", float64(time.Since(start).Microseconds()) / 1000,
			"ip", c.IP(),
		}
		if uid, ok := c.Locals(UserIDLocalKey).(string); ok && uid != "" {
			attrs = append(attrs, "user_id", uid)
		}
		if sc := trace.SpanContextFromContext(c.UserContext()); sc.IsValid() {
			attrs = append(attrs, "trace_id", sc.TraceID().String())
		}

		log.Info("http_request", attrs...)
		return err
	}
}

// LoggerWithWriter is Logger on a JSON logger writing to w with timestamps in loc.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logging.NewWithWriter(w, "info", loc))
}

// statusOf returns the status the error handler will send for err, or the
// response status when err is nil.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
