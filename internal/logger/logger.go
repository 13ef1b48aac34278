package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Log is the global logger instance
var Log *slog.Logger

// Options configures the global logger.
type Options struct {
	Dev       bool
	SentryDSN string
	Env       string
	Service   string
}

// Init initializes the global logger based on environment
// Development: Text format with Debug level
// Production: JSON format with Info level
// Errors are additionally shipped to Sentry when a DSN is configured
func Init(opts Options) {
	var handlers []slog.Handler

	if opts.Dev {
		handlers = append(handlers, slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              opts.SentryDSN,
			Environment:      opts.Env,
			TracesSampleRate: 0.2,
		})
		if err == nil {
			handlers = append(handlers, slogsentry.Option{
				Level: slog.LevelError,
			}.NewSentryHandler())
		} else {
			slog.Warn("sentry init failed, continuing without it", "error", err)
		}
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}

	Log = slog.New(handler)
	if opts.Service != "" {
		Log = Log.With("service", opts.Service)
	}
	slog.SetDefault(Log)
}

// Flush waits for buffered Sentry events before the process exits.
func Flush() {
	sentry.Flush(2 * time.Second)
}
