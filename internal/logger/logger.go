package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
)

type requestIDKey struct{}

// ContextWithRequestID stores the request id picked up by every *Context call
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request id stored in ctx, if any
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// requestHandler adds the request id of the record's context
type requestHandler struct {
	slog.Handler
}

func (h requestHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if id := RequestID(ctx); id != "" {
			r.AddAttrs(slog.String("request_id", id))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h requestHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return requestHandler{h.Handler.WithAttrs(attrs)}
}

func (h requestHandler) WithGroup(name string) slog.Handler {
	return requestHandler{h.Handler.WithGroup(name)}
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	switch strings.ToLower(level) {
	case "warning":
		return slog.LevelWarn
	case "":
		return slog.LevelInfo
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Initialize sets up the global logger writing to stdout
func Initialize(level, format string) {
	InitializeWriter(os.Stdout, level, format)
}

// InitializeWriter sets up the global logger. format is "json" or "text".
func InitializeWriter(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(requestHandler{handler})
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	slog.SetDefault(l)
}

// Get returns the global logger, creating an info/text one on first use
func Get() *slog.Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l == nil {
		Initialize("info", "text")
		return Get()
	}
	return l
}

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }
func Info(msg string, args ...any)  { Get().Info(msg, args...) }
func Warn(msg string, args ...any)  { Get().Warn(msg, args...) }
func Error(msg string, args ...any) { Get().Error(msg, args...) }

func DebugContext(ctx context.Context, msg string, args ...any) {
	Get().DebugContext(ctx, msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	Get().InfoContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	Get().WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	Get().ErrorContext(ctx, msg, args...)
}

// trace writes one process-tracking line. A non-nil err raises it to error level.
func trace(msg string, err error, attrs []any, args []any) {
	attrs = append(attrs, args...)
	if err != nil {
		Get().Error(msg+" failed", append(attrs, "error", err)...)
		return
	}
	Get().Debug(msg, attrs...)
}

// EnterMethod logs service method entry at debug level
func EnterMethod(method string, args ...any) {
	trace("→ enter", nil, []any{"method", method}, args)
}

// ExitMethod logs a successful service method exit at debug level
func ExitMethod(method string, args ...any) {
	trace("← exit", nil, []any{"method", method}, args)
}

// ExitMethodWithError logs a failed service method exit
func ExitMethodWithError(method string, err error, args ...any) {
	trace("← exit", err, []any{"method", method}, args)
}

// DatabaseCall logs a statement about to run
func DatabaseCall(operation, query string, args ...any) {
	trace("→ db", nil, []any{"operation", operation, "query", query}, args)
}

// DatabaseResult logs the outcome of a statement
func DatabaseResult(operation string, rowsAffected int64, err error, args ...any) {
	trace("← db", err, []any{"operation", operation, "rows_affected", rowsAffected}, args)
}

// ExternalServiceCall logs a call to storage, mail, geocoding or redis
func ExternalServiceCall(service, operation string, args ...any) {
	trace("→ external", nil, []any{"service", service, "operation", operation}, args)
}

// ExternalServiceResult logs the outcome of an external call
func ExternalServiceResult(service, operation string, err error, args ...any) {
	trace("← external", err, []any{"service", service, "operation", operation}, args)
}
