package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"taxitrack/internal/general/contextx"
)

// New builds a JSON slog logger tagged with the service name.
func New(service string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			return a
		},
	}).WithAttrs([]slog.Attr{
		slog.String("service", service),
		slog.String("hostname", hostname()),
	})

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

// Info writes an INFO line with the action name and any context correlation ids.
func Info(ctx context.Context, log *slog.Logger, action, message string, attrs ...any) {
	log.Info(message, append(baseAttrs(ctx, action), attrs...)...)
}

// Debug writes a DEBUG line.
func Debug(ctx context.Context, log *slog.Logger, action, message string, attrs ...any) {
	log.Debug(message, append(baseAttrs(ctx, action), attrs...)...)
}

// Warn writes a WARN line.
func Warn(ctx context.Context, log *slog.Logger, action, message string, attrs ...any) {
	log.Warn(message, append(baseAttrs(ctx, action), attrs...)...)
}

// Error writes an ERROR line with the error message and a short stack.
func Error(ctx context.Context, log *slog.Logger, action, message string, err error, attrs ...any) {
	all := append(baseAttrs(ctx, action), attrs...)
	if err != nil {
		all = append(all, slog.Group("error",
			"msg", err.Error(),
			"stack", shortStack(3, 8),
		))
	}
	log.Error(message, all...)
}

func baseAttrs(ctx context.Context, action string) []any {
	attrs := []any{"action", action}
	if id := contextx.GetRequestID(ctx); id != "" {
		attrs = append(attrs, "request_id", id)
	}
	if id := contextx.GetRideID(ctx); id != "" {
		attrs = append(attrs, "ride_id", id)
	}
	return attrs
}

// shortStack renders a compact caller stack, skipping runtime and logger frames.
func shortStack(skip, max int) string {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	count := 0
	for {
		f, more := frames.Next()
		fn := f.Function
		if strings.HasPrefix(fn, "runtime.") || strings.Contains(fn, "/logger.") {
			if !more {
				break
			}
			continue
		}
		file := filepath.Base(f.File)
		if i := strings.LastIndex(fn, "."); i >= 0 && i+1 < len(fn) {
			fn = fn[i+1:]
		}
		fmt.Fprintf(&b, "%s %s:%d\n", fn, file, f.Line)
		count++
		if count >= max || !more {
			break
		}
	}
	return strings.TrimSpace(b.String())
}

func hostname() string {
	name, _ := os.Hostname()
	return name
}
