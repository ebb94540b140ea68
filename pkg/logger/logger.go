package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text handler for development, JSON for production
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithEventID adds the event scope to logger context
func (l *Logger) WithEventID(eventID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("event_id", eventID)),
	}
}

// WithActorID adds the acting staff/owner id to logger context
func (l *Logger) WithActorID(actorID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("actor_id", actorID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// HTTP logging

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
	)
}

// Guest lifecycle logging

// LogCheckIn logs a successful guest check-in
func (l *Logger) LogCheckIn(ctx context.Context, eventID, guestID, actorID string, companions int) {
	l.Logger.InfoContext(ctx,
		"Guest Checked In",
		slog.String("event_id", eventID),
		slog.String("guest_id", guestID),
		slog.String("actor_id", actorID),
		slog.Int("companions", companions),
	)
}

// LogCheckInUndone logs an administrative check-in reversal
func (l *Logger) LogCheckInUndone(ctx context.Context, eventID, guestID, actorID string) {
	l.Logger.WarnContext(ctx,
		"Check-In Undone",
		slog.String("event_id", eventID),
		slog.String("guest_id", guestID),
		slog.String("actor_id", actorID),
	)
}

// LogRedemption logs a successful benefit redemption
func (l *Logger) LogRedemption(ctx context.Context, eventID, guestID, actorID, benefitType string, quantity int) {
	l.Logger.InfoContext(ctx,
		"Benefit Redeemed",
		slog.String("event_id", eventID),
		slog.String("guest_id", guestID),
		slog.String("actor_id", actorID),
		slog.String("benefit_type", benefitType),
		slog.Int("quantity", quantity),
	)
}

// LogAutoAssign logs the outcome of a bulk seating pass
func (l *Logger) LogAutoAssign(ctx context.Context, eventID string, assigned, unassigned int, duration time.Duration) {
	l.Logger.InfoContext(ctx,
		"Auto-Assign Pass Completed",
		slog.String("event_id", eventID),
		slog.Int("assigned", assigned),
		slog.Int("unassigned", unassigned),
		slog.Duration("duration", duration),
	)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
