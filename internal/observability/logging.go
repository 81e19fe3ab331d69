// Package observability provides repository and websocket logging, tracing, and metrics.
package observability

import (
	"context"
	"log/slog"
)

// LoggingConfig switches the automated log streams on or off.
type LoggingConfig struct {
	EnableRepoLogging bool
	EnableWSLogging   bool
}

// Config holds the current logging configuration.
var Config = LoggingConfig{
	EnableRepoLogging: true,
	EnableWSLogging:   true,
}

// logger resolves the process default on every call so ConfigureLogger in the
// middleware package takes effect here too.
func logger() *slog.Logger {
	return slog.Default()
}

func fieldAttrs(base []any, fields map[string]any) []any {
	for k, v := range fields {
		base = append(base, slog.Any(k, v))
	}
	return base
}

// RepoLogger provides structured logging for repository operations on one table.
type RepoLogger struct {
	tableName string
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(tableName string) *RepoLogger {
	return &RepoLogger{tableName: tableName}
}

func (l *RepoLogger) log(ctx context.Context, level slog.Level, operation string, fields map[string]any) {
	if !Config.EnableRepoLogging {
		return
	}
	attrs := fieldAttrs([]any{
		slog.String("table", l.tableName),
		slog.String("operation", operation),
	}, fields)
	logger().Log(ctx, level, "repository "+operation, attrs...)
}

// LogCreate logs a repository create operation.
func (l *RepoLogger) LogCreate(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelInfo, "create", fields)
}

// LogRead logs a repository read. Reads are frequent, so they go out at debug level.
func (l *RepoLogger) LogRead(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelDebug, "read", fields)
}

// LogUpdate logs a repository update operation.
func (l *RepoLogger) LogUpdate(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelInfo, "update", fields)
}

// LogDelete logs a repository delete operation.
func (l *RepoLogger) LogDelete(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelInfo, "delete", fields)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	if !Config.EnableRepoLogging || err == nil {
		return
	}
	logger().ErrorContext(ctx, "repository error",
		slog.String("table", l.tableName),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// WSLogger provides structured logging for a websocket hub.
type WSLogger struct {
	hubName string
}

// NewWSLogger creates a new WSLogger for the given hub.
func NewWSLogger(hubName string) *WSLogger {
	return &WSLogger{hubName: hubName}
}

// LogConnect logs a subscriber joining a board feed.
func (l *WSLogger) LogConnect(ctx context.Context, userID uint, boardID uint) {
	if !Config.EnableWSLogging {
		return
	}
	logger().InfoContext(ctx, "websocket connected",
		slog.String("hub", l.hubName),
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("board_id", uint64(boardID)),
	)
}

// LogDisconnect logs a subscriber leaving a board feed.
func (l *WSLogger) LogDisconnect(ctx context.Context, userID uint, boardID uint, reason string) {
	if !Config.EnableWSLogging {
		return
	}
	logger().InfoContext(ctx, "websocket disconnected",
		slog.String("hub", l.hubName),
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("board_id", uint64(boardID)),
		slog.String("reason", reason),
	)
}

// LogError logs a websocket error event.
func (l *WSLogger) LogError(ctx context.Context, boardID uint, err error, eventType string) {
	if !Config.EnableWSLogging {
		return
	}
	logger().ErrorContext(ctx, "websocket error",
		slog.String("hub", l.hubName),
		slog.Uint64("board_id", uint64(boardID)),
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	)
}

// LogLifecycle logs a hub lifecycle event such as start or shutdown.
func (l *WSLogger) LogLifecycle(ctx context.Context, event string, fields map[string]any) {
	if !Config.EnableWSLogging {
		return
	}
	attrs := fieldAttrs([]any{
		slog.String("hub", l.hubName),
		slog.String("event", event),
	}, fields)
	logger().InfoContext(ctx, "websocket lifecycle", attrs...)
}
