package contextkeys

import (
	"context"

	"listing-service/internal/core/port"
)

type loggerCtxKey struct{}

// ContextWithLogger возвращает контекст с логгером запроса/сообщения.
// nil не сохраняется, чтобы не затереть логгер родителя.
func ContextWithLogger(ctx context.Context, logger port.LoggerPort) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// LoggerFromContext никогда не возвращает nil: без логгера в контексте записи отбрасываются.
func LoggerFromContext(ctx context.Context) port.LoggerPort {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerCtxKey{}).(port.LoggerPort); ok {
			return logger
		}
	}
	return discard
}

var discard port.LoggerPort = discardLogger{}

type discardLogger struct{}

func (discardLogger) Info(string, port.Fields)         {}
func (discardLogger) Warn(string, port.Fields)         {}
func (discardLogger) Error(string, error, port.Fields) {}
func (discardLogger) Debug(string, port.Fields)        {}

func (d discardLogger) WithFields(port.Fields) port.LoggerPort { return d }
