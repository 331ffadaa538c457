package core

import "github.com/hupe1980/agentdesk/logging"

// scopedLogger prefixes every record with the attributes of the scope it
// belongs to (thread, then function call). A nil logger discards records.
type scopedLogger struct {
	logger logging.Logger
	attrs  []any
}

func newScopedLogger(l logging.Logger, attrs ...any) *scopedLogger {
	if l == nil {
		l = logging.NoOpLogger{}
	}

	return &scopedLogger{logger: l, attrs: attrs}
}

// with returns a child scope carrying additional attributes.
func (l *scopedLogger) with(attrs ...any) *scopedLogger {
	merged := make([]any, 0, len(l.attrs)+len(attrs))
	merged = append(merged, l.attrs...)
	merged = append(merged, attrs...)

	return &scopedLogger{logger: l.logger, attrs: merged}
}

func (l *scopedLogger) args(args []any) []any {
	if len(l.attrs) == 0 {
		return args
	}

	return append(append(make([]any, 0, len(l.attrs)+len(args)), l.attrs...), args...)
}

// Logger returns a logging.Logger that applies the scope attributes.
func (l *scopedLogger) Logger() logging.Logger { return scopedView{l} }

// LogDebug logs a debug message.
func (l *scopedLogger) LogDebug(msg string, args ...any) { l.logger.Debug(msg, l.args(args)...) }

// LogInfo logs an info message.
func (l *scopedLogger) LogInfo(msg string, args ...any) { l.logger.Info(msg, l.args(args)...) }

// LogWarn logs a warning message.
func (l *scopedLogger) LogWarn(msg string, args ...any) { l.logger.Warn(msg, l.args(args)...) }

// LogError logs an error message.
func (l *scopedLogger) LogError(msg string, args ...any) { l.logger.Error(msg, l.args(args)...) }

type scopedView struct{ s *scopedLogger }

func (v scopedView) Debug(msg string, args ...any) { v.s.LogDebug(msg, args...) }
func (v scopedView) Info(msg string, args ...any)  { v.s.LogInfo(msg, args...) }
func (v scopedView) Warn(msg string, args ...any)  { v.s.LogWarn(msg, args...) }
func (v scopedView) Error(msg string, args ...any) { v.s.LogError(msg, args...) }
