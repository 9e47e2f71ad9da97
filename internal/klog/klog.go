// Package klog wraps a zap SugaredLogger with the teacher's own per-pass
// progress-line texture — main.go's "Pass N: doing X..." followed by an
// indented "   done: ..." summary — so every compiler phase and the
// runtime's update loop log through one shared, structured logger instead
// of fmt.Println/stdlib log.
package klog

import "go.uber.org/zap"

// Logger is the shared logging handle.
type Logger struct {
	s *zap.SugaredLogger
}

// New builds a development-mode (human-readable, colorized level, caller
// line) Logger, matching the console-first texture the compiler's own
// progress lines use.
func New() (*Logger, error) {
	zl, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &Logger{s: zl.Sugar()}, nil
}

// NewNop returns a Logger that discards everything, for tests.
func NewNop() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

// Sync flushes any buffered log entries; call before process exit.
func (l *Logger) Sync() error { return l.s.Sync() }

// Pass logs the start of a compiler pass — `"Pass 1.2: Resolving style
// inheritance..."`, matching main.go's own phrasing. phase is also carried
// as a structured field so a JSON-mode logger keeps it queryable.
func (l *Logger) Pass(phase, msg string, args ...any) {
	l.s.With("phase", phase).Infof(phase+": "+msg, args...)
}

// Done logs a pass's summary line — the teacher's indented "   done: N
// elements, M styles" follow-up to a Pass line.
func (l *Logger) Done(msg string, args ...any) {
	l.s.Infof("   done: "+msg, args...)
}

// Warn logs a non-fatal compiler/runtime warning.
func (l *Logger) Warn(msg string, args ...any) {
	l.s.Warnf(msg, args...)
}

// Error logs a recoverable error that still let the phase produce output.
func (l *Logger) Error(msg string, args ...any) {
	l.s.Errorf(msg, args...)
}
