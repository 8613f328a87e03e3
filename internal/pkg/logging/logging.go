package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger is the minimal logging surface the storefront packages depend on.
// Arguments are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Nop discards everything. Useful default for tests.
var Nop Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Default returns a stdout logger for callers that did not configure one.
func Default() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) { d.print("ERR", msg, args...) }
func (d defLogger) Warn(msg string, args ...any)  { d.print("WRN", msg, args...) }
func (d defLogger) Info(msg string, args ...any)  { d.print("INF", msg, args...) }
func (d defLogger) Debug(msg string, args ...any) { d.print("DBG", msg, args...) }

func (defLogger) print(level, msg string, args ...any) {
	fmt.Printf("[%s] STOREFRONT %s %v\n", level, msg, args)
}

// NewZap adapts a zap.SugaredLogger to the Logger interface.
func NewZap(sugar *zap.SugaredLogger) Logger {
	return zapLogger{sugar: sugar}
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

func (z zapLogger) Debug(msg string, args ...any) { z.sugar.Debugw(msg, args...) }
func (z zapLogger) Info(msg string, args ...any)  { z.sugar.Infow(msg, args...) }
func (z zapLogger) Warn(msg string, args ...any)  { z.sugar.Warnw(msg, args...) }
func (z zapLogger) Error(msg string, args ...any) { z.sugar.Errorw(msg, args...) }
