// Package monitoring provides the pipeline's injectable diagnostic logger.
// The analysis packages log through Logf so tests and embedding callers can
// redirect or mute output instead of mutating process-wide logging state.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf
// but may be replaced with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op
// logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Stepf logs one pipeline step with a consistent "[stage] message" shape.
func Stepf(stage, format string, v ...interface{}) {
	Logf("["+stage+"] "+format, v...)
}

// Warnf logs an advisory finding. Warnings never interrupt a run.
func Warnf(stage, format string, v ...interface{}) {
	Logf("["+stage+"] WARNING: "+format, v...)
}
