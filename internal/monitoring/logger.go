package monitoring

import "log"

// Logf is the package-level diagnostic logger, log.Printf unless
// SetLogger replaced it. Tests redirect or mute it through SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// Debugf logs verbose diagnostics. It is a no-op unless SetDebug(true) was
// called, and routes through the same sink as Logf.
var Debugf func(format string, v ...interface{}) = func(string, ...interface{}) {}

// SetLogger replaces the package logger; nil installs a no-op.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetDebug enables or disables Debugf output.
func SetDebug(enabled bool) {
	if enabled {
		Debugf = func(format string, v ...interface{}) {
			Logf("DEBUG "+format, v...)
		}
		return
	}
	Debugf = func(string, ...interface{}) {}
}
