package logger

import "github.com/getamis/sirius/log"

var logger = log.Discard()

// Logger returns the process-wide logger, defaulting to a discard sink
// until SetLogger installs one.
func Logger() log.Logger {
	return logger
}

// SetLogger installs the process-wide logger.
func SetLogger(l log.Logger) {
	logger = l
}

// SetLevel folds the runtime's configured log level (config.Runtime's
// LogLevel) into every line the process-wide logger emits from this
// point on, via New's context fields. sirius/log's vendored handlers in
// this module's dependency surface (Discard, Rollbar) don't filter by
// level, so the level rides along as structured context instead of
// gating which lines are emitted.
func SetLevel(level string) {
	logger = logger.New("level", level)
}
