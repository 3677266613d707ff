package log

// Entry is a log line handed to the custom hook before it is written
type Entry struct {
	Level     string
	SubLogger string
	Header    string
	Message   string
}

// CustomLogHook receives every enabled log line. Returning true stops the
// line from reaching the sub logger's writers.
type CustomLogHook func(e Entry) (bypass bool)

var customLogHook CustomLogHook

// SetCustomLogHook installs h, nil removes it. The previously installed hook
// is returned so callers can restore it.
func SetCustomLogHook(h CustomLogHook) (previous CustomLogHook) {
	mu.Lock()
	previous, customLogHook = customLogHook, h
	mu.Unlock()
	return previous
}

func (l level) String() string {
	switch l {
	case infoLevel:
		return "INFO"
	case debugLevel:
		return "DEBUG"
	case warnLevel:
		return "WARN"
	case errorLevel:
		return "ERROR"
	}
	return "UNKNOWN"
}
