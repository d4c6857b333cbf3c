package logger

import (
	"fmt"
	"strings"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds a logger for the given level and format. Callers own the returned logger
// and should Sync it on exit.
func New(level, format string) (*Logger, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "":
		level = InfoLevel
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel:
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "":
		format = FormatConsole
	case FormatConsole, FormatJSON:
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return newZapLogger(level, format), nil
}
