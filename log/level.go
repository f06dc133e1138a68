package log

import "strings"

type LogLevel int

const (
	Debug LogLevel = iota
	Info
	Warn
	Error
	Fatal
)

var levels = []LogLevel{Debug, Info, Warn, Error, Fatal}

func (l LogLevel) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Name returns the lower-case form used on the command line and in stored settings.
func (l LogLevel) Name() string {
	return strings.ToLower(l.String())
}

func (l LogLevel) color() string {
	switch l {
	case Debug:
		return "\033[34m"
	case Info:
		return "\033[32m"
	case Warn:
		return "\033[33m"
	case Error:
		return "\033[31m"
	case Fatal:
		return "\033[35m"
	default:
		return colorReset
	}
}

const colorReset = "\033[0m"

// LevelNames returns the lower-case names of every known level, most verbose first.
func LevelNames() []string {
	names := make([]string, 0, len(levels))
	for _, l := range levels {
		names = append(names, l.Name())
	}
	return names
}

// ParseLevel resolves a level name case-insensitively.
func ParseLevel(level string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return Debug, true
	case "INFO":
		return Info, true
	case "WARN", "WARNING":
		return Warn, true
	case "ERROR":
		return Error, true
	case "FATAL":
		return Fatal, true
	default:
		return Info, false
	}
}

// Parse is ParseLevel without the found flag; unknown names resolve to Info.
func Parse(level string) LogLevel {
	l, _ := ParseLevel(level)
	return l
}
