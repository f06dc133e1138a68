package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// exit is replaced in tests so Fatal can be observed without terminating the process.
var exit = os.Exit

// Logger is a leveled logger whose threshold and verbosity can be changed at runtime.
// Loggers derived with Named share the threshold, verbosity and writers of their parent.
type Logger struct {
	core *core
	name string
}

type core struct {
	mu sync.Mutex

	terminal io.Writer
	file     io.WriteCloser
	color    bool

	level      LogLevel
	detailed   bool
	json       bool
	timeFormat string
}

// Options configures a new Logger.
type Options struct {
	Name  string
	Level LogLevel

	// Detailed adds timestamps and the logger name to every line
	Detailed bool

	// Output receives terminal logging; defaults to os.Stderr
	Output     io.Writer
	NoTerminal bool
	NoColor    bool
	JSON       bool
	TimeFormat string

	File     string
	Rotation *Rotation
}

type Rotation struct {
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type logEntry struct {
	Timestamp string `json:"timestamp,omitempty"`
	Level     string `json:"level"`
	Service   string `json:"service,omitempty"`
	Message   string `json:"message"`
}

func NewLogger(name string, level LogLevel, file string, noTerminal bool) *Logger {
	return New(Options{
		Name:       name,
		Level:      level,
		File:       file,
		NoTerminal: noTerminal,
	})
}

func New(opts Options) *Logger {
	c := &core{
		level:      opts.Level,
		detailed:   opts.Detailed,
		json:       opts.JSON,
		timeFormat: opts.TimeFormat,
	}
	if c.timeFormat == "" {
		c.timeFormat = "2006-01-02 15:04:05"
	}

	if !opts.NoTerminal {
		c.terminal = opts.Output
		if c.terminal == nil {
			c.terminal = os.Stderr
		}
		c.color = !opts.NoColor && !opts.JSON && isTerminal(c.terminal)
	}

	if opts.File != "" {
		rotation := opts.Rotation
		if rotation == nil {
			rotation = &Rotation{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
			}
		}
		c.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    rotation.MaxSize,
			MaxBackups: rotation.MaxBackups,
			MaxAge:     rotation.MaxAge,
			Compress:   rotation.Compress,
		}
	}

	return &Logger{core: c, name: opts.Name}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(Options{Output: io.Discard, NoColor: true})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetMinLevel changes the threshold below which messages are dropped.
func (l *Logger) SetMinLevel(level LogLevel) {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()

	l.core.level = level
}

func (l *Logger) MinLevel() LogLevel {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()

	return l.core.level
}

// SetDetailed toggles timestamps and logger names in the output.
func (l *Logger) SetDetailed(detailed bool) {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()

	l.core.detailed = detailed
}

func (l *Logger) Detailed() bool {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()

	return l.core.detailed
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level LogLevel) bool {
	return level >= l.MinLevel()
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	c := l.core
	c.mu.Lock()
	defer c.mu.Unlock()

	if level < c.level {
		return
	}

	formattedMsg := msg
	if len(args) > 0 {
		formattedMsg = fmt.Sprintf(msg, args...)
	}

	var timestamp string
	if c.detailed {
		timestamp = time.Now().Format(c.timeFormat)
	}

	var line string
	if c.json {
		entry := logEntry{
			Timestamp: timestamp,
			Level:     level.String(),
			Service:   l.name,
			Message:   formattedMsg,
		}
		jsonBytes, _ := json.Marshal(entry)
		line = string(jsonBytes)
	} else {
		var prefix strings.Builder
		if c.detailed {
			fmt.Fprintf(&prefix, "[%s] ", timestamp)
		}
		fmt.Fprintf(&prefix, "%-5s", level)
		if c.detailed && l.name != "" {
			fmt.Fprintf(&prefix, " [%s]", l.name)
		}
		line = prefix.String() + " " + formattedMsg
	}

	if c.terminal != nil {
		if c.color {
			fmt.Fprintf(c.terminal, "%s%s%s\n", level.color(), line, colorReset)
		} else {
			fmt.Fprintln(c.terminal, line)
		}
	}
	if c.file != nil {
		fmt.Fprintln(c.file, line)
	}

	if level == Fatal {
		exit(1)
	}
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(Debug, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(Info, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(Warn, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(Error, msg, args...)
}

// Fatal logs at Fatal level and terminates the process.
func (l *Logger) Fatal(msg string, args ...any) {
	l.log(Fatal, msg, args...)
}

// Named returns a child logger sharing this logger's writers and settings.
func (l *Logger) Named(name string) *Logger {
	if l.name != "" {
		name = fmt.Sprintf("%s/%s", l.name, name)
	}
	return &Logger{core: l.core, name: name}
}

// SuspendTerminal stops terminal output until the returned function is called.
// File output continues. Front-ends owning the terminal call it while they run.
func (l *Logger) SuspendTerminal() (restore func()) {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()

	terminal := l.core.terminal
	l.core.terminal = nil

	var once sync.Once
	return func() {
		once.Do(func() {
			l.core.mu.Lock()
			defer l.core.mu.Unlock()

			l.core.terminal = terminal
		})
	}
}

func (l *Logger) Name() string {
	return l.name
}

// Close releases the rotating log file, if any.
func (l *Logger) Close() error {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()

	if l.core.file == nil {
		return nil
	}
	err := l.core.file.Close()
	l.core.file = nil
	return err
}
