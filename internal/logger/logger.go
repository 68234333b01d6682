package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

// ********************************************************
// ********* LOGGING **************************************
// ********************************************************

type LogLevel int

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorOrange  = "\033[38;5;208m"
)

const (
	DEBUG LogLevel = iota
	INFO
	INFORM
	HIGHLIGHT
	WARN
	ERROR
	FATAL
)

// DefaultLogFile is used when file output is requested without a path
const DefaultLogFile = "/tmp/htft.log"

type Logger struct {
	mu          sync.Mutex
	infoLogger  *log.Logger
	errorLogger *log.Logger
	level       LogLevel
	colour      bool
}

var (
	showDateTime  bool
	defaultLogger *Logger
	logFile       *os.File
)

func init() {
	defaultLogger = NewLogger(INFO)
}

func flags() int {
	if showDateTime {
		return log.Ldate | log.Ltime
	}
	return 0
}

func NewLogger(level LogLevel) *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stdout, "", flags()),
		errorLogger: log.New(os.Stderr, "", flags()),
		level:       level,
		colour:      true,
	}
}

// NewWriterLogger builds a logger that sends every level to w, without colour codes.
// Used by tests and anything that wants to capture output.
func NewWriterLogger(level LogLevel, w io.Writer) *Logger {
	return &Logger{
		infoLogger:  log.New(w, "", 0),
		errorLogger: log.New(w, "", 0),
		level:       level,
	}
}

func SetShowDateTime(value bool) {
	showDateTime = value
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.infoLogger.SetFlags(flags())
	defaultLogger.errorLogger.SetFlags(flags())
}

// SetLevel changes the minimum level written by the default logger
func SetLevel(level LogLevel) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.level = level
}

// ParseLevel maps a config string such as "debug" or "warn" to a LogLevel
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, nil
	case "", "INFO":
		return INFO, nil
	case "INFORM":
		return INFORM, nil
	case "HIGHLIGHT":
		return HIGHLIGHT, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "FATAL":
		return FATAL, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

// SetLogOutput sets the output destination for logs
// 'c' for console, 'f' for file, 'b' for both
// An empty path means DefaultLogFile.
func SetLogOutput(outputType rune, path string) error {
	if path == "" {
		path = DefaultLogFile
	}

	var infoWriter, errorWriter io.Writer
	var file *os.File

	switch outputType {
	case 'c':
		infoWriter = os.Stdout
		errorWriter = os.Stderr
	case 'f', 'b':
		var err error
		file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		if outputType == 'f' {
			infoWriter = file
			errorWriter = file
		} else {
			infoWriter = io.MultiWriter(os.Stdout, file)
			errorWriter = io.MultiWriter(os.Stderr, file)
		}
	default:
		return fmt.Errorf("invalid log output type: %c", outputType)
	}

	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()

	if logFile != nil {
		logFile.Close()
	}
	logFile = file

	defaultLogger.infoLogger = log.New(infoWriter, "", flags())
	defaultLogger.errorLogger = log.New(errorWriter, "", flags())
	// colour codes only make sense on a terminal
	defaultLogger.colour = outputType == 'c'
	return nil
}

// OutputRune maps the config words console/file/both onto SetLogOutput's selector
func OutputRune(s string) rune {
	switch strings.ToLower(s) {
	case "file":
		return 'f'
	case "both":
		return 'b'
	default:
		return 'c'
	}
}

// Close releases the log file if one is open
func Close() {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func (l *Logger) log(level LogLevel, format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	_, file, line, ok := runtime.Caller(3)
	if !ok {
		file = "unknown"
		line = 0
	}
	file = filepath.Base(file)

	msg := format
	var jsonObjects []string
	if len(v) > 0 {
		var primitives []string
		primitives, jsonObjects = processArgs(v...)
		if len(primitives) > 0 {
			msg = format + " " + strings.Join(primitives, " ")
		}
	}

	target := l.infoLogger
	if level >= ERROR {
		target = l.errorLogger
	}

	target.Println(l.decorate(level, file, line, msg))
	for _, obj := range jsonObjects {
		target.Println(l.decorate(level, file, line, obj))
	}
}

func (l *Logger) decorate(level LogLevel, file string, line int, msg string) string {
	if !l.colour {
		return fmt.Sprintf("[%s] %s:%d: %s", level.String(), file, line, msg)
	}
	return fmt.Sprintf("[%s] %s:%d: %s%s%s", level.String(), file, line, level.colour(), msg, colorReset)
}

func (l LogLevel) colour() string {
	switch l {
	case DEBUG:
		return colorBlue
	case INFO:
		return colorGreen
	case INFORM:
		return colorMagenta
	case HIGHLIGHT:
		return colorCyan
	case WARN:
		return colorYellow
	case ERROR:
		return colorOrange
	case FATAL:
		return colorRed
	default:
		return colorReset
	}
}

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case INFORM:
		return "INFORM"
	case HIGHLIGHT:
		return "HIGHLIGHT"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// processArgs turns primitives into strings and everything else into indented JSON
// which is printed on its own lines after the message
func processArgs(args ...any) ([]string, []string) {
	var primitives []string
	var jsonObjects []string

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			primitives = append(primitives, "nil")
		case float32:
			primitives = append(primitives, fmt.Sprintf("%.2f", v))
		case float64:
			primitives = append(primitives, fmt.Sprintf("%.2f", v))
		case string:
			primitives = append(primitives, v)
		case error:
			primitives = append(primitives, v.Error())
		case fmt.Stringer:
			primitives = append(primitives, v.String())
		case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			primitives = append(primitives, fmt.Sprintf("%v", v))
		default:
			jsonBytes, err := json.MarshalIndent(arg, "", "  ")
			if err != nil {
				primitives = append(primitives, fmt.Sprintf("%v", arg))
				continue
			}
			primitives = append(primitives, fmt.Sprintf("[Object of type %s]", reflect.TypeOf(arg)))
			jsonObjects = append(jsonObjects, string(jsonBytes))
		}
	}
	return primitives, jsonObjects
}

// Methods on a Logger instance, for callers that hold their own logger

func (l *Logger) Debug(format string, v ...any) { l.logDirect(DEBUG, format, v...) }
func (l *Logger) Info(format string, v ...any)  { l.logDirect(INFO, format, v...) }
func (l *Logger) Warn(format string, v ...any)  { l.logDirect(WARN, format, v...) }
func (l *Logger) Error(format string, v ...any) { l.logDirect(ERROR, format, v...) }

// logDirect keeps the caller depth equal to the package-level helpers
func (l *Logger) logDirect(level LogLevel, format string, v ...any) {
	l.log(level, format, v...)
}

// Convenience methods using the default logger

func Debug(format string, v ...any) {
	defaultLogger.logDirect(DEBUG, format, v...)
}

func Info(format string, v ...any) {
	defaultLogger.logDirect(INFO, format, v...)
}

func Inform(format string, v ...any) {
	defaultLogger.logDirect(INFORM, format, v...)
}

func Highlight(format string, v ...any) {
	defaultLogger.logDirect(HIGHLIGHT, format, v...)
}

func Warn(format string, v ...any) {
	defaultLogger.logDirect(WARN, format, v...)
}

func Error(format string, v ...any) {
	defaultLogger.logDirect(ERROR, format, v...)
}

func Fatal(format string, v ...any) {
	defaultLogger.logDirect(FATAL, format, v...)
	os.Exit(1)
}
