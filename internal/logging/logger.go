// Package logging provides categorized file-based debug logging for
// blogo. Logs are written to a logs/ directory with one file per
// category and are a silent no-op unless debug mode is enabled, so
// library code can log freely without a production cost.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup and configuration
	CategoryModel    Category = "model"    // Model construction, type/scope checks
	CategoryCompile  Category = "compile"  // Evidence compilation pass
	CategoryEvidence Category = "evidence" // Observed-value map, likelihood queries
	CategoryWorld    Category = "world"    // World instantiation and support expansion
	CategorySampler  Category = "sampler"  // Sampling runs
)

// Options controls logging behavior. Zero value means disabled.
type Options struct {
	Debug      bool
	Level      string          // debug, info, warn, error (default info)
	Categories map[string]bool // nil means all categories enabled
}

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

var (
	mu       sync.RWMutex
	loggers  = make(map[Category]*Logger)
	logsDir  string
	opts     Options
	logLevel = LevelInfo
)

// Logger writes to one category's log file. A Logger with a nil inner
// logger is a no-op.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

// Initialize sets up the logging directory and options. Call once at
// startup; before Initialize (or with Debug false) all loggers no-op.
func Initialize(dir string, o Options) error {
	mu.Lock()
	defer mu.Unlock()

	opts = o
	switch o.Level {
	case "debug":
		logLevel = LevelDebug
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}

	if !o.Debug {
		logsDir = ""
		return nil
	}
	if dir == "" {
		return fmt.Errorf("logging: directory required in debug mode")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("logging: create logs directory: %w", err)
	}
	logsDir = dir
	return nil
}

// IsCategoryEnabled reports whether a category currently logs.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	if !opts.Debug || logsDir == "" {
		return false
	}
	if opts.Categories == nil {
		return true
	}
	enabled, exists := opts.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) the logger for a category. Returns a no-op
// logger when the category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}

	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	path := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] warning: could not open %s: %v\n", path, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// CloseAll closes all open log files. Call at shutdown.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message. Always written when the logger exists.
func (l *Logger) Error(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// Timer measures an operation's duration for performance logging.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// Convenience functions - quick logging without getting a logger first.

// Boot logs to the boot category.
func Boot(format string, args ...any) { Get(CategoryBoot).Info(format, args...) }

// Model logs to the model category.
func Model(format string, args ...any) { Get(CategoryModel).Info(format, args...) }

// ModelError logs an error to the model category.
func ModelError(format string, args ...any) { Get(CategoryModel).Error(format, args...) }

// Compile logs to the compile category.
func Compile(format string, args ...any) { Get(CategoryCompile).Info(format, args...) }

// CompileDebug logs debug to the compile category.
func CompileDebug(format string, args ...any) { Get(CategoryCompile).Debug(format, args...) }

// CompileError logs an error to the compile category.
func CompileError(format string, args ...any) { Get(CategoryCompile).Error(format, args...) }

// Evidence logs to the evidence category.
func Evidence(format string, args ...any) { Get(CategoryEvidence).Info(format, args...) }

// EvidenceError logs an error to the evidence category.
func EvidenceError(format string, args ...any) { Get(CategoryEvidence).Error(format, args...) }

// World logs to the world category.
func World(format string, args ...any) { Get(CategoryWorld).Info(format, args...) }

// WorldDebug logs debug to the world category.
func WorldDebug(format string, args ...any) { Get(CategoryWorld).Debug(format, args...) }

// Sampler logs to the sampler category.
func Sampler(format string, args ...any) { Get(CategorySampler).Info(format, args...) }

// SamplerDebug logs debug to the sampler category.
func SamplerDebug(format string, args ...any) { Get(CategorySampler).Debug(format, args...) }
