package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

var (
	mu      sync.RWMutex
	current Level = LevelInfo
	logger        = newLogger(os.Stderr, os.Getenv("NO_COLOR") != "")
)

func newLogger(w io.Writer, noColor bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.DateTime,
		NoColor:    noColor,
	}))
}

// InitFromEnv sets the log level based on LOG_LEVEL (debug|info|error).
func InitFromEnv() {
	lvl := LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "error":
		lvl = LevelError
	case "debug":
		lvl = LevelDebug
	}
	SetLevel(lvl)
}

func SetLevel(lvl Level) {
	mu.Lock()
	current = lvl
	mu.Unlock()
}

// SetOutput redirects log lines to w without colour codes.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger = newLogger(w, true)
	mu.Unlock()
}

func emit(min Level, level slog.Level, format string, args []interface{}) {
	mu.RLock()
	l, cur := logger, current
	mu.RUnlock()
	if cur > min {
		return
	}
	l.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

func Debugf(format string, args ...interface{}) {
	emit(LevelDebug, slog.LevelDebug, format, args)
}

func Infof(format string, args ...interface{}) {
	emit(LevelInfo, slog.LevelInfo, format, args)
}

func Warnf(format string, args ...interface{}) {
	emit(LevelInfo, slog.LevelWarn, format, args)
}

func Errorf(format string, args ...interface{}) {
	emit(LevelError, slog.LevelError, format, args)
}

func Fatalf(format string, args ...interface{}) {
	emit(LevelError, slog.LevelError, format, args)
	os.Exit(1)
}
