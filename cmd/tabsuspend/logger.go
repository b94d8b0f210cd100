package main

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/npratt/tabsuspend/internal/config"
)

// PopupLoggerResult holds the popup's file logger and its writer.
type PopupLoggerResult struct {
	Logger   *slog.Logger
	LogFile  io.WriteCloser
	FilePath string
}

// Close closes the log file if it was opened.
func (r *PopupLoggerResult) Close() error {
	if r.LogFile != nil {
		return r.LogFile.Close()
	}
	return nil
}

// SetupPopupLogger creates a logger that writes to a rotating file instead
// of stderr, so log lines never land on the popup's screen.
func SetupPopupLogger(path string, level slog.Leveler, rotationCfg config.LogRotationConfig) *PopupLoggerResult {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotationCfg.MaxSizeMB,
		MaxBackups: rotationCfg.MaxBackups,
		MaxAge:     rotationCfg.MaxAgeDays,
		Compress:   rotationCfg.Compress,
	}

	return &PopupLoggerResult{
		Logger:   NewLogger(w, level),
		LogFile:  w,
		FilePath: path,
	}
}

// NewLogger creates the JSON logger used everywhere else.
func NewLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
