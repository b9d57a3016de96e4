// SPDX-License-Identifier: Unlicense OR MIT

// Package log configures the program's structured logger. On Android,
// records go to logcat with a priority matching their level.
package log

import (
	"io"
	"log/slog"
)

// Tag identifies the program's output in system logs.
const Tag = "fakesid"

// Logcat priorities, from android/log.h.
const (
	prioDebug = 3
	prioInfo  = 4
	prioWarn  = 5
	prioError = 6
)

// New returns a text logger writing records at or above level to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}))
}

// Default returns the platform logger and installs it as the slog
// default. It writes to standard error, or to logcat on Android.
func Default(level slog.Level) *slog.Logger {
	l := slog.New(platformHandler(level))
	slog.SetDefault(l)
	return l
}

// priority maps a record level to a logcat priority.
func priority(l slog.Level) int {
	switch {
	case l >= slog.LevelError:
		return prioError
	case l >= slog.LevelWarn:
		return prioWarn
	case l >= slog.LevelInfo:
		return prioInfo
	default:
		return prioDebug
	}
}
