// SPDX-License-Identifier: Unlicense OR MIT

package log

/*
#cgo LDFLAGS: -llog

#include <stdlib.h>
#include <android/log.h>
*/
import "C"

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"unsafe"
)

// logcatHandler formats records with a text handler and writes each
// one to logcat at the priority of its level.
type logcatHandler struct {
	slog.Handler
	w *logcatWriter
}

// logcatWriter receives exactly one formatted record per Write, with
// prio set by the handler under mu.
type logcatWriter struct {
	mu   sync.Mutex
	prio C.int
	tag  *C.char
}

func platformHandler(level slog.Level) slog.Handler {
	w := &logcatWriter{tag: C.CString(Tag)}
	return &logcatHandler{
		Handler: slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: replaceAttr,
		}),
		w: w,
	}
}

func (h *logcatHandler) Handle(ctx context.Context, r slog.Record) error {
	h.w.mu.Lock()
	defer h.w.mu.Unlock()
	h.w.prio = C.int(priority(r.Level))
	return h.Handler.Handle(ctx, r)
}

func (h *logcatHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &logcatHandler{Handler: h.Handler.WithAttrs(attrs), w: h.w}
}

func (h *logcatHandler) WithGroup(name string) slog.Handler {
	return &logcatHandler{Handler: h.Handler.WithGroup(name), w: h.w}
}

func (w *logcatWriter) Write(p []byte) (int, error) {
	msg := C.CString(string(bytes.TrimSuffix(p, []byte("\n"))))
	defer C.free(unsafe.Pointer(msg))
	C.__android_log_write(w.prio, w.tag, msg)
	return len(p), nil
}

// replaceAttr drops timestamps; logcat records its own.
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && len(groups) == 0 {
		return slog.Attr{}
	}
	return a
}
