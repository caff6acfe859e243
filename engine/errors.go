package engine

import (
	"errors"
	"fmt"
)

// ErrBufferSizeUnsupported is surfaced to the UI layer when a backend
// requests a block length outside the recognized set (spec §7); the
// engine keeps its previous size.
var ErrBufferSizeUnsupported = errors.New("engine: buffer size unsupported")

// ErrGraphMutationDuringProcess names the failure of a control-thread
// mutation that finds the audio thread mid-cycle (spec §7: "retry after
// releasing lock"). No function in this module returns it.
var ErrGraphMutationDuringProcess = errors.New("engine: graph mutation attempted during an audio cycle")

// Logger is a Printf-shaped logging seam. The teacher repo (`errors.go`)
// has no structured logging library; it hands callers a small
// interface backed by fmt.Printf by default and lets wrapping handlers
// add behavior (rate limiting, forwarding) around it. This module keeps
// that texture rather than introducing a logging dependency no example
// in the pack carries.
type Logger interface {
	Printf(format string, args ...any)
}

// FmtLogger is the zero-value-usable default Logger, mirroring the
// teacher's DefaultErrorHandler.
type FmtLogger struct{}

func (FmtLogger) Printf(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

// RateLimitedLogger wraps an underlying Logger and suppresses repeats
// of the same message within Every, the way the teacher's
// LoggingErrorHandler wraps an underlying ErrorHandler.
type RateLimitedLogger struct {
	Underlying Logger
	Every      int // log every Nth call for a given key; 0 means every call

	counts map[string]int
}

func (l *RateLimitedLogger) Printf(format string, args ...any) {
	if l.Underlying == nil {
		return
	}
	if l.Every <= 0 {
		l.Underlying.Printf(format, args...)
		return
	}
	if l.counts == nil {
		l.counts = make(map[string]int)
	}
	l.counts[format]++
	if (l.counts[format]-1)%l.Every == 0 {
		l.Underlying.Printf(format, args...)
	}
}
