// SPDX-License-Identifier: Unlicense OR MIT

/*
Package activity runs the program's single activity. A Shell plugs a
storagegate.Gate into the lifecycle of a Gio window: the first time an
activity instance reaches the running stage the gate is started, and
permission results reported by the platform are handed to the gate on
the same goroutine that processes window events.

Loop is fed from (*app.Window).Events:

	s := activity.New(activity.DefaultService(logger))
	err := s.Loop(w.Events())

Gio keeps its Window when the platform recreates the activity. When a
view is attached again after being detached, the Shell replaces its
gate, so every activity instance checks the capability anew.

The Shell does not draw. Frames are passed to the native layer through
WithFrameHandler.
*/
package activity

import (
	"log/slog"
	"sync/atomic"

	"gioui.org/io/event"
	"gioui.org/io/system"
	"gioui.org/op"

	"github.com/twobit/fakesid/storagegate"
)

// ResultEvent carries the operating system's answer to a permission
// request.
type ResultEvent struct {
	RequestID    int
	Capabilities []storagegate.Capability
	Results      []storagegate.GrantResult
}

// resultSource is implemented by capability services that report
// permission results through a Shell.
type resultSource interface {
	attach(s *Shell)
}

// Shell drives a storagegate.Gate from window lifecycle events.
type Shell struct {
	svc      storagegate.CapabilityService
	gateOpts []storagegate.Option
	// gate belongs to the current activity instance. It is replaced
	// on the loop goroutine and read by native consumers.
	gate    atomic.Pointer[storagegate.Gate]
	log     *slog.Logger
	results chan ResultEvent
	// done is closed when Loop returns.
	done    chan struct{}
	frame   func(e system.FrameEvent)
	ops     op.Ops
	started bool
	// detached is set once the current activity's view goes away.
	detached bool
}

// Option configures a Shell.
type Option func(s *Shell)

// WithLogger sets the logger used by the shell and its gate.
func WithLogger(l *slog.Logger) Option {
	return func(s *Shell) {
		s.log = l
		s.gateOpts = append(s.gateOpts, storagegate.WithLogger(l))
	}
}

// WithFrameHandler sets the function that completes frames. The
// default completes every frame with an empty operation list.
func WithFrameHandler(f func(e system.FrameEvent)) Option {
	return func(s *Shell) {
		s.frame = f
	}
}

// WithGateOptions passes options to the shell's gates.
func WithGateOptions(opts ...storagegate.Option) Option {
	return func(s *Shell) {
		s.gateOpts = append(s.gateOpts, opts...)
	}
}

// New returns a Shell whose gates query svc.
func New(svc storagegate.CapabilityService, opts ...Option) *Shell {
	s := &Shell{
		svc:     svc,
		log:     slog.Default(),
		results: make(chan ResultEvent, 16),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if s.frame == nil {
		s.frame = s.emptyFrame
	}
	s.gate.Store(storagegate.New(svc, s.gateOpts...))
	if r, ok := svc.(resultSource); ok {
		r.attach(s)
	}
	return s
}

// Gate returns the gate of the current activity instance, for native
// code that needs to know whether external storage is writable.
func (s *Shell) Gate() *storagegate.Gate {
	return s.gate.Load()
}

// Deliver queues a permission result for the event loop. It is safe
// to call from any goroutine. Deliver blocks only while the queue is
// full and Loop is running; results delivered after Loop returned are
// dropped.
func (s *Shell) Deliver(e ResultEvent) {
	select {
	case s.results <- e:
	case <-s.done:
	}
}

// Loop processes window events and queued permission results until a
// system.DestroyEvent arrives, and returns its error. Loop also returns,
// with a nil error, if events is closed. Loop must be called at most
// once.
func (s *Shell) Loop(events <-chan event.Event) error {
	defer close(s.done)
	for {
		select {
		case e, ok := <-events:
			if !ok {
				s.destroyPlatform()
				return nil
			}
			switch e := e.(type) {
			case system.DestroyEvent:
				s.log.Debug("activity destroyed", "err", e.Err)
				s.destroyPlatform()
				return e.Err
			case system.StageEvent:
				s.stage(e.Stage)
			case system.FrameEvent:
				s.frame(e)
			default:
				s.platformEvent(e)
			}
		case r := <-s.results:
			s.Gate().PermissionResult(r.RequestID, r.Capabilities, r.Results)
		}
	}
}

func (s *Shell) stage(st system.Stage) {
	if s.started || st < system.StageRunning {
		return
	}
	s.started = true
	s.log.Debug("activity started")
	s.Gate().Start()
}

// viewChanged tracks the platform view. A view attached after a
// detach belongs to a new activity instance.
func (s *Shell) viewChanged(attached bool) {
	if !attached {
		s.detached = true
		return
	}
	if s.detached {
		s.detached = false
		s.newActivity()
	}
}

// newActivity gives a recreated activity a fresh gate, started on the
// next running stage.
func (s *Shell) newActivity() {
	s.log.Debug("activity recreated")
	s.gate.Store(storagegate.New(s.svc, s.gateOpts...))
	s.started = false
}

func (s *Shell) emptyFrame(e system.FrameEvent) {
	s.ops.Reset()
	e.Frame(&s.ops)
}
