// SPDX-License-Identifier: Unlicense OR MIT

package storagegate

import (
	"log/slog"
	"sync/atomic"
)

// Gate requests a single capability on activity start and records
// whether it was granted.
type Gate struct {
	svc        CapabilityService
	capability Capability
	requestID  int
	log        *slog.Logger

	// granted and requested are read by native consumers on other
	// goroutines.
	granted   atomic.Bool
	requested atomic.Bool
	done      chan struct{}
}

// Option configures a Gate.
type Option func(g *Gate)

// WithCapability sets the capability the Gate asks for. The default
// is WriteExternalStorage.
func WithCapability(c Capability) Option {
	return func(g *Gate) {
		g.capability = c
	}
}

// WithRequestID overrides RequestID.
func WithRequestID(id int) Option {
	return func(g *Gate) {
		g.requestID = id
	}
}

// WithLogger sets the logger for grant transitions.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		g.log = l
	}
}

// New returns a Gate in the not granted state. svc must not be nil.
func New(svc CapabilityService, opts ...Option) *Gate {
	g := &Gate{
		svc:        svc,
		capability: WriteExternalStorage,
		requestID:  RequestID,
		log:        slog.Default(),
		done:       make(chan struct{}),
	}
	for _, o := range opts {
		o(g)
	}
	g.log = g.log.With("capability", string(g.capability))
	return g
}

// Start is the lifecycle start hook. If the capability is already
// granted the Gate moves to the granted state, otherwise exactly one
// asynchronous request is issued. Start never blocks on the user.
func (g *Gate) Start() {
	if g.granted.Load() {
		return
	}
	if g.svc.HasCapability(g.capability) {
		g.log.Debug("capability already granted")
		g.grant()
		return
	}
	g.log.Debug("requesting capability", "request", g.requestID)
	g.requested.Store(true)
	g.svc.RequestCapabilities(g.requestID, []Capability{g.capability})
}

// PermissionResult is the permission result hook. It accepts any
// input: results for other request tags and empty (cancelled) results
// are ignored, and only the first outcome is inspected. A denial
// leaves the state unchanged.
func (g *Gate) PermissionResult(requestID int, caps []Capability, results []GrantResult) {
	if requestID != g.requestID {
		return
	}
	if len(results) == 0 {
		g.log.Debug("permission prompt dismissed")
		return
	}
	if results[0] != Granted {
		g.log.Info("capability not granted", "result", results[0])
		return
	}
	g.grant()
}

// WriteGranted reports whether the capability has been granted.
func (g *Gate) WriteGranted() bool {
	return g.granted.Load()
}

// Done returns a channel that is closed once the capability is
// granted. It is never closed for a Gate that stays denied.
func (g *Gate) Done() <-chan struct{} {
	return g.done
}

// Requested reports whether Start issued a request. It is safe to call
// from any goroutine.
func (g *Gate) Requested() bool {
	return g.requested.Load()
}

func (g *Gate) grant() {
	if g.granted.Swap(true) {
		return
	}
	close(g.done)
	g.log.Info("capability granted")
}
