// SPDX-License-Identifier: Unlicense OR MIT

package activity

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"gioui.org/io/event"
	"gioui.org/io/system"
	"gioui.org/op"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twobit/fakesid/internal/log"
	"github.com/twobit/fakesid/storagegate"
)

type fakeService struct {
	granted  bool
	queries  int
	requests []int
}

func (f *fakeService) HasCapability(c storagegate.Capability) bool {
	f.queries++
	return f.granted
}

func (f *fakeService) RequestCapabilities(id int, caps []storagegate.Capability) {
	f.requests = append(f.requests, id)
}

func quiet() *slog.Logger {
	return log.New(io.Discard, slog.LevelDebug)
}

// runLoop runs s.Loop on a new goroutine and returns the event channel
// feeding it and a channel receiving its result.
func runLoop(s *Shell) (chan<- event.Event, <-chan error) {
	events := make(chan event.Event)
	errs := make(chan error, 1)
	go func() {
		errs <- s.Loop(events)
	}()
	return events, errs
}

func waitLoop(t *testing.T, errs <-chan error) error {
	t.Helper()
	select {
	case err := <-errs:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not return")
		return nil
	}
}

func TestShellStartsOnce(t *testing.T) {
	svc := &fakeService{}
	s := New(svc, WithLogger(quiet()))
	events, errs := runLoop(s)
	events <- system.StageEvent{Stage: system.StagePaused}
	events <- system.StageEvent{Stage: system.StageInactive}
	events <- system.StageEvent{Stage: system.StageRunning}
	events <- system.StageEvent{Stage: system.StagePaused}
	events <- system.StageEvent{Stage: system.StageRunning}
	events <- system.DestroyEvent{}
	require.NoError(t, waitLoop(t, errs))
	assert.Equal(t, 1, svc.queries)
	assert.Equal(t, []int{storagegate.RequestID}, svc.requests)
	assert.False(t, s.Gate().WriteGranted())
}

func TestShellNotStartedBeforeRunning(t *testing.T) {
	svc := &fakeService{granted: true}
	s := New(svc, WithLogger(quiet()))
	events, errs := runLoop(s)
	events <- system.StageEvent{Stage: system.StagePaused}
	events <- system.DestroyEvent{}
	require.NoError(t, waitLoop(t, errs))
	assert.Zero(t, svc.queries)
	assert.False(t, s.Gate().WriteGranted())
}

func TestShellPreGranted(t *testing.T) {
	svc := &fakeService{granted: true}
	s := New(svc, WithLogger(quiet()))
	events, errs := runLoop(s)
	events <- system.StageEvent{Stage: system.StageRunning}
	events <- system.DestroyEvent{}
	require.NoError(t, waitLoop(t, errs))
	assert.True(t, s.Gate().WriteGranted())
	assert.Empty(t, svc.requests)
}

func TestShellAppliesResults(t *testing.T) {
	s := New(&fakeService{}, WithLogger(quiet()))
	events, errs := runLoop(s)
	events <- system.StageEvent{Stage: system.StageRunning}
	s.Deliver(ResultEvent{
		RequestID:    storagegate.RequestID,
		Capabilities: []storagegate.Capability{storagegate.WriteExternalStorage},
		Results:      []storagegate.GrantResult{storagegate.Granted},
	})
	select {
	case <-s.Gate().Done():
	case <-time.After(5 * time.Second):
		t.Fatal("capability not granted")
	}
	events <- system.DestroyEvent{}
	require.NoError(t, waitLoop(t, errs))
	assert.True(t, s.Gate().WriteGranted())
}

func TestShellIgnoresUnrelatedResults(t *testing.T) {
	s := New(&fakeService{}, WithLogger(quiet()))
	events, errs := runLoop(s)
	events <- system.StageEvent{Stage: system.StageRunning}
	s.Deliver(ResultEvent{RequestID: 99, Results: []storagegate.GrantResult{storagegate.Granted}})
	s.Deliver(ResultEvent{RequestID: storagegate.RequestID})
	s.Deliver(ResultEvent{RequestID: storagegate.RequestID, Results: []storagegate.GrantResult{storagegate.Denied}})
	assert.Never(t, s.Gate().WriteGranted, 100*time.Millisecond, 10*time.Millisecond)
	events <- system.DestroyEvent{}
	require.NoError(t, waitLoop(t, errs))
}

func TestShellDestroyError(t *testing.T) {
	s := New(&fakeService{}, WithLogger(quiet()))
	events, errs := runLoop(s)
	errClosed := errors.New("window closed")
	events <- system.DestroyEvent{Err: errClosed}
	assert.ErrorIs(t, waitLoop(t, errs), errClosed)
}

func TestShellClosedEvents(t *testing.T) {
	s := New(&fakeService{}, WithLogger(quiet()))
	events := make(chan event.Event)
	close(events)
	assert.NoError(t, s.Loop(events))
}

func TestShellFrames(t *testing.T) {
	var framed int
	s := New(&fakeService{}, WithLogger(quiet()))
	events, errs := runLoop(s)
	events <- system.FrameEvent{Frame: func(ops *op.Ops) {
		assert.NotNil(t, ops)
		framed++
	}}
	events <- system.DestroyEvent{}
	require.NoError(t, waitLoop(t, errs))
	assert.Equal(t, 1, framed)

	var handled int
	s = New(&fakeService{}, WithLogger(quiet()), WithFrameHandler(func(e system.FrameEvent) {
		handled++
	}))
	events, errs = runLoop(s)
	events <- system.FrameEvent{}
	events <- system.FrameEvent{}
	events <- system.DestroyEvent{}
	require.NoError(t, waitLoop(t, errs))
	assert.Equal(t, 2, handled)
}

func TestShellGateOptions(t *testing.T) {
	svc := &fakeService{}
	s := New(svc, WithLogger(quiet()), WithGateOptions(storagegate.WithRequestID(7)))
	events, errs := runLoop(s)
	events <- system.StageEvent{Stage: system.StageRunning}
	events <- system.DestroyEvent{}
	require.NoError(t, waitLoop(t, errs))
	assert.Equal(t, []int{7}, svc.requests)
}

func TestShellRecreatedActivityChecksAgain(t *testing.T) {
	svc := &fakeService{}
	s := New(svc, WithLogger(quiet()))
	first := s.Gate()
	s.viewChanged(true)
	s.stage(system.StageRunning)
	s.viewChanged(true)
	s.stage(system.StageRunning)
	assert.Same(t, first, s.Gate())
	assert.Equal(t, []int{storagegate.RequestID}, svc.requests)

	// The user closes the activity without answering, then reopens it.
	s.viewChanged(false)
	s.stage(system.StageRunning)
	assert.Len(t, svc.requests, 1)
	s.viewChanged(true)
	assert.NotSame(t, first, s.Gate())
	assert.False(t, s.Gate().Requested())
	s.stage(system.StageRunning)
	assert.Equal(t, 2, svc.queries)
	assert.Equal(t, []int{storagegate.RequestID, storagegate.RequestID}, svc.requests)
	assert.True(t, s.Gate().Requested())
}

func TestShellRecreatedActivityStaysGranted(t *testing.T) {
	svc := &fakeService{}
	s := New(svc, WithLogger(quiet()))
	s.stage(system.StageRunning)
	s.Gate().PermissionResult(storagegate.RequestID, nil, []storagegate.GrantResult{storagegate.Granted})
	require.True(t, s.Gate().WriteGranted())

	svc.granted = true
	s.viewChanged(false)
	s.viewChanged(true)
	s.stage(system.StageRunning)
	assert.True(t, s.Gate().WriteGranted())
	assert.Len(t, svc.requests, 1)
}

func TestShellDeliverAfterLoop(t *testing.T) {
	s := New(&fakeService{}, WithLogger(quiet()))
	events, errs := runLoop(s)
	events <- system.DestroyEvent{}
	require.NoError(t, waitLoop(t, errs))

	delivered := make(chan struct{})
	go func() {
		defer close(delivered)
		for i := 0; i < 2*cap(s.results); i++ {
			s.Deliver(ResultEvent{RequestID: storagegate.RequestID})
		}
	}()
	select {
	case <-delivered:
	case <-time.After(5 * time.Second):
		t.Fatal("Deliver blocked after the loop returned")
	}
}

func TestShellRequestedWhileRunning(t *testing.T) {
	s := New(&fakeService{}, WithLogger(quiet()))
	events, errs := runLoop(s)
	go func() {
		events <- system.StageEvent{Stage: system.StageRunning}
	}()
	assert.Eventually(t, s.Gate().Requested, 5*time.Second, 10*time.Millisecond)
	events <- system.DestroyEvent{}
	require.NoError(t, waitLoop(t, errs))
}
