// SPDX-License-Identifier: Unlicense OR MIT

//go:build unix && !android

package activity

import (
	"log/slog"

	"gioui.org/io/event"
	"golang.org/x/sys/unix"

	"github.com/twobit/fakesid/storagegate"
)

// StorageService maps storage capabilities to the access rights of
// the current user on Root. There is no permission prompt; a request
// checks Root again and reports the outcome asynchronously.
type StorageService struct {
	Root string

	shell *Shell
}

// DefaultService returns the capability service for the current
// platform. Storage is rooted at the working directory.
func DefaultService(l *slog.Logger) storagegate.CapabilityService {
	l.Debug("storage root", "root", ".")
	return &StorageService{Root: "."}
}

func (s *StorageService) attach(sh *Shell) {
	s.shell = sh
}

func (s *StorageService) HasCapability(c storagegate.Capability) bool {
	var mode uint32
	switch c {
	case storagegate.WriteExternalStorage:
		mode = unix.W_OK
	case storagegate.ReadExternalStorage:
		mode = unix.R_OK
	default:
		return false
	}
	return unix.Access(s.Root, mode) == nil
}

func (s *StorageService) RequestCapabilities(requestID int, caps []storagegate.Capability) {
	e := ResultEvent{RequestID: requestID, Capabilities: caps}
	for _, c := range caps {
		r := storagegate.Denied
		if s.HasCapability(c) {
			r = storagegate.Granted
		}
		e.Results = append(e.Results, r)
	}
	if s.shell == nil {
		return
	}
	go s.shell.Deliver(e)
}

func (s *Shell) platformEvent(e event.Event) {}

func (s *Shell) destroyPlatform() {}
