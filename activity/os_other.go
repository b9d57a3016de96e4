// SPDX-License-Identifier: Unlicense OR MIT

//go:build !unix

package activity

import (
	"log/slog"

	"gioui.org/io/event"

	"github.com/twobit/fakesid/storagegate"
)

// installTimeService grants the storage capabilities unconditionally,
// like Android before runtime permissions. The platforms it serves have
// no per-application storage permission.
type installTimeService struct{}

// DefaultService returns the capability service for the current
// platform.
func DefaultService(l *slog.Logger) storagegate.CapabilityService {
	return installTimeService{}
}

func (installTimeService) HasCapability(c storagegate.Capability) bool {
	return c == storagegate.WriteExternalStorage || c == storagegate.ReadExternalStorage
}

func (installTimeService) RequestCapabilities(requestID int, caps []storagegate.Capability) {}

func (s *Shell) platformEvent(e event.Event) {}

func (s *Shell) destroyPlatform() {}
