// SPDX-License-Identifier: Unlicense OR MIT

package main

// fakesid hosts the native tracker runtime in a single Gio activity and
// asks for the external storage write permission on start.

import (
	"log/slog"
	"os"

	"gioui.org/app"
	_ "gioui.org/app/permission/storage"

	"github.com/twobit/fakesid/activity"
	"github.com/twobit/fakesid/internal/log"
)

func main() {
	logger := log.Default(slog.LevelInfo)
	go func() {
		w := app.NewWindow(app.Title("fakesid"))
		s := activity.New(activity.DefaultService(logger), activity.WithLogger(logger))
		if err := s.Loop(w.Events()); err != nil {
			logger.Error("activity failed", "err", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}
