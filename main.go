package main

import (
	"log"
	"net/url"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/geovan/brewmap/pkg/debug"
	"github.com/geovan/brewmap/pkg/update"
	"github.com/geovan/brewmap/pkg/windows"
)

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds)
}

func main() {
	a := app.NewWithID("com.geovan.brewmap")

	mw := windows.NewMainWindow(a)
	mw.SetMaster()
	mw.Resize(fyne.NewSize(800, 700))

	go updateCheck(a, mw)

	defer debug.Close()
	mw.ShowAndRun()
}

func updateCheck(a fyne.App, mw fyne.Window) {
	nextUpdateCheck := a.Preferences().String("nextUpdateCheck")
	if nextUpdateCheck != "" {
		if nextCheckTime, err := time.Parse(time.RFC3339, nextUpdateCheck); err == nil {
			if time.Now().Before(nextCheckTime) {
				return
			}
		}
	}
	if tt, err := time.Now().Add(96 * time.Hour).MarshalText(); err == nil {
		a.Preferences().SetString("nextUpdateCheck", string(tt))
	}

	isLatest, latestVersion := update.IsLatest("v" + a.Metadata().Version)
	if isLatest || a.Preferences().String("ignoreVersion") == latestVersion {
		return
	}
	u, err := url.Parse("https://github.com/geovan/brewmap/releases")
	if err != nil {
		return
	}
	link := widget.NewHyperlink("brewmap releases", u)
	link.Alignment = fyne.TextAlignCenter
	link.TextStyle = fyne.TextStyle{Bold: true}
	fyne.Do(func() {
		dialog.ShowCustomConfirm(
			"Update available!",
			"Remind me", "Don't remind me",
			container.NewVBox(
				widget.NewLabel("There is a new version available"),
				link,
			),
			func(choice bool) {
				if !choice {
					a.Preferences().SetString("ignoreVersion", latestVersion)
				}
			},
			mw,
		)
	})
}
