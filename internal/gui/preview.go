package gui

import (
	"fmt"
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/kikiluvv/reelforge/internal/playback"
	"github.com/kikiluvv/reelforge/internal/render"
	"github.com/kikiluvv/reelforge/pkg/util"
)

// guiRefreshInterval paces the on-screen surface refresh; the render loop
// keeps its own cadence.
const guiRefreshInterval = 66 * time.Millisecond

// RunPreview opens the desktop preview window: the live surface with
// transport controls underneath.
func RunPreview(player *playback.Player, snapshot func() image.Image, duration float64) {
	myApp := app.NewWithID("reelforge")
	w := myApp.NewWindow("reelforge preview")
	w.Resize(fyne.NewSize(render.CanvasWidth/2, render.CanvasHeight/2+60))

	surface := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, render.CanvasWidth, render.CanvasHeight)))
	surface.FillMode = canvas.ImageFillContain
	surface.SetMinSize(fyne.NewSize(render.CanvasWidth/2, render.CanvasHeight/2))

	positionLabel := widget.NewLabel(fmt.Sprintf("%s / %s", util.FormatSeconds(0), util.FormatSeconds(duration)))

	playButton := widget.NewButton("Play", func() {
		player.Play()
	})
	pauseButton := widget.NewButton("Pause", func() {
		player.Pause()
	})
	stopButton := widget.NewButton("Stop", func() {
		player.Stop()
	})

	w.SetContent(
		container.NewVBox(
			surface,
			container.NewHBox(playButton, pauseButton, stopButton, positionLabel),
		),
	)

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(guiRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
			if frame := snapshot(); frame != nil {
				surface.Image = frame
				canvas.Refresh(surface)
			}
			positionLabel.SetText(fmt.Sprintf("%s / %s",
				util.FormatSeconds(player.Position()),
				util.FormatSeconds(duration)))
		}
	}()
	w.SetOnClosed(func() {
		close(stop)
		player.Stop()
	})

	w.ShowAndRun()
}
