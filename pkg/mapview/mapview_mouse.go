package mapview

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/geovan/brewmap/pkg/tiles"
)

// Movement below this many points between press and release still
// counts as a click.
const clickSlop = 4

var (
	_ desktop.Mouseable = (*MapView)(nil)
	_ fyne.Draggable    = (*MapView)(nil)
	_ fyne.Scrollable   = (*MapView)(nil)
)

func (mv *MapView) MouseDown(event *desktop.MouseEvent) {
	mv.pressPos = event.Position
	mv.dragged = false
}

func (mv *MapView) MouseUp(event *desktop.MouseEvent) {
	if mv.onClicked == nil {
		return
	}
	dx := event.Position.X - mv.pressPos.X
	dy := event.Position.Y - mv.pressPos.Y
	still := !mv.dragged && dx*dx+dy*dy <= clickSlop*clickSlop
	mv.onClicked(ClickEvent{
		Position:        event.Position,
		Button:          event.Button,
		StillSincePress: still,
	})
}

// Dragged pans the viewport with the pointer.
func (mv *MapView) Dragged(event *fyne.DragEvent) {
	mv.dragged = true
	mv.mu.Lock()
	cx, cy := tiles.GlobalPixel(mv.centerLat, mv.centerLon, mv.zoom)
	mv.centerLat, mv.centerLon = tiles.LatLon(cx-float64(event.Dragged.DX), cy-float64(event.Dragged.DY), mv.zoom)
	mv.mu.Unlock()
	mv.Refresh()
}

func (mv *MapView) DragEnd() {}

// Scrolled zooms around the viewport center.
func (mv *MapView) Scrolled(event *fyne.ScrollEvent) {
	mv.mu.Lock()
	zoom := mv.zoom
	if event.Scrolled.DY > 0 && zoom < tiles.MaxZoom {
		zoom++
	} else if event.Scrolled.DY < 0 && zoom > 0 {
		zoom--
	}
	changed := zoom != mv.zoom
	mv.zoom = zoom
	mv.mu.Unlock()
	if changed {
		mv.Refresh()
	}
}
