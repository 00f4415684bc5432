package mapview

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/geovan/brewmap/pkg/tiles"
)

type renderer struct {
	mv     *MapView
	raster *canvas.Raster
}

func (r *renderer) Layout(size fyne.Size) {
	r.raster.Resize(size)
	if r.mv.callout.visible {
		r.mv.callout.layout(r.mv.LocationToScreen(r.mv.callout.anchor))
	}
}

func (r *renderer) MinSize() fyne.Size {
	return fyne.NewSize(tiles.Size/4, tiles.Size/4)
}

func (r *renderer) Objects() []fyne.CanvasObject {
	return append([]fyne.CanvasObject{r.raster}, r.mv.callout.objects()...)
}

func (r *renderer) Refresh() {
	r.Layout(r.mv.Size())
	r.raster.Refresh()
	for _, o := range r.mv.callout.objects() {
		o.Refresh()
	}
}

func (r *renderer) Destroy() {}
