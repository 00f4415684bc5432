// Package mapview implements the interactive map widget: basemap
// tiles, operational layer markers, pointer input, identify hit-tests
// and the location callout.
package mapview

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/nfnt/resize"
	"github.com/paulmach/orb"
	xdraw "golang.org/x/image/draw"

	"github.com/geovan/brewmap/pkg/basemap"
	"github.com/geovan/brewmap/pkg/debug"
	"github.com/geovan/brewmap/pkg/mapping"
	"github.com/geovan/brewmap/pkg/tiles"
)

const (
	markerRadius = 6
	// Cap for zoom-to-extent so a near-degenerate extent does not zoom
	// past useful tile coverage.
	maxFitZoom = 16
)

var (
	backgroundColor = color.NRGBA{R: 0xe8, G: 0xe8, B: 0xe6, A: 0xff}
	markerColor     = color.NRGBA{R: 0x9c, G: 0x27, B: 0x1f, A: 0xff}
	selectionColor  = color.NRGBA{R: 0x00, G: 0xe5, B: 0xff, A: 0xff}
)

// ClickEvent describes a completed pointer press/release on the view.
type ClickEvent struct {
	Position        fyne.Position
	Button          desktop.MouseButton
	StillSincePress bool
}

// MapView renders a mapping.Map and reports pointer clicks. Mutating
// calls (SetMap, SetViewpoint, SetOnClicked) belong on the UI thread.
type MapView struct {
	widget.BaseWidget

	mu      sync.Mutex
	m       *mapping.Map
	fetcher *basemap.Fetcher

	centerLat, centerLon float64
	zoom                 int

	pixels *image.NRGBA

	pressPos  fyne.Position
	dragged   bool
	onClicked func(ClickEvent)

	callout callout

	disposeOnce sync.Once
}

// New returns an empty map view. Nothing is drawn until SetMap.
func New() *MapView {
	mv := &MapView{}
	mv.ExtendBaseWidget(mv)
	return mv
}

// SetMap attaches the map whose basemap and operational layers the
// view renders.
func (mv *MapView) SetMap(m *mapping.Map) {
	mv.mu.Lock()
	if mv.fetcher != nil {
		mv.fetcher.Close()
	}
	mv.m = m
	mv.fetcher = basemap.NewFetcher(m.Basemap, nil)
	mv.mu.Unlock()
	mv.Refresh()
}

// Map returns the currently displayed map, nil before SetMap.
func (mv *MapView) Map() *mapping.Map {
	mv.mu.Lock()
	defer mv.mu.Unlock()
	return mv.m
}

// SetViewpoint centers the view on the extent and picks the deepest
// zoom that keeps it fully visible.
func (mv *MapView) SetViewpoint(extent orb.Bound) {
	c := extent.Center()
	size := mv.Size()
	zoom := tiles.FitZoom(extent.Min.Y(), extent.Min.X(), extent.Max.Y(), extent.Max.X(),
		int(size.Width), int(size.Height))
	if zoom > maxFitZoom {
		zoom = maxFitZoom
	}

	mv.mu.Lock()
	mv.centerLat = c.Y()
	mv.centerLon = c.X()
	mv.zoom = zoom
	mv.mu.Unlock()
	mv.Refresh()
}

// Center returns the viewport center as lon/lat.
func (mv *MapView) Center() orb.Point {
	mv.mu.Lock()
	defer mv.mu.Unlock()
	return orb.Point{mv.centerLon, mv.centerLat}
}

// Zoom returns the current zoom level.
func (mv *MapView) Zoom() int {
	mv.mu.Lock()
	defer mv.mu.Unlock()
	return mv.zoom
}

// SetOnClicked registers the handler invoked for every pointer
// release, qualifying or not. The handler runs on the UI thread.
func (mv *MapView) SetOnClicked(fn func(ClickEvent)) {
	mv.onClicked = fn
}

// ScreenToLocation converts a widget-local position to a lon/lat map
// coordinate under the current viewport.
func (mv *MapView) ScreenToLocation(pos fyne.Position) orb.Point {
	size := mv.Size()
	mv.mu.Lock()
	defer mv.mu.Unlock()
	cx, cy := tiles.GlobalPixel(mv.centerLat, mv.centerLon, mv.zoom)
	gx := cx + float64(pos.X-size.Width/2)
	gy := cy + float64(pos.Y-size.Height/2)
	lat, lon := tiles.LatLon(gx, gy, mv.zoom)
	return orb.Point{lon, lat}
}

// LocationToScreen is the inverse of ScreenToLocation.
func (mv *MapView) LocationToScreen(p orb.Point) fyne.Position {
	size := mv.Size()
	mv.mu.Lock()
	defer mv.mu.Unlock()
	return mv.locationToScreen(p, size)
}

// locationToScreen needs mv.mu held.
func (mv *MapView) locationToScreen(p orb.Point, size fyne.Size) fyne.Position {
	v := viewport{centerLat: mv.centerLat, centerLon: mv.centerLon, zoom: mv.zoom, size: size}
	return v.locationToScreen(p)
}

// viewport is an immutable snapshot of the view transform, usable off
// the UI thread.
type viewport struct {
	centerLat, centerLon float64
	zoom                 int
	size                 fyne.Size
}

func (v viewport) locationToScreen(p orb.Point) fyne.Position {
	cx, cy := tiles.GlobalPixel(v.centerLat, v.centerLon, v.zoom)
	px, py := tiles.GlobalPixel(p.Y(), p.X(), v.zoom)
	return fyne.NewPos(
		float32(px-cx)+v.size.Width/2,
		float32(py-cy)+v.size.Height/2,
	)
}

// Dispose releases the view's network and cache resources. Calling it
// again, or on a view that never displayed a map, is a no-op.
func (mv *MapView) Dispose() {
	mv.disposeOnce.Do(func() {
		mv.mu.Lock()
		defer mv.mu.Unlock()
		if mv.fetcher != nil {
			mv.fetcher.Close()
			mv.fetcher = nil
		}
	})
}

// rasterDraw composites basemap tiles and feature markers. Called by
// the canvas on the render thread; w and h are device pixels.
func (mv *MapView) rasterDraw(w, h int) image.Image {
	mv.mu.Lock()
	defer mv.mu.Unlock()

	if mv.pixels == nil || mv.pixels.Bounds().Dx() != w || mv.pixels.Bounds().Dy() != h {
		mv.pixels = image.NewNRGBA(image.Rect(0, 0, w, h))
	}
	draw.Draw(mv.pixels, mv.pixels.Bounds(), &image.Uniform{backgroundColor}, image.Point{}, draw.Src)

	if mv.m == nil || mv.fetcher == nil || w == 0 || h == 0 {
		return mv.pixels
	}

	scale := 1
	size := mv.Size()
	if size.Width > 0 {
		scale = int(float32(w)/size.Width + 0.5)
		if scale < 1 {
			scale = 1
		}
	}
	tileDrawSize := tiles.Size * scale

	cx, cy := tiles.GlobalPixel(mv.centerLat, mv.centerLon, mv.zoom)
	// Top-left of the viewport in scaled global pixels.
	originX := cx*float64(scale) - float64(w)/2
	originY := cy*float64(scale) - float64(h)/2

	firstX := int(originX) / tileDrawSize
	firstY := int(originY) / tileDrawSize
	for tx := firstX; tx*tileDrawSize < int(originX)+w; tx++ {
		for ty := firstY; ty*tileDrawSize < int(originY)+h; ty++ {
			coord := tiles.Coord{X: tx, Y: ty, Zoom: mv.zoom}
			if !coord.Valid() {
				continue
			}
			src, ok := mv.fetcher.Cached(coord)
			if !ok {
				go mv.fetchAndRefresh(mv.fetcher, coord)
				continue
			}
			if scale > 1 {
				src = resize.Resize(uint(tileDrawSize), uint(tileDrawSize), src, resize.Lanczos2)
			}
			pos := image.Pt(tx*tileDrawSize-int(originX), ty*tileDrawSize-int(originY))
			xdraw.Copy(mv.pixels, pos, src, image.Rect(0, 0, tileDrawSize, tileDrawSize), xdraw.Over, nil)
		}
	}

	for _, l := range mv.m.OperationalLayers() {
		for _, f := range l.Features() {
			pt, ok := f.Geometry.(orb.Point)
			if !ok {
				continue
			}
			sp := mv.locationToScreen(pt, size)
			col := markerColor
			if l.Selected(f) {
				col = selectionColor
			}
			fillCircle(mv.pixels, int(sp.X)*scale, int(sp.Y)*scale, markerRadius*scale, col)
		}
	}

	return mv.pixels
}

// fetchAndRefresh pulls one tile in the background and redraws when it
// lands in the cache. Fetch failures are diagnostic only.
func (mv *MapView) fetchAndRefresh(f *basemap.Fetcher, coord tiles.Coord) {
	if _, err := f.Get(coord); err != nil {
		debug.Logf("tile fetch %s: %v", coord, err)
		return
	}
	fyne.Do(mv.Refresh)
}

func fillCircle(img *image.NRGBA, cx, cy, r int, col color.NRGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			x, y := cx+dx, cy+dy
			if image.Pt(x, y).In(img.Bounds()) {
				img.SetNRGBA(x, y, col)
			}
		}
	}
}

// CreateRenderer returns the renderer stacking the map raster under
// the callout overlay.
func (mv *MapView) CreateRenderer() fyne.WidgetRenderer {
	raster := canvas.NewRaster(mv.rasterDraw)
	mv.callout.build()
	return &renderer{mv: mv, raster: raster}
}
