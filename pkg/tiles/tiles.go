// Package tiles holds the Web-Mercator slippy map math used by the
// basemap fetcher and the map view widget.
package tiles

import (
	"fmt"
	"math"
)

// Size is the edge length of a raster tile in pixels.
const Size = 256

// MaxZoom is the deepest zoom level the tile sources serve.
const MaxZoom = 19

// Web Mercator's valid latitude range.
const maxLat = 85.05112878

// Coord identifies a tile in the slippy map scheme.
type Coord struct {
	X, Y, Zoom int
}

func (c Coord) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Zoom, c.X, c.Y)
}

// Valid reports whether the tile exists at its zoom level.
func (c Coord) Valid() bool {
	if c.Zoom < 0 || c.Zoom > MaxZoom {
		return false
	}
	n := 1 << c.Zoom
	return c.X >= 0 && c.X < n && c.Y >= 0 && c.Y < n
}

func clampLat(lat float64) float64 {
	if lat > maxLat {
		return maxLat
	}
	if lat < -maxLat {
		return -maxLat
	}
	return lat
}

func normLon(lon float64) float64 {
	lon = math.Mod(lon+180.0, 360.0)
	if lon < 0 {
		lon += 360.0
	}
	return lon - 180.0
}

// GlobalPixel converts lat/lon to global pixel coordinates measured
// from the map origin at the given zoom.
func GlobalPixel(lat, lon float64, zoom int) (px, py float64) {
	lat = clampLat(lat)
	lon = normLon(lon)
	n := float64(uint64(1) << uint(zoom))
	x := (lon + 180.0) / 360.0 * n
	latRad := lat * math.Pi / 180.0
	y := (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n
	return x * Size, y * Size
}

// LatLon is the inverse of GlobalPixel.
func LatLon(px, py float64, zoom int) (lat, lon float64) {
	n := float64(uint64(1) << uint(zoom))
	lon = px/(n*Size)*360.0 - 180.0
	latRad := math.Atan(math.Sinh(math.Pi * (1.0 - 2.0*py/(n*Size))))
	lat = latRad * 180.0 / math.Pi
	return lat, lon
}

// FromLatLon returns the tile containing the given position, clamped
// to the valid range at that zoom.
func FromLatLon(lat, lon float64, zoom int) Coord {
	px, py := GlobalPixel(lat, lon, zoom)
	maxIdx := (1 << zoom) - 1
	x := int(math.Floor(px / Size))
	y := int(math.Floor(py / Size))
	x = max(0, min(x, maxIdx))
	y = max(0, min(y, maxIdx))
	return Coord{X: x, Y: y, Zoom: zoom}
}

// FitZoom picks the deepest zoom at which the lat/lon box
// (minLat,minLon)-(maxLat,maxLon) fits inside a w x h pixel viewport.
func FitZoom(minLat, minLon, maxLat, maxLon float64, w, h int) int {
	if w <= 0 || h <= 0 {
		return 0
	}
	for zoom := MaxZoom; zoom > 0; zoom-- {
		x0, y0 := GlobalPixel(maxLat, minLon, zoom)
		x1, y1 := GlobalPixel(minLat, maxLon, zoom)
		if x1-x0 <= float64(w) && y1-y0 <= float64(h) {
			return zoom
		}
	}
	return 0
}
