package tiles_test

import (
	"math"
	"testing"

	"github.com/geovan/brewmap/pkg/tiles"
)

func TestFromLatLon(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		zoom     int
		want     tiles.Coord
	}{
		{
			name: "null island zoom zero",
			want: tiles.Coord{X: 0, Y: 0, Zoom: 0},
		},
		{
			name: "east van",
			lat:  49.28, lon: -123.07,
			zoom: 12,
			want: tiles.Coord{X: 647, Y: 1401, Zoom: 12},
		},
		{
			name: "north pole clamps",
			lat:  89.9, lon: 0,
			zoom: 4,
			want: tiles.Coord{X: 8, Y: 0, Zoom: 4},
		},
		{
			name: "antimeridian clamps",
			lat:  0, lon: 180,
			zoom: 2,
			want: tiles.Coord{X: 0, Y: 2, Zoom: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tiles.FromLatLon(tt.lat, tt.lon, tt.zoom)
			if got != tt.want {
				t.Errorf("FromLatLon() = %v, want %v", got, tt.want)
			}
			if !got.Valid() {
				t.Errorf("FromLatLon() returned invalid tile %v", got)
			}
		})
	}
}

func TestGlobalPixelRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		zoom     int
	}{
		{name: "east van", lat: 49.2827, lon: -123.0707, zoom: 14},
		{name: "southern hemisphere", lat: -33.86, lon: 151.21, zoom: 10},
		{name: "origin", lat: 0, lon: 0, zoom: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			px, py := tiles.GlobalPixel(tt.lat, tt.lon, tt.zoom)
			lat, lon := tiles.LatLon(px, py, tt.zoom)
			if math.Abs(lat-tt.lat) > 1e-6 || math.Abs(lon-tt.lon) > 1e-6 {
				t.Errorf("round trip = (%f, %f), want (%f, %f)", lat, lon, tt.lat, tt.lon)
			}
		})
	}
}

func TestFitZoom(t *testing.T) {
	tests := []struct {
		name                           string
		minLat, minLon, maxLat, maxLon float64
		w, h                           int
		want                           int
	}{
		{
			name:   "whole world in one tile viewport",
			minLat: -85, minLon: -180, maxLat: 85, maxLon: 180,
			w: 256, h: 256,
			want: 0,
		},
		{
			name:   "empty viewport",
			minLat: 0, minLon: 0, maxLat: 1, maxLon: 1,
			w: 0, h: 0,
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tiles.FitZoom(tt.minLat, tt.minLon, tt.maxLat, tt.maxLon, tt.w, tt.h)
			if got != tt.want {
				t.Errorf("FitZoom() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFitZoomContains(t *testing.T) {
	// East Van extent in an 800x700 viewport: whatever zoom comes back,
	// the extent must fit and the next zoom in must not.
	minLat, minLon := 49.26, -123.11
	maxLat, maxLon := 49.30, -123.02
	w, h := 800, 700

	zoom := tiles.FitZoom(minLat, minLon, maxLat, maxLon, w, h)
	if zoom <= 0 || zoom > tiles.MaxZoom {
		t.Fatalf("FitZoom() = %d, out of range", zoom)
	}

	x0, y0 := tiles.GlobalPixel(maxLat, minLon, zoom)
	x1, y1 := tiles.GlobalPixel(minLat, maxLon, zoom)
	if x1-x0 > float64(w) || y1-y0 > float64(h) {
		t.Errorf("extent does not fit at zoom %d: %fx%f", zoom, x1-x0, y1-y0)
	}

	x0, y0 = tiles.GlobalPixel(maxLat, minLon, zoom+1)
	x1, y1 = tiles.GlobalPixel(minLat, maxLon, zoom+1)
	if x1-x0 <= float64(w) && y1-y0 <= float64(h) {
		t.Errorf("zoom %d is not the deepest fitting zoom", zoom)
	}
}
