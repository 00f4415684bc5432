package mapview

import (
	"fmt"
	"sort"

	"fyne.io/fyne/v2"
	"github.com/paulmach/orb"

	"github.com/geovan/brewmap/pkg/layer"
	"github.com/geovan/brewmap/pkg/loadable"
)

// IdentifyResult carries the map elements found near an identify
// point, nearest first. For feature layers every element is a
// *geojson.Feature; callers filter on type.
type IdentifyResult struct {
	Elements []any
}

// IdentifyLayer hit-tests the layer around screenPt on a background
// goroutine and delivers the result, or the error, to done on the UI
// thread. Results are capped at maxResults within tolerance points.
// Overlapping calls complete in no particular order; the caller sees
// whichever finishes last.
func (mv *MapView) IdentifyLayer(l *layer.FeatureLayer, screenPt fyne.Position, tolerance float32, maxResults int, done func(IdentifyResult, error)) {
	// Snapshot the viewport on the caller's thread so a concurrent pan
	// cannot shear the hit-test.
	size := mv.Size()
	mv.mu.Lock()
	centerLat, centerLon, zoom := mv.centerLat, mv.centerLon, mv.zoom
	mv.mu.Unlock()

	go func() {
		res, err := identify(l, screenPt, tolerance, maxResults, centerLat, centerLon, zoom, size)
		fyne.Do(func() {
			done(res, err)
		})
	}()
}

type hit struct {
	element any
	distSq  float32
}

func identify(l *layer.FeatureLayer, screenPt fyne.Position, tolerance float32, maxResults int,
	centerLat, centerLon float64, zoom int, size fyne.Size) (IdentifyResult, error) {

	if status := l.Status(); status != loadable.Loaded {
		return IdentifyResult{}, fmt.Errorf("identify: layer is %s", status)
	}
	if maxResults <= 0 {
		return IdentifyResult{}, nil
	}

	view := viewport{centerLat: centerLat, centerLon: centerLon, zoom: zoom, size: size}

	var hits []hit
	for _, f := range l.Features() {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		sp := view.locationToScreen(pt)
		dx := sp.X - screenPt.X
		dy := sp.Y - screenPt.Y
		if d := dx*dx + dy*dy; d <= tolerance*tolerance {
			hits = append(hits, hit{element: f, distSq: d})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].distSq < hits[j].distSq })
	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}

	res := IdentifyResult{Elements: make([]any, len(hits))}
	for i, h := range hits {
		res.Elements[i] = h.element
	}
	return res, nil
}
