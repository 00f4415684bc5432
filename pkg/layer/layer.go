// Package layer implements the operational feature layer: feature data
// queried from a hosted feature service, plus the current selection.
package layer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/geovan/brewmap/pkg/loadable"
	"github.com/geovan/brewmap/pkg/portal"
)

// FeatureLayer loads the features of one sub-layer of a hosted feature
// service and tracks a selection over them. Selection mutation happens
// on the UI thread; the mutex is there for the accessors.
type FeatureLayer struct {
	loadable.Base

	item    *portal.Item
	layerID int
	cl      *http.Client

	mu         sync.RWMutex
	features   []*geojson.Feature
	selected   map[*geojson.Feature]struct{}
	fullExtent orb.Bound
}

// New returns an unloaded layer over sub-layer layerID of the item's
// feature service. The item must already be loaded when LoadAsync runs.
func New(item *portal.Item, layerID int, cl *http.Client) *FeatureLayer {
	if cl == nil {
		cl = &http.Client{Timeout: 30 * time.Second}
	}
	return &FeatureLayer{
		item:     item,
		layerID:  layerID,
		cl:       cl,
		selected: make(map[*geojson.Feature]struct{}),
	}
}

// LoadAsync queries the layer's features on a background goroutine and
// fires the done listeners on the UI thread. Only the first call has
// any effect.
func (l *FeatureLayer) LoadAsync() {
	if !l.Begin() {
		return
	}
	go func() {
		l.Finish(l.load())
	}()
}

func (l *FeatureLayer) load() error {
	if l.item.Status() != loadable.Loaded {
		return fmt.Errorf("portal item %s is %s", l.item.ID(), l.item.Status())
	}

	q := url.Values{}
	q.Set("where", "1=1")
	q.Set("outFields", "*")
	q.Set("f", "geojson")
	queryURL := fmt.Sprintf("%s/%d/query?%s", l.item.ServiceURL, l.layerID, q.Encode())

	var body []byte
	err := retry.Do(func() error {
		resp, err := l.cl.Get(queryURL)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("layer %d: %s", l.layerID, resp.Status)
		}
		body, err = io.ReadAll(resp.Body)
		return err
	},
		retry.Attempts(3),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}

	// Service-side failures come back 200 with an error member; its
	// message is surfaced as-is, it is what the user sees in the dialog.
	var probe struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &probe) == nil && probe.Error != nil {
		return errors.New(probe.Error.Message)
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return fmt.Errorf("layer %d: %w", l.layerID, err)
	}
	if len(fc.Features) == 0 {
		return fmt.Errorf("layer %d has no features", l.layerID)
	}

	extent := fc.Features[0].Geometry.Bound()
	for _, f := range fc.Features[1:] {
		extent = extent.Union(f.Geometry.Bound())
	}

	l.mu.Lock()
	l.features = fc.Features
	l.fullExtent = extent
	l.mu.Unlock()
	return nil
}

// Item returns the portal item this layer was built from.
func (l *FeatureLayer) Item() *portal.Item {
	return l.item
}

// FullExtent is the bounding region of all features. Valid once loaded.
func (l *FeatureLayer) FullExtent() orb.Bound {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fullExtent
}

// Features returns the loaded feature slice. Callers must not mutate it.
func (l *FeatureLayer) Features() []*geojson.Feature {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.features
}

// ClearSelection deselects everything. Clearing an empty selection is
// a no-op.
func (l *FeatureLayer) ClearSelection() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.selected) == 0 {
		return
	}
	l.selected = make(map[*geojson.Feature]struct{})
}

// SelectFeatures replaces the selection with the given features.
func (l *FeatureLayer) SelectFeatures(fs []*geojson.Feature) {
	sel := make(map[*geojson.Feature]struct{}, len(fs))
	for _, f := range fs {
		sel[f] = struct{}{}
	}
	l.mu.Lock()
	l.selected = sel
	l.mu.Unlock()
}

// Selected reports whether f is in the current selection.
func (l *FeatureLayer) Selected(f *geojson.Feature) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.selected[f]
	return ok
}

// SelectionCount returns the size of the current selection.
func (l *FeatureLayer) SelectionCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.selected)
}
