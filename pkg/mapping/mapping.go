// Package mapping composes a basemap with operational layers.
package mapping

import (
	"github.com/geovan/brewmap/pkg/basemap"
	"github.com/geovan/brewmap/pkg/layer"
)

// Map is a basemap with the operational layers drawn above it.
type Map struct {
	Basemap basemap.Source

	operational []*layer.FeatureLayer
}

// New returns a map over the given basemap with no operational layers.
func New(b basemap.Source) *Map {
	return &Map{Basemap: b}
}

// AddOperationalLayer appends l above the basemap and any earlier layers.
func (m *Map) AddOperationalLayer(l *layer.FeatureLayer) {
	m.operational = append(m.operational, l)
}

// OperationalLayers returns the layers in draw order.
func (m *Map) OperationalLayers() []*layer.FeatureLayer {
	return m.operational
}
