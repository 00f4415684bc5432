// Package windows wires the application window: portal item load,
// breweries layer load, and the map click handling.
package windows

import (
	"fmt"
	"net/http"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/skratchdot/open-golang/open"

	"github.com/geovan/brewmap/pkg/basemap"
	"github.com/geovan/brewmap/pkg/debug"
	"github.com/geovan/brewmap/pkg/layer"
	"github.com/geovan/brewmap/pkg/loadable"
	"github.com/geovan/brewmap/pkg/mapping"
	"github.com/geovan/brewmap/pkg/mapview"
	"github.com/geovan/brewmap/pkg/portal"
)

const (
	breweriesItemID  = "317b5f03d5de4f368fb802fe32d15dfa"
	breweriesLayerID = 0

	identifyTolerance  = 10
	identifyMaxResults = 10
)

// MainWindow shows the East Van breweries map. The map view handle
// lives for exactly the window's lifetime.
type MainWindow struct {
	fyne.Window
	app fyne.App

	mapView   *mapview.MapView
	item      *portal.Item
	breweries *layer.FeatureLayer
}

// NewMainWindow builds the window against ArcGIS Online and starts the
// portal item load.
func NewMainWindow(a fyne.App) *MainWindow {
	return newMainWindow(a, portal.New(portal.DefaultURL, nil), breweriesItemID, nil)
}

func newMainWindow(a fyne.App, p *portal.Portal, itemID string, cl *http.Client) *MainWindow {
	mw := &MainWindow{
		Window:  a.NewWindow("East Van Breweries"),
		app:     a,
		mapView: mapview.New(),
	}
	mw.SetContent(container.NewStack(mw.mapView))
	mw.SetMainMenu(mw.mainMenu())
	mw.SetOnClosed(mw.mapView.Dispose)
	mw.setupPortalItem(p, itemID, cl)
	return mw
}

func (mw *MainWindow) mainMenu() *fyne.MainMenu {
	return fyne.NewMainMenu(
		fyne.NewMenu("Map",
			fyne.NewMenuItem("View on ArcGIS Online", func() {
				if mw.item == nil {
					return
				}
				if err := open.Run(mw.item.PageURL()); err != nil {
					debug.Logf("open item page: %v", err)
				}
			}),
		),
	)
}

// setupPortalItem resolves the breweries content item; on success the
// feature layer load is chained, on failure a dialog reports why.
func (mw *MainWindow) setupPortalItem(p *portal.Portal, itemID string, cl *http.Client) {
	item := p.Item(itemID)
	mw.item = item
	item.OnDone(func() {
		if item.Status() == loadable.Loaded {
			mw.addBreweriesLayer(item, cl)
			return
		}
		dialog.ShowError(portalItemError(item.LoadError()), mw)
	})
	item.LoadAsync()
}

// addBreweriesLayer loads sub-layer 0 of the item's feature service.
// The map is composed and the click handler armed only once the layer
// reports loaded; before that the view keeps showing nothing.
func (mw *MainWindow) addBreweriesLayer(item *portal.Item, cl *http.Client) {
	l := layer.New(item, breweriesLayerID, cl)
	l.OnDone(func() {
		if l.Status() != loadable.Loaded {
			dialog.ShowError(featureLayerError(l.LoadError()), mw)
			return
		}
		m := mapping.New(basemap.LightGrayCanvas())
		m.AddOperationalLayer(l)

		mw.breweries = l
		mw.mapView.SetMap(m)
		mw.mapView.SetViewpoint(l.FullExtent())
		mw.mapView.SetOnClicked(mw.onMapClicked)
	})
	l.LoadAsync()
}

// onMapClicked runs the two independent per-click paths: feature
// selection and the location callout.
func (mw *MainWindow) onMapClicked(e mapview.ClickEvent) {
	if !qualifies(e) {
		return
	}
	mw.selectFeatures(e)
	mw.showLocationCallout(e)
}

// qualifies filters to genuine primary-button clicks; anything else
// must leave selection and callout untouched.
func qualifies(e mapview.ClickEvent) bool {
	return e.StillSincePress && e.Button == desktop.MouseButtonPrimary
}

// selectFeatures clears the selection and replaces it with whatever
// the identify hit-test returns. Identify errors are recorded and
// swallowed; a transient click miss should not interrupt the user.
func (mw *MainWindow) selectFeatures(e mapview.ClickEvent) {
	mw.breweries.ClearSelection()
	mw.mapView.IdentifyLayer(mw.breweries, e.Position, identifyTolerance, identifyMaxResults,
		func(res mapview.IdentifyResult, err error) {
			if err != nil {
				debug.Logf("identify: %v", err)
				return
			}
			feats := make([]*geojson.Feature, 0, len(res.Elements))
			for _, el := range res.Elements {
				if f, ok := el.(*geojson.Feature); ok {
					feats = append(feats, f)
				}
			}
			mw.breweries.SelectFeatures(feats)
			mw.mapView.Refresh()
		})
}

// showLocationCallout dismisses any visible callout and shows a new
// one at the clicked map coordinate.
func (mw *MainWindow) showLocationCallout(e mapview.ClickEvent) {
	if mw.mapView.CalloutVisible() {
		mw.mapView.DismissCallout()
	}
	p := mw.mapView.ScreenToLocation(e.Position)
	mw.mapView.ShowCalloutAt("Location", formatLocation(p), p)
}

// Close releases the map view's resources and closes the window.
func (mw *MainWindow) Close() {
	if mw.mapView != nil {
		mw.mapView.Dispose()
	}
	mw.Window.Close()
}

func portalItemError(err error) error {
	return fmt.Errorf("Portal Item: %w", err)
}

func featureLayerError(err error) error {
	return fmt.Errorf("Feature Layer: %w", err)
}

func formatLocation(p orb.Point) string {
	return fmt.Sprintf("x: %.2f, y: %.2f", p.X(), p.Y())
}
