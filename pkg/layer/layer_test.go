package layer_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"

	"github.com/geovan/brewmap/pkg/layer"
	"github.com/geovan/brewmap/pkg/loadable"
	"github.com/geovan/brewmap/pkg/portal"
)

const breweriesFC = `{
	"type": "FeatureCollection",
	"features": [
		{"type":"Feature","geometry":{"type":"Point","coordinates":[-123.0695,49.2820]},"properties":{"name":"Storm Brewing"}},
		{"type":"Feature","geometry":{"type":"Point","coordinates":[-123.0663,49.2779]},"properties":{"name":"Parallel 49"}},
		{"type":"Feature","geometry":{"type":"Point","coordinates":[-123.1016,49.2734]},"properties":{"name":"Main Street"}}
	]
}`

// newServer serves a portal item descriptor pointing back at itself as
// the feature service, and the layer query on sub-layer 0.
func newServer(t *testing.T, queryBody string, queryStatus int) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/sharing/rest/content/items/"):
			w.Write([]byte(`{"id":"item","title":"East Van Breweries","type":"Feature Service","url":"` + srv.URL + `/FeatureServer"}`))
		case strings.HasPrefix(r.URL.Path, "/FeatureServer/0/query"):
			if queryStatus != http.StatusOK {
				w.WriteHeader(queryStatus)
				return
			}
			w.Write([]byte(queryBody))
		default:
			http.NotFound(w, r)
		}
	}))
	return srv
}

func loadItem(t *testing.T, srv *httptest.Server) *portal.Item {
	t.Helper()
	it := portal.New(srv.URL, srv.Client()).Item("item")
	it.LoadAsync()
	waitDone(t, &it.Base)
	if it.Status() != loadable.Loaded {
		t.Fatalf("portal item did not load: %v", it.LoadError())
	}
	return it
}

func waitDone(t *testing.T, b *loadable.Base) {
	t.Helper()
	done := make(chan struct{})
	b.OnDone(func() { close(done) })
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("load did not finish")
	}
}

func TestLayerLoad(t *testing.T) {
	test.NewApp()

	srv := newServer(t, breweriesFC, http.StatusOK)
	defer srv.Close()

	l := layer.New(loadItem(t, srv), 0, srv.Client())
	l.LoadAsync()
	waitDone(t, &l.Base)

	if got := l.Status(); got != loadable.Loaded {
		t.Fatalf("Status() = %v, err %v", got, l.LoadError())
	}
	if got := len(l.Features()); got != 3 {
		t.Errorf("len(Features()) = %d, want 3", got)
	}

	ext := l.FullExtent()
	if ext.Min.X() != -123.1016 || ext.Max.X() != -123.0663 {
		t.Errorf("extent x = [%f, %f]", ext.Min.X(), ext.Max.X())
	}
	if ext.Min.Y() != 49.2734 || ext.Max.Y() != 49.2820 {
		t.Errorf("extent y = [%f, %f]", ext.Min.Y(), ext.Max.Y())
	}
}

func TestLayerLoadFailures(t *testing.T) {
	test.NewApp()

	tests := []struct {
		name        string
		queryBody   string
		queryStatus int
		wantErr     string
	}{
		{
			name:        "service error in band",
			queryBody:   `{"error":{"code":400,"message":"invalid layer id"}}`,
			queryStatus: http.StatusOK,
			wantErr:     "invalid layer id",
		},
		{
			name:        "http failure",
			queryBody:   "",
			queryStatus: http.StatusBadGateway,
			wantErr:     "502",
		},
		{
			name:        "empty collection",
			queryBody:   `{"type":"FeatureCollection","features":[]}`,
			queryStatus: http.StatusOK,
			wantErr:     "no features",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.queryBody, tt.queryStatus)
			defer srv.Close()

			l := layer.New(loadItem(t, srv), 0, srv.Client())
			l.LoadAsync()
			waitDone(t, &l.Base)

			if got := l.Status(); got != loadable.FailedToLoad {
				t.Fatalf("Status() = %v, want FailedToLoad", got)
			}
			if err := l.LoadError(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadError() = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLayerRequiresLoadedItem(t *testing.T) {
	test.NewApp()

	srv := newServer(t, breweriesFC, http.StatusOK)
	defer srv.Close()

	// Item never loaded.
	it := portal.New(srv.URL, srv.Client()).Item("item")
	l := layer.New(it, 0, srv.Client())
	l.LoadAsync()
	waitDone(t, &l.Base)

	if got := l.Status(); got != loadable.FailedToLoad {
		t.Errorf("Status() = %v, want FailedToLoad", got)
	}
}

func TestSelection(t *testing.T) {
	test.NewApp()

	srv := newServer(t, breweriesFC, http.StatusOK)
	defer srv.Close()

	l := layer.New(loadItem(t, srv), 0, srv.Client())
	l.LoadAsync()
	waitDone(t, &l.Base)

	feats := l.Features()

	// Clearing an empty selection is a no-op.
	l.ClearSelection()
	if got := l.SelectionCount(); got != 0 {
		t.Fatalf("SelectionCount() = %d after clearing empty", got)
	}

	l.SelectFeatures(feats[:2])
	if got := l.SelectionCount(); got != 2 {
		t.Errorf("SelectionCount() = %d, want 2", got)
	}
	if !l.Selected(feats[0]) || !l.Selected(feats[1]) {
		t.Error("selected features not reported as selected")
	}
	if l.Selected(feats[2]) {
		t.Error("unselected feature reported as selected")
	}

	// Each selection replaces the previous one.
	l.SelectFeatures(feats[2:])
	if l.Selected(feats[0]) {
		t.Error("stale selection survived replacement")
	}
	if !l.Selected(feats[2]) {
		t.Error("new selection not applied")
	}

	l.ClearSelection()
	if got := l.SelectionCount(); got != 0 {
		t.Errorf("SelectionCount() = %d after clear", got)
	}
}
