// Package basemap fetches and caches raster basemap tiles.
package basemap

import (
	"fmt"
	"image"
	"io"
	"net/http"
	"sync"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/avast/retry-go/v4"
	"github.com/geovan/brewmap/pkg/tiles"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"
)

const userAgent = "brewmap/1.0"

// Source describes a slippy raster tile endpoint.
type Source struct {
	Name        string
	URLTemplate string // fmt template taking zoom, x, y
	Attribution string
}

// LightGrayCanvas is the fixed light-gray basemap the application
// renders beneath the breweries layer.
func LightGrayCanvas() Source {
	return Source{
		Name:        "Light Gray Canvas",
		URLTemplate: "https://basemaps.cartocdn.com/rastertiles/light_all/%d/%d/%d.png",
		Attribution: "CARTO, OpenStreetMap contributors",
	}
}

func (s Source) url(c tiles.Coord) string {
	return fmt.Sprintf(s.URLTemplate, c.Zoom, c.X, c.Y)
}

// Fetcher downloads tiles for a Source, deduplicating concurrent
// requests and keeping decoded tiles in a TTL cache.
type Fetcher struct {
	src   Source
	cl    *http.Client
	cache *ttlcache.Cache[string, image.Image]
	group singleflight.Group

	closeOnce sync.Once
}

// NewFetcher returns a Fetcher for src. A nil client uses a default
// with a 30 second timeout.
func NewFetcher(src Source, cl *http.Client) *Fetcher {
	if cl == nil {
		cl = &http.Client{Timeout: 30 * time.Second}
	}
	f := &Fetcher{
		src: src,
		cl:  cl,
		cache: ttlcache.New(
			ttlcache.WithTTL[string, image.Image](30*time.Minute),
			ttlcache.WithCapacity[string, image.Image](512),
		),
	}
	go f.cache.Start()
	return f
}

// Get returns the decoded tile image, fetching it if necessary.
// Concurrent calls for the same tile share one download.
func (f *Fetcher) Get(c tiles.Coord) (image.Image, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("no tile at %s", c)
	}
	key := c.String()
	if item := f.cache.Get(key); item != nil {
		return item.Value(), nil
	}
	v, err, _ := f.group.Do(key, func() (any, error) {
		img, err := f.fetch(c)
		if err != nil {
			return nil, err
		}
		f.cache.Set(key, img, ttlcache.DefaultTTL)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

// Cached returns the tile only if it is already in the cache.
func (f *Fetcher) Cached(c tiles.Coord) (image.Image, bool) {
	if item := f.cache.Get(c.String()); item != nil {
		return item.Value(), true
	}
	return nil, false
}

func (f *Fetcher) fetch(c tiles.Coord) (image.Image, error) {
	var img image.Image
	err := retry.Do(func() error {
		req, err := http.NewRequest(http.MethodGet, f.src.url(c), nil)
		if err != nil {
			return retry.Unrecoverable(err)
		}
		req.Header.Set("User-Agent", userAgent)
		resp, err := f.cl.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("tile %s: %s", c, resp.Status)
		}
		img, _, err = image.Decode(resp.Body)
		if err != nil {
			return retry.Unrecoverable(fmt.Errorf("tile %s: %w", c, err))
		}
		return nil
	},
		retry.Attempts(3),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Close stops the cache janitor. Safe to call more than once.
func (f *Fetcher) Close() {
	f.closeOnce.Do(func() {
		f.cache.Stop()
	})
}
