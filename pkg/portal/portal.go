// Package portal resolves hosted content items from an ArcGIS style
// content catalog over its sharing REST API.
package portal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/geovan/brewmap/pkg/loadable"
)

// DefaultURL is the public ArcGIS Online portal.
const DefaultURL = "https://www.arcgis.com"

// Portal is a connection to a hosted content catalog.
type Portal struct {
	URL string
	cl  *http.Client
}

// New returns a Portal for the given base URL. A nil client uses a
// default with a 30 second timeout.
func New(url string, cl *http.Client) *Portal {
	if cl == nil {
		cl = &http.Client{Timeout: 30 * time.Second}
	}
	return &Portal{URL: url, cl: cl}
}

// Item references a content item by id. Call LoadAsync once to resolve
// it; the descriptor fields are valid after the status reaches Loaded.
type Item struct {
	loadable.Base

	portal *Portal
	id     string

	Title      string
	Type       string
	ServiceURL string
}

// Item returns an unloaded reference to the content item with the
// given id.
func (p *Portal) Item(id string) *Item {
	return &Item{portal: p, id: id}
}

// ID returns the item's content identifier.
func (it *Item) ID() string {
	return it.id
}

// PageURL is the item's human-facing page on the portal.
func (it *Item) PageURL() string {
	return fmt.Sprintf("%s/home/item.html?id=%s", it.portal.URL, it.id)
}

type restError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type itemDescriptor struct {
	Error *restError `json:"error"`
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Type  string     `json:"type"`
	URL   string     `json:"url"`
}

// LoadAsync resolves the item on a background goroutine and fires the
// done listeners on the UI thread. Only the first call has any effect.
func (it *Item) LoadAsync() {
	if !it.Begin() {
		return
	}
	go func() {
		it.Finish(it.load())
	}()
}

func (it *Item) load() error {
	url := fmt.Sprintf("%s/sharing/rest/content/items/%s?f=json", it.portal.URL, it.id)

	var desc itemDescriptor
	err := retry.Do(func() error {
		resp, err := it.portal.cl.Get(url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("item %s: %s", it.id, resp.Status)
		}
		if err := json.NewDecoder(resp.Body).Decode(&desc); err != nil {
			return retry.Unrecoverable(fmt.Errorf("item %s: %w", it.id, err))
		}
		return nil
	},
		retry.Attempts(3),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}
	// The portal reports unknown items inside a 200 response; surface
	// its message as-is, it is what the user sees in the dialog.
	if desc.Error != nil {
		return errors.New(desc.Error.Message)
	}
	if desc.URL == "" {
		return fmt.Errorf("item %s has no service url", it.id)
	}
	it.Title = desc.Title
	it.Type = desc.Type
	it.ServiceURL = desc.URL
	return nil
}
