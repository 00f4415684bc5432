// Package update checks the project's GitHub releases for a newer
// version. The check is best effort; any failure means "up to date".
package update

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"golang.org/x/mod/semver"
)

var latestURL = "https://api.github.com/repos/geovan/brewmap/releases/latest"

// Release is the subset of the GitHub release payload we care about.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	HTMLURL     string    `json:"html_url"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
}

// GetLatest fetches the most recent release.
func GetLatest() (*Release, error) {
	cl := &http.Client{Timeout: 15 * time.Second}
	resp, err := cl.Get(latestURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	latest := new(Release)
	if err := json.Unmarshal(b, latest); err != nil {
		return nil, err
	}
	return latest, nil
}

// IsLatest reports whether version (a "vX.Y.Z" string) is current, and
// returns the newest known tag. Lookup failures count as current.
func IsLatest(version string) (bool, string) {
	latest, err := GetLatest()
	if err != nil {
		return true, version
	}
	return semver.Compare(latest.TagName, version) <= 0, latest.TagName
}
