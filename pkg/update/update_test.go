package update

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsLatest(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		version string
		want    bool
	}{
		{name: "behind", tag: "v1.2.0", version: "v1.1.0", want: false},
		{name: "current", tag: "v1.2.0", version: "v1.2.0", want: true},
		{name: "ahead of release", tag: "v1.2.0", version: "v1.3.0", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"tag_name":"` + tt.tag + `","name":"` + tt.tag + `"}`))
			}))
			defer srv.Close()
			old := latestURL
			latestURL = srv.URL
			defer func() { latestURL = old }()

			got, tag := IsLatest(tt.version)
			if got != tt.want {
				t.Errorf("IsLatest(%q) = %v, want %v", tt.version, got, tt.want)
			}
			if tag != tt.tag {
				t.Errorf("latest tag = %q, want %q", tag, tt.tag)
			}
		})
	}
}

func TestIsLatestLookupFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // refuse connections
	old := latestURL
	latestURL = srv.URL
	defer func() { latestURL = old }()

	got, tag := IsLatest("v0.1.0")
	if !got {
		t.Error("IsLatest() = false when the lookup fails")
	}
	if tag != "v0.1.0" {
		t.Errorf("tag = %q, want the current version back", tag)
	}
}
