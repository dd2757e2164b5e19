package gog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search"); got != "The Witcher 3" {
			t.Errorf("search query = %q", got)
		}
		if got := r.URL.Query().Get("mediaType"); got != "game" {
			t.Errorf("mediaType = %q", got)
		}
		if ua := r.Header.Get("User-Agent"); ua == "" || ua == "Go-http-client/1.1" {
			t.Errorf("User-Agent = %q, want a browser identity", ua)
		}
		w.Write([]byte(`{"totalGamesFound": 2, "products": [
			{"id": 1207664663, "title": "The Witcher 3: Wild Hunt"},
			{"id": 1495134320, "title": "The Witcher 3: Wild Hunt - Complete Edition"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(WithEmbedBaseURL(srv.URL))
	result, err := c.SearchProducts(context.Background(), "The Witcher 3")
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalGamesFound != 2 || len(result.Products) != 2 {
		t.Fatalf("result = %+v", result)
	}
	if result.Products[0].ID.String() != "1207664663" {
		t.Errorf("first product id = %s", result.Products[0].ID)
	}
}

func TestFetchBuilds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/1207664663/os/windows/builds" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("generation"); got != "2" {
			t.Errorf("generation = %q", got)
		}
		w.Write([]byte(`{"count": 2, "items": [
			{"build_id": "55136646198447457", "version_name": "4.04", "legacy_build_id": null},
			{"build_id": "54888085875391701", "version_name": "4.03"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(WithContentBaseURL(srv.URL))
	builds, err := c.FetchBuilds(context.Background(), "1207664663")
	if err != nil {
		t.Fatal(err)
	}
	if builds.Count != 2 || len(builds.Items) != 2 {
		t.Fatalf("builds = %+v", builds)
	}
	if builds.Items[0].VersionName != "4.04" {
		t.Errorf("version = %q", builds.Items[0].VersionName)
	}
	if builds.Items[0].BuildID.String() != "55136646198447457" {
		t.Errorf("build id = %s", builds.Items[0].BuildID)
	}
}

func TestFetchBuilds_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(WithContentBaseURL(srv.URL))
	_, err := c.FetchBuilds(context.Background(), "123")
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("err = %v, want ErrUnexpectedStatus", err)
	}
}

func TestResolvePackProduct(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"plain game resolves to itself",
			`{"_embedded": {"productType": "GAME"}}`,
			"123",
		},
		{
			"pack resolves to first included game",
			`{"_embedded": {"productType": "PACK"},
			  "_links": {"includesGames": [{"href": "https://api.gog.com/v2/games/456"}]}}`,
			"456",
		},
		{
			"pack without contents resolves to nothing",
			`{"_embedded": {"productType": "PACK"}, "_links": {}}`,
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v2/games/123" {
					t.Errorf("path = %q", r.URL.Path)
				}
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(WithAPIBaseURL(srv.URL))
			got, err := c.ResolvePackProduct(context.Background(), "123")
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ResolvePackProduct() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLegacyManifestVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/content-system/v1/manifests/123/windows/20456/repository.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"product": {"support_commands": [
			{"executable": "setup_some_game_2.1.0.5.exe"}
		]}}`))
	}))
	defer srv.Close()

	c := NewClient(WithCDNBaseURL(srv.URL))
	version, ok, err := c.LegacyManifestVersion(context.Background(), "123", "20456")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || version != "2.1.0.5" {
		t.Errorf("LegacyManifestVersion() = (%q, %v)", version, ok)
	}
}

func TestLegacyManifestVersion_NoSupportCommands(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"product": {"support_commands": []}}`))
	}))
	defer srv.Close()

	c := NewClient(WithCDNBaseURL(srv.URL))
	_, ok, err := c.LegacyManifestVersion(context.Background(), "123", "20456")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected ok=false for empty support commands")
	}
}

func TestVersionByBuild(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": 2, "items": [
			{"build_id": "200", "version_name": "1.1"},
			{"build_id": "100", "version_name": "1.0"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(WithContentBaseURL(srv.URL))
	if v, ok := c.VersionByBuild(context.Background(), "123", "100"); !ok || v != "1.0" {
		t.Errorf("VersionByBuild(100) = (%q, %v)", v, ok)
	}
	if _, ok := c.VersionByBuild(context.Background(), "123", "999"); ok {
		t.Error("unknown build id should not resolve")
	}
}
