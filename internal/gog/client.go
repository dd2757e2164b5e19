// Package gog talks to the GOG catalog: product search, the content-system
// builds feed, pack metadata, and the first-generation manifest CDN.
package gog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/1024mb/gog-installer-update-checker/internal/naming"
)

const (
	defaultEmbedBaseURL   = "https://embed.gog.com"
	defaultContentBaseURL = "https://content-system.gog.com"
	defaultAPIBaseURL     = "https://api.gog.com"
	defaultCDNBaseURL     = "https://cdn.gog.com"

	// The embed endpoint throttles unknown clients, so requests identify
	// as a browser.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/119.0"

	defaultTimeout = 30 * time.Second
)

// ErrUnexpectedStatus is returned when an endpoint answers with a non-200
// status code.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// Client queries the GOG catalog endpoints.
type Client struct {
	httpClient     *http.Client
	embedBaseURL   string
	contentBaseURL string
	apiBaseURL     string
	cdnBaseURL     string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithEmbedBaseURL overrides the search endpoint base (used in tests).
func WithEmbedBaseURL(u string) Option {
	return func(c *Client) { c.embedBaseURL = u }
}

// WithContentBaseURL overrides the content-system endpoint base.
func WithContentBaseURL(u string) Option {
	return func(c *Client) { c.contentBaseURL = u }
}

// WithAPIBaseURL overrides the api endpoint base.
func WithAPIBaseURL(u string) Option {
	return func(c *Client) { c.apiBaseURL = u }
}

// WithCDNBaseURL overrides the manifest CDN base.
func WithCDNBaseURL(u string) Option {
	return func(c *Client) { c.cdnBaseURL = u }
}

// NewClient returns a Client with default endpoints and timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:     &http.Client{Timeout: defaultTimeout},
		embedBaseURL:   defaultEmbedBaseURL,
		contentBaseURL: defaultContentBaseURL,
		apiBaseURL:     defaultAPIBaseURL,
		cdnBaseURL:     defaultCDNBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s from %s", ErrUnexpectedStatus, resp.Status, rawURL)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", rawURL, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response from %s: %w", rawURL, err)
	}
	return nil
}

// SearchProduct is one catalog hit.
type SearchProduct struct {
	ID    json.Number `json:"id"`
	Title string      `json:"title"`
}

// SearchResult is the embed search response.
type SearchResult struct {
	TotalGamesFound int             `json:"totalGamesFound"`
	Products        []SearchProduct `json:"products"`
}

// SearchProducts queries the catalog search by product name.
func (c *Client) SearchProducts(ctx context.Context, name string) (*SearchResult, error) {
	u := c.embedBaseURL + "/games/ajax/filtered?mediaType=game&search=" + url.QueryEscape(name)
	var result SearchResult
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Build is one entry of the content-system builds feed.
type Build struct {
	VersionName   string      `json:"version_name"`
	BuildID       json.Number `json:"build_id"`
	LegacyBuildID json.Number `json:"legacy_build_id"`
}

// BuildsResult is the builds feed response, newest build first.
type BuildsResult struct {
	Count int     `json:"count"`
	Items []Build `json:"items"`
}

// FetchBuilds returns the Windows builds feed for a product.
func (c *Client) FetchBuilds(ctx context.Context, productID string) (*BuildsResult, error) {
	u := fmt.Sprintf("%s/products/%s/os/windows/builds?generation=2", c.contentBaseURL, productID)
	var result BuildsResult
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

var rePackGameID = regexp.MustCompile(`games/([0-9]+)`)

type packMetadata struct {
	Embedded struct {
		ProductType string `json:"productType"`
	} `json:"_embedded"`
	Links struct {
		IncludesGames []struct {
			Href string `json:"href"`
		} `json:"includesGames"`
	} `json:"_links"`
}

// ResolvePackProduct maps a pack product onto its first included game. A
// non-pack product resolves to itself; a pack whose contents cannot be
// determined resolves to "".
func (c *Client) ResolvePackProduct(ctx context.Context, productID string) (string, error) {
	u := fmt.Sprintf("%s/v2/games/%s?locale=en-US", c.apiBaseURL, productID)
	var meta packMetadata
	if err := c.getJSON(ctx, u, &meta); err != nil {
		return "", err
	}
	if meta.Embedded.ProductType != "PACK" {
		return productID, nil
	}
	if len(meta.Links.IncludesGames) == 0 {
		return "", nil
	}
	m := rePackGameID.FindStringSubmatch(meta.Links.IncludesGames[0].Href)
	if m == nil {
		return "", nil
	}
	return m[1], nil
}

type legacyManifest struct {
	Product struct {
		SupportCommands []struct {
			Executable string `json:"executable"`
		} `json:"support_commands"`
	} `json:"product"`
}

// LegacyManifestVersion recovers a first-generation build's version from its
// repository manifest: the support executable's filename carries the dotted
// version. ok is false when the manifest names no usable executable.
func (c *Client) LegacyManifestVersion(ctx context.Context, productID, legacyBuildID string) (string, bool, error) {
	u := fmt.Sprintf("%s/content-system/v1/manifests/%s/windows/%s/repository.json", c.cdnBaseURL, productID, legacyBuildID)
	var manifest legacyManifest
	if err := c.getJSON(ctx, u, &manifest); err != nil {
		return "", false, err
	}
	if len(manifest.Product.SupportCommands) == 0 {
		return "", false, nil
	}
	version, ok := naming.LegacyVersion(manifest.Product.SupportCommands[0].Executable)
	return version, ok, nil
}

// VersionByBuild scans the builds feed for buildID and returns its version
// name. Used to backfill a local version that the installer itself does not
// carry.
func (c *Client) VersionByBuild(ctx context.Context, productID, buildID string) (string, bool) {
	builds, err := c.FetchBuilds(ctx, productID)
	if err != nil {
		return "", false
	}
	for _, b := range builds.Items {
		if b.BuildID.String() == buildID && b.VersionName != "" {
			return b.VersionName, true
		}
	}
	return "", false
}
