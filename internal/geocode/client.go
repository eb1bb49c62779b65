// Package geocode resolves free-text queries to coordinates through the
// RapidAPI maps-data geocoding endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/evcraddock/wealth-map/internal/cache"
	"github.com/evcraddock/wealth-map/internal/geo"
)

const (
	defaultURL  = "https://maps-data.p.rapidapi.com/geocoding.php"
	defaultHost = "maps-data.p.rapidapi.com"
)

// Location is the first candidate returned for a query.
type Location struct {
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// LatLng returns the location's coordinates.
func (l Location) LatLng() geo.LatLng {
	return geo.LatLng{Lat: l.Lat, Lng: l.Lng}
}

// Options configures a Client. Zero values select the public endpoint.
type Options struct {
	URL     string
	Host    string
	Timeout time.Duration
	Cache   *cache.Cache
}

// Client calls the geocoding endpoint.
type Client struct {
	httpClient *http.Client
	apiKey     string
	url        string
	host       string
	cache      *cache.Cache
}

// NewClient creates a geocoding client with the given RapidAPI key.
func NewClient(apiKey string, opts Options) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("RAPIDAPI_KEY is required")
	}
	c := &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		apiKey:     apiKey,
		url:        opts.URL,
		host:       opts.Host,
		cache:      opts.Cache,
	}
	if c.url == "" {
		c.url = defaultURL
	}
	if c.host == "" {
		c.host = defaultHost
	}
	return c, nil
}

type response struct {
	Data []struct {
		Name string   `json:"name"`
		Lat  *float64 `json:"lat"`
		Lng  *float64 `json:"lng"`
	} `json:"data"`
}

// Geocode returns the first candidate for query. It reports false on an
// empty candidate list, a candidate without coordinates, a malformed body
// or a transport failure; it never returns an error.
func (c *Client) Geocode(ctx context.Context, query string) (Location, bool) {
	params := url.Values{
		"query":   {query},
		"lang":    {"en"},
		"country": {"us"},
	}

	body, err := c.get(ctx, params)
	if err != nil {
		slog.Warn("geocoding failed", "query", query, "error", err)
		return Location{}, false
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Warn("geocoding response unparseable", "query", query, "error", err)
		return Location{}, false
	}

	if len(resp.Data) == 0 {
		slog.Debug("no geocoding candidates", "query", query)
		return Location{}, false
	}

	first := resp.Data[0]
	if first.Lat == nil || first.Lng == nil || *first.Lat == 0 || *first.Lng == 0 {
		slog.Debug("geocoding candidate has no coordinates", "query", query)
		return Location{}, false
	}

	loc := Location{Name: first.Name, Lat: *first.Lat, Lng: *first.Lng}
	if !loc.LatLng().Valid() {
		slog.Debug("geocoding candidate out of range", "query", query, "lat", loc.Lat, "lng", loc.Lng)
		return Location{}, false
	}

	return loc, true
}

// get fetches the endpoint, serving and storing successful bodies through
// the cache.
func (c *Client) get(ctx context.Context, params url.Values) (body []byte, err error) {
	key := cache.Key(c.url, params)
	if cached, ok := c.cache.Get(ctx, key); ok {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing body: %w", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("response is not valid JSON")
	}

	c.cache.Set(ctx, key, body)
	return body, nil
}
