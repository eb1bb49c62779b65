// Package listing queries the Zillow RapidAPI endpoint for homes near a point.
package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/evcraddock/wealth-map/internal/cache"
	"github.com/evcraddock/wealth-map/internal/geo"
)

const (
	defaultURL  = "https://zillow-working-api.p.rapidapi.com/search/bycoordinates"
	defaultHost = "zillow-working-api.p.rapidapi.com"

	// DefaultRadiusMiles is used when a non-positive radius is requested.
	DefaultRadiusMiles = 0.5
)

// fixedFilters are sent with every request and are not user-configurable.
var fixedFilters = url.Values{
	"page":               {"1"},
	"sortOrder":          {"Homes_for_you"},
	"listingStatus":      {"For_Sale"},
	"bed_min":            {"No_Min"},
	"bed_max":            {"No_Max"},
	"bathrooms":          {"Any"},
	"homeType":           {"Houses, Townhomes, Multi-family, Condos/Co-ops, Lots-Land, Apartments, Manufactured"},
	"maxHOA":             {"Any"},
	"listingType":        {"By_Agent"},
	"listingTypeOptions": {"Agent listed,New Construction,Fore-closures,Auctions"},
	"parkingSpots":       {"Any"},
	"daysOnZillow":       {"Any"},
	"soldInLast":         {"Any"},
}

// Listing is one home returned by the search. Only coordinates decide
// whether it can be placed on the map; every field is optional.
type Listing struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   string   `json:"address,omitempty"`
	Price     Text     `json:"price,omitempty"`
	Bedrooms  *float64 `json:"bedrooms,omitempty"`
	Bathrooms *float64 `json:"bathrooms,omitempty"`
	ZPID      Text     `json:"zpid,omitempty"`
}

// HasCoordinates reports whether both coordinates are present and non-zero.
func (l Listing) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil && *l.Latitude != 0 && *l.Longitude != 0
}

// Location returns the listing position. Only meaningful if HasCoordinates.
func (l Listing) Location() geo.LatLng {
	if !l.HasCoordinates() {
		return geo.LatLng{}
	}
	return geo.LatLng{Lat: *l.Latitude, Lng: *l.Longitude}
}

// Options configures a Client. Zero values select the public endpoint.
type Options struct {
	URL     string
	Host    string
	Timeout time.Duration
	Cache   *cache.Cache
}

// Client calls the listing-search endpoint.
type Client struct {
	httpClient *http.Client
	apiKey     string
	url        string
	host       string
	cache      *cache.Cache
}

// NewClient creates a listing client with the given RapidAPI key.
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
	Results []json.RawMessage `json:"results"`
}

// SearchByCoordinates returns the listings within radiusMiles of the point.
// Failures of any kind yield an empty slice.
func (c *Client) SearchByCoordinates(ctx context.Context, lat, lng, radiusMiles float64) []Listing {
	if radiusMiles <= 0 {
		radiusMiles = DefaultRadiusMiles
	}

	params := Params(lat, lng, radiusMiles)
	body, err := c.get(ctx, params)
	if err != nil {
		slog.Warn("listing search failed", "lat", lat, "lng", lng, "radius", radiusMiles, "error", err)
		return []Listing{}
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Warn("listing response unparseable", "lat", lat, "lng", lng, "error", err)
		return []Listing{}
	}

	listings := make([]Listing, 0, len(resp.Results))
	for i, raw := range resp.Results {
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var l Listing
		if err := json.Unmarshal(raw, &l); err != nil {
			slog.Debug("skipping listing", "index", i, "error", err)
			continue
		}
		listings = append(listings, l)
	}

	slog.Debug("listing search", "lat", lat, "lng", lng, "radius", radiusMiles, "results", len(listings))
	return listings
}

// Params builds the full query for a coordinate search.
func Params(lat, lng, radiusMiles float64) url.Values {
	params := url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(lng, 'f', -1, 64)},
		"radius":    {strconv.FormatFloat(radiusMiles, 'f', -1, 64)},
	}
	for k, v := range fixedFilters {
		params[k] = append([]string(nil), v...)
	}
	return params
}

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
