package listing

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	if _, err := NewClient("", Options{}); err == nil {
		t.Fatal("expected error for empty key, got nil")
	}
	c, err := NewClient("test-key", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.url != defaultURL || c.host != defaultHost {
		t.Errorf("defaults not applied: %q %q", c.url, c.host)
	}
}

func TestParams(t *testing.T) {
	p := Params(34.05, -118.24, 0.5)

	want := map[string]string{
		"latitude":      "34.05",
		"longitude":     "-118.24",
		"radius":        "0.5",
		"page":          "1",
		"listingStatus": "For_Sale",
		"sortOrder":     "Homes_for_you",
		"soldInLast":    "Any",
	}
	for k, v := range want {
		if got := p.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}

	// Mutating a result must not leak into the shared filter set.
	p.Set("page", "9")
	if Params(0, 0, 1).Get("page") != "1" {
		t.Error("fixed filters were mutated")
	}
}

func TestSearchByCoordinates(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		statusCode int
		wantCount  int
		wantPlaced int
	}{
		{
			name: "listings returned",
			response: `{"results": [
				{"latitude": 34.0501, "longitude": -118.2401, "address": "1 Main St", "price": "$1,250,000", "bedrooms": 3, "bathrooms": 2, "zpid": 12345},
				{"address": "No coords Ave", "price": 500000}
			]}`,
			statusCode: http.StatusOK,
			wantCount:  2,
			wantPlaced: 1,
		},
		{
			name:       "empty results",
			response:   `{"results": []}`,
			statusCode: http.StatusOK,
		},
		{
			name:       "missing results key",
			response:   `{"message": "none"}`,
			statusCode: http.StatusOK,
		},
		{
			name:       "invalid json",
			response:   `oops`,
			statusCode: http.StatusOK,
		},
		{
			name:       "rate limited",
			response:   `{"message": "Too many requests"}`,
			statusCode: http.StatusTooManyRequests,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("latitude") != "34.05" || q.Get("longitude") != "-118.24" {
					t.Errorf("coords = %q,%q", q.Get("latitude"), q.Get("longitude"))
				}
				if q.Get("radius") != "0.5" {
					t.Errorf("radius = %q, want 0.5", q.Get("radius"))
				}
				if r.Header.Get("x-rapidapi-key") != "test-key" {
					t.Errorf("x-rapidapi-key = %q", r.Header.Get("x-rapidapi-key"))
				}
				if r.Header.Get("x-rapidapi-host") != defaultHost {
					t.Errorf("x-rapidapi-host = %q", r.Header.Get("x-rapidapi-host"))
				}
				w.WriteHeader(tt.statusCode)
				writeResponse(t, w, tt.response)
			}))
			defer server.Close()

			c := testClient(t, server.URL)
			got := c.SearchByCoordinates(context.Background(), 34.05, -118.24, 0.5)
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(got) != tt.wantCount {
				t.Fatalf("got %d listings, want %d", len(got), tt.wantCount)
			}

			placed := 0
			for _, l := range got {
				if l.HasCoordinates() {
					placed++
				}
			}
			if placed != tt.wantPlaced {
				t.Errorf("placeable = %d, want %d", placed, tt.wantPlaced)
			}
		})
	}
}

func TestSearchByCoordinatesFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeResponse(t, w, `{"results": [{"latitude": 1.5, "longitude": 2.5, "address": "A", "price": 99, "zpid": "Z1"}]}`)
	}))
	defer server.Close()

	got := testClient(t, server.URL).SearchByCoordinates(context.Background(), 1, 2, 1)
	if len(got) != 1 {
		t.Fatalf("got %d listings, want 1", len(got))
	}
	l := got[0]
	if l.Price != "99" {
		t.Errorf("price = %q, want 99", l.Price)
	}
	if l.ZPID != "Z1" {
		t.Errorf("zpid = %q, want Z1", l.ZPID)
	}
	if loc := l.Location(); loc.Lat != 1.5 || loc.Lng != 2.5 {
		t.Errorf("location = %+v", loc)
	}
}

func TestSearchByCoordinatesMixedShapes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeResponse(t, w, `{"results": [
			{"latitude": 34.05, "longitude": -118.24, "address": "1 Main St", "bedrooms": "", "bathrooms": "2.5"},
			{"latitude": "34.06", "longitude": "-118.25", "address": {"street": "2 Oak Ave", "city": "Los Angeles", "state": "CA", "zipcode": 90012}},
			{"address": {"streetAddress": "3 Elm Rd", "city": "Pasadena", "state": "CA", "zipcode": "91101", "latitude": 34.14, "longitude": -118.14}},
			{"latitude": true, "longitude": [], "price": {"value": 1}, "zpid": null},
			"not a listing",
			null
		]}`)
	}))
	defer server.Close()

	got := testClient(t, server.URL).SearchByCoordinates(context.Background(), 34.05, -118.24, 0.5)
	if len(got) != 4 {
		t.Fatalf("got %d listings, want 4", len(got))
	}

	tests := []struct {
		name      string
		l         Listing
		address   string
		placeable bool
	}{
		{"empty bedrooms", got[0], "1 Main St", true},
		{"object address and string coordinates", got[1], "2 Oak Ave, Los Angeles, CA 90012", true},
		{"coordinates inside address", got[2], "3 Elm Rd, Pasadena, CA 91101", true},
		{"unusable fields", got[3], "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.l.Address != tt.address {
				t.Errorf("address = %q, want %q", tt.l.Address, tt.address)
			}
			if tt.l.HasCoordinates() != tt.placeable {
				t.Errorf("HasCoordinates = %v, want %v", tt.l.HasCoordinates(), tt.placeable)
			}
		})
	}

	if got[0].Bedrooms != nil {
		t.Errorf("bedrooms = %v, want nil", *got[0].Bedrooms)
	}
	if got[0].Bathrooms == nil || *got[0].Bathrooms != 2.5 {
		t.Errorf("bathrooms = %v, want 2.5", got[0].Bathrooms)
	}
	if loc := got[1].Location(); loc.Lat != 34.06 || loc.Lng != -118.25 {
		t.Errorf("location = %+v", loc)
	}
	if got[3].Price != "" || got[3].ZPID != "" {
		t.Errorf("price/zpid = %q/%q, want empty", got[3].Price, got[3].ZPID)
	}
}

func TestSearchByCoordinatesDefaultRadius(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("radius"); got != "0.5" {
			t.Errorf("radius = %q, want 0.5", got)
		}
		writeResponse(t, w, `{"results": []}`)
	}))
	defer server.Close()

	testClient(t, server.URL).SearchByCoordinates(context.Background(), 1, 2, 0)
}

func TestListingWithoutCoordinates(t *testing.T) {
	zero := 0.0
	lat := 10.0
	tests := []struct {
		name string
		l    Listing
	}{
		{"nothing", Listing{}},
		{"latitude only", Listing{Latitude: &lat}},
		{"zero longitude", Listing{Latitude: &lat, Longitude: &zero}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.l.HasCoordinates() {
				t.Error("expected HasCoordinates to be false")
			}
		})
	}
}

// writeResponse writes a string to an http.ResponseWriter in tests.
func writeResponse(t *testing.T, w http.ResponseWriter, s string) {
	t.Helper()
	if _, err := fmt.Fprint(w, s); err != nil {
		t.Errorf("write response: %v", err)
	}
}

// testClient creates a client pointed at a test server.
func testClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient("test-key", Options{URL: url, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}
