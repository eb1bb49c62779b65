// Package client provides an HTTP client for the wealth-map REST API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/evcraddock/wealth-map/internal/auth"
	"github.com/evcraddock/wealth-map/internal/dataset"
	"github.com/evcraddock/wealth-map/internal/history"
	"github.com/evcraddock/wealth-map/internal/mapview"
	"github.com/evcraddock/wealth-map/internal/panel"
	"github.com/evcraddock/wealth-map/internal/web"
)

// Client is an HTTP client for the wealth-map API. It keeps the session
// the server assigns so later calls see the same map and results.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu      sync.Mutex
	session string
}

// New creates a new API client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Session returns the current session ID, empty before the first call.
func (c *Client) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SetSession resumes an existing session.
func (c *Client) SetSession(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = id
}

// Health returns the server health report.
func (c *Client) Health() (map[string]interface{}, error) {
	var resp map[string]interface{}
	if err := c.get("/health", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Config returns the server's map and UI settings.
func (c *Client) Config() (*web.ConfigResponse, error) {
	var resp web.ConfigResponse
	if err := c.get("/api/config", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Search runs a search in the client's session.
func (c *Client) Search(query string) (*web.SearchResponse, error) {
	var resp web.SearchResponse
	if err := c.post("/api/search", map[string]string{"query": query}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Focus moves the session's map to a result row.
func (c *Client) Focus(row panel.Row) (*mapview.State, error) {
	var state mapview.State
	if err := c.post("/api/search/focus", row, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Results returns what the session's results panel shows.
func (c *Client) Results() (*panel.View, error) {
	var view panel.View
	if err := c.get("/api/results", &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Map returns the session's map state.
func (c *Client) Map() (*mapview.State, error) {
	var state mapview.State
	if err := c.get("/api/map", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Individuals lists every individual in the dataset.
func (c *Client) Individuals() ([]web.IndividualSummary, error) {
	var list []web.IndividualSummary
	if err := c.get("/api/individuals", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Individual returns one individual with their properties.
func (c *Client) Individual(name string) (*dataset.WealthyIndividual, error) {
	var ind dataset.WealthyIndividual
	if err := c.get("/api/individuals/"+url.PathEscape(name), &ind); err != nil {
		return nil, err
	}
	return &ind, nil
}

// Details opens the detail panel for a property.
func (c *Client) Details(owner, address string) (*panel.PropertyDetails, error) {
	q := url.Values{"owner": {owner}, "address": {address}}
	var d panel.PropertyDetails
	if err := c.get("/api/details?"+q.Encode(), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// History returns the session's recent searches, newest first.
func (c *Client) History() ([]*history.Entry, error) {
	var entries []*history.Entry
	if err := c.get("/api/history", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// HistoryEntry returns one of the session's searches by its search ID.
func (c *Client) HistoryEntry(searchID string) (*history.Entry, error) {
	var e history.Entry
	if err := c.get("/api/history/"+url.PathEscape(searchID), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ClearHistory removes the session's search history.
func (c *Client) ClearHistory() (int64, error) {
	var resp struct {
		Cleared int64 `json:"cleared"`
	}
	if err := c.send("DELETE", "/api/history", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Cleared, nil
}

// Views returns the session's recently viewed properties.
func (c *Client) Views() ([]*history.View, error) {
	var views []*history.View
	if err := c.get("/api/views", &views); err != nil {
		return nil, err
	}
	return views, nil
}

// CreateKey creates an API key. The raw key is only returned here.
func (c *Client) CreateKey(name string) (*web.KeyCreateResponse, error) {
	var resp web.KeyCreateResponse
	if err := c.post("/api/keys", map[string]string{"name": name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListKeys returns all API keys.
func (c *Client) ListKeys() ([]auth.APIKey, error) {
	var keys []auth.APIKey
	if err := c.get("/api/keys", &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteKey revokes an API key.
func (c *Client) DeleteKey(id int64) error {
	return c.send("DELETE", "/api/keys/"+strconv.FormatInt(id, 10), nil, nil)
}

// get performs a GET request and decodes the response.
func (c *Client) get(path string, result interface{}) error {
	return c.send("GET", path, nil, result)
}

// post performs a POST request with a JSON body and decodes the response.
func (c *Client) post(path string, body interface{}, result interface{}) error {
	return c.send("POST", path, body, result)
}

func (c *Client) send(method, path string, body interface{}, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, result)
}

// do executes an HTTP request with auth and session headers and handles errors.
func (c *Client) do(req *http.Request, result interface{}) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if id := c.Session(); id != "" {
		req.Header.Set(web.SessionHeader, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
	}()

	if id := resp.Header.Get(web.SessionHeader); id != "" {
		c.SetSession(id)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("server error: %s", http.StatusText(resp.StatusCode))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
