package dataset

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// ErrNotLoaded is returned by Search before a snapshot is available.
var ErrNotLoaded = errors.New("dataset not loaded")

//go:embed data/wealthy-properties.json
var embeddedDocument []byte

// Store holds at most one fully loaded, read-only Document.
type Store struct {
	source     string
	httpClient *http.Client

	doc   atomic.Pointer[Document]
	group singleflight.Group
}

// NewStore creates an empty store that loads from source: a file path,
// an http(s) URL, or "" for the embedded sample document.
func NewStore(source string) *Store {
	return &Store{
		source:     source,
		httpClient: &http.Client{},
	}
}

// NewStoreFromDocument creates a store already holding doc.
func NewStoreFromDocument(doc *Document) *Store {
	s := NewStore("")
	s.doc.Store(doc)
	return s
}

// Loaded reports whether a snapshot is present.
func (s *Store) Loaded() bool {
	return s.doc.Load() != nil
}

// Snapshot returns the loaded document, or nil.
func (s *Store) Snapshot() *Document {
	return s.doc.Load()
}

// Load fetches the document if it has not been loaded yet. Concurrent
// callers share a single fetch. On failure the store stays empty.
func (s *Store) Load(ctx context.Context) (*Document, error) {
	if doc := s.doc.Load(); doc != nil {
		return doc, nil
	}

	v, err, _ := s.group.Do("load", func() (interface{}, error) {
		if doc := s.doc.Load(); doc != nil {
			return doc, nil
		}
		data, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}
		doc, err := Parse(data)
		if err != nil {
			return nil, err
		}
		s.doc.Store(doc)
		slog.Info("dataset loaded", "source", s.describeSource(), "individuals", len(doc.WealthyIndividuals))
		return doc, nil
	})
	if err != nil {
		slog.Error("loading dataset", "source", s.describeSource(), "error", err)
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	return v.(*Document), nil
}

// Parse decodes and validates a dataset document.
func Parse(data []byte) (*Document, error) {
	var raw struct {
		WealthyIndividuals *[]WealthyIndividual `json:"wealthyIndividuals"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}
	if raw.WealthyIndividuals == nil {
		return nil, fmt.Errorf("dataset has no wealthyIndividuals list")
	}
	for i, ind := range *raw.WealthyIndividuals {
		if ind.Name == "" {
			return nil, fmt.Errorf("individual %d has no name", i)
		}
	}
	return &Document{WealthyIndividuals: *raw.WealthyIndividuals}, nil
}

func (s *Store) fetch(ctx context.Context) ([]byte, error) {
	switch {
	case s.source == "":
		return embeddedDocument, nil
	case strings.HasPrefix(s.source, "http://"), strings.HasPrefix(s.source, "https://"):
		return s.fetchURL(ctx)
	default:
		data, err := os.ReadFile(s.source)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.source, err)
		}
		return data, nil
	}
}

func (s *Store) fetchURL(ctx context.Context) (body []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.source, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing body: %w", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

func (s *Store) describeSource() string {
	if s.source == "" {
		return "embedded"
	}
	return s.source
}
