package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/evcraddock/wealth-map/internal/db"
)

func TestRecordAndRecent(t *testing.T) {
	repo := testRepo(t, 0, 0)
	ctx := context.Background()

	radius := 0.5
	e, err := repo.Record(ctx, Entry{SessionID: "s1", Query: "beverly hills", State: "listingResults", ResultCount: 4, RadiusMiles: &radius})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if e.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if e.SearchID == "" {
		t.Error("expected generated search ID")
	}
	if e.RadiusMiles == nil || *e.RadiusMiles != 0.5 {
		t.Errorf("radius = %v, want 0.5", e.RadiusMiles)
	}
	if e.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	if _, err := repo.Record(ctx, Entry{SessionID: "s1", Query: "elon", State: "localResults", ResultCount: 1}); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := repo.Recent(ctx, "s1")
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Query != "elon" {
		t.Errorf("newest query = %q, want %q", entries[0].Query, "elon")
	}
	if entries[0].RadiusMiles != nil {
		t.Errorf("local search radius = %v, want nil", *entries[0].RadiusMiles)
	}
}

func TestRecordRequiresQuery(t *testing.T) {
	repo := testRepo(t, 0, 0)
	if _, err := repo.Record(context.Background(), Entry{State: "idle"}); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestRecordKeepsSearchID(t *testing.T) {
	repo := testRepo(t, 0, 0)
	ctx := context.Background()

	if _, err := repo.Record(ctx, Entry{SearchID: "abc", Query: "q", State: "noLocation"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	e, err := repo.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e.Query != "q" || e.State != "noLocation" {
		t.Errorf("got %+v", e)
	}

	if _, err := repo.Record(ctx, Entry{SearchID: "abc", Query: "again", State: "noLocation"}); err == nil {
		t.Error("expected error for duplicate search ID")
	}
}

func TestGetNotFound(t *testing.T) {
	repo := testRepo(t, 0, 0)
	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestRecordCapsHistory(t *testing.T) {
	repo := testRepo(t, 0, 0)
	ctx := context.Background()

	for i := 0; i < DefaultLimit+5; i++ {
		if _, err := repo.Record(ctx, Entry{SessionID: "s1", Query: fmt.Sprintf("q%d", i), State: "noLocation"}); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	if _, err := repo.Record(ctx, Entry{SessionID: "s2", Query: "other", State: "noLocation"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := repo.Recent(ctx, "s1")
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != DefaultLimit {
		t.Fatalf("got %d entries, want %d", len(entries), DefaultLimit)
	}
	if entries[0].Query != fmt.Sprintf("q%d", DefaultLimit+4) {
		t.Errorf("newest = %q", entries[0].Query)
	}
	if entries[len(entries)-1].Query != "q5" {
		t.Errorf("oldest kept = %q, want q5", entries[len(entries)-1].Query)
	}

	var total int
	if err := repo.db.QueryRow("SELECT COUNT(*) FROM search_history").Scan(&total); err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != DefaultLimit+1 {
		t.Errorf("stored rows = %d, want %d", total, DefaultLimit+1)
	}
}

func TestClear(t *testing.T) {
	repo := testRepo(t, 0, 0)
	ctx := context.Background()

	for _, s := range []string{"s1", "s1", "s2"} {
		if _, err := repo.Record(ctx, Entry{SessionID: s, Query: "q", State: "noLocation"}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	n, err := repo.Clear(ctx, "s1")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 2 {
		t.Errorf("cleared %d, want 2", n)
	}

	entries, err := repo.Recent(ctx, "s1")
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries after clear, want 0", len(entries))
	}

	entries, err = repo.Recent(ctx, "s2")
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("other session has %d entries, want 1", len(entries))
	}
}

func TestRecordViewDeduplicates(t *testing.T) {
	repo := testRepo(t, 0, 0)
	ctx := context.Background()

	views := [][2]string{
		{"Alice", "1 Ocean Drive"},
		{"Bob", "3 Lake Road"},
		{"Alice", "1 Ocean Drive"},
	}
	for _, v := range views {
		if err := repo.RecordView(ctx, "s1", v[0], v[1]); err != nil {
			t.Fatalf("record view: %v", err)
		}
	}

	got, err := repo.RecentViews(ctx, "s1")
	if err != nil {
		t.Fatalf("recent views: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d views, want 2", len(got))
	}
	if got[0].Owner != "Alice" || got[0].Address != "1 Ocean Drive" {
		t.Errorf("newest view = %+v, want Alice at 1 Ocean Drive", got[0])
	}
	if got[1].Owner != "Bob" {
		t.Errorf("second view owner = %q, want Bob", got[1].Owner)
	}
}

func TestRecordViewCaps(t *testing.T) {
	repo := testRepo(t, 0, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := repo.RecordView(ctx, "s1", "Owner", fmt.Sprintf("%d Main St", i)); err != nil {
			t.Fatalf("record view: %v", err)
		}
	}

	got, err := repo.RecentViews(ctx, "s1")
	if err != nil {
		t.Fatalf("recent views: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d views, want 3", len(got))
	}
	if got[0].Address != "4 Main St" || got[2].Address != "2 Main St" {
		t.Errorf("views = %q .. %q", got[0].Address, got[2].Address)
	}
}

func TestRecordViewRequiresFields(t *testing.T) {
	repo := testRepo(t, 0, 0)
	if err := repo.RecordView(context.Background(), "s1", "", "addr"); err == nil {
		t.Error("expected error for empty owner")
	}
	if err := repo.RecordView(context.Background(), "s1", "owner", ""); err == nil {
		t.Error("expected error for empty address")
	}
}

func testRepo(t *testing.T, limit, viewLimit int) *Repository {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return NewRepository(d, limit, viewLimit)
}
