package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"clipcast/internal/extract"
	"clipcast/internal/logging"
)

func openTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "articles.db"), ttl, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t, time.Hour)
	ctx := context.Background()

	article := extract.Result{Text: "Body text", ImageURL: "https://example.com/img.png"}
	store.Put(ctx, "https://example.com/story", article)

	got, ok := store.Get(ctx, "https://example.com/story")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != article {
		t.Fatalf("got %+v, want %+v", got, article)
	}
}

func TestGetMissesUnknownURL(t *testing.T) {
	store := openTestStore(t, time.Hour)
	if _, ok := store.Get(context.Background(), "https://example.com/unknown"); ok {
		t.Fatal("expected cache miss")
	}
}

func TestExpiredEntriesAreIgnored(t *testing.T) {
	store := openTestStore(t, time.Hour)
	ctx := context.Background()

	store.Put(ctx, "https://example.com/old", extract.Result{Text: "stale"})
	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, ok := store.Get(ctx, "https://example.com/old"); ok {
		t.Fatal("expected expired entry to be ignored")
	}
}

func TestPutOverwritesExisting(t *testing.T) {
	store := openTestStore(t, time.Hour)
	ctx := context.Background()

	store.Put(ctx, "https://example.com/story", extract.Result{Text: "first"})
	store.Put(ctx, "https://example.com/story", extract.Result{Text: "second"})

	got, ok := store.Get(ctx, "https://example.com/story")
	if !ok || got.Text != "second" {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
}

func TestNilStoreIsSafe(t *testing.T) {
	var store *Store
	if _, ok := store.Get(context.Background(), "x"); ok {
		t.Fatal("nil store should miss")
	}
	store.Put(context.Background(), "x", extract.Result{})
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
