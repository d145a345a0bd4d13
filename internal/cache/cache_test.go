package cache_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"autocut/internal/cache"
)

func openBackends(t *testing.T) map[string]cache.Store {
	t.Helper()
	stores := map[string]cache.Store{}
	for _, backend := range []string{cache.BackendDir, cache.BackendSQLite, cache.BackendBadger} {
		store, err := cache.Open(context.Background(), cache.Options{Backend: backend, Dir: t.TempDir()})
		if err != nil {
			t.Fatalf("open %s: %v", backend, err)
		}
		t.Cleanup(func() { _ = store.Close() })
		stores[backend] = store
	}
	return stores
}

func TestStoresRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "timeline/abc"); !errors.Is(err, cache.ErrNotFound) {
				t.Fatalf("expected ErrNotFound before put, got %v", err)
			}
			if err := store.Put(ctx, "timeline/abc", []byte("first")); err != nil {
				t.Fatalf("put: %v", err)
			}
			if err := store.Put(ctx, "timeline/abc", []byte("second")); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, err := store.Get(ctx, "timeline/abc")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(got) != "second" {
				t.Fatalf("get = %q, want second", got)
			}
			if err := store.Delete(ctx, "timeline/abc"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := store.Get(ctx, "timeline/abc"); !errors.Is(err, cache.ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
			if err := store.Delete(ctx, "timeline/abc"); err != nil {
				t.Fatalf("second delete should be a no-op, got %v", err)
			}
		})
	}
}

func TestStoresRejectInvalidKeys(t *testing.T) {
	ctx := context.Background()
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "/abs", "a/../b", "trailing/", "sp ace"} {
				if err := store.Put(ctx, key, []byte("x")); err == nil {
					t.Fatalf("expected error for key %q", key)
				}
			}
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	store, err := cache.OpenDir(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	type payload struct {
		Codes []uint32 `json:"codes"`
	}
	if err := cache.PutJSON(ctx, store, "samples/bundle", payload{Codes: []uint32{1, 2, 0xFFFFFFFF}}); err != nil {
		t.Fatalf("PutJSON: %v", err)
	}
	var got payload
	if err := cache.GetJSON(ctx, store, "samples/bundle", &got); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if len(got.Codes) != 3 || got.Codes[2] != 0xFFFFFFFF {
		t.Fatalf("unexpected payload %#v", got)
	}

	if err := store.Put(ctx, "samples/bundle", []byte("{not json")); err != nil {
		t.Fatalf("put corrupt: %v", err)
	}
	if err := cache.GetJSON(ctx, store, "samples/bundle", &got); err == nil || errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestDirStoreConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := cache.OpenDir(root, nil)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}

	values := [][]byte{[]byte("aaaaaaaa"), []byte("bbbbbbbb"), []byte("cccccccc"), []byte("dddddddd")}
	var wg sync.WaitGroup
	for _, value := range values {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Put(ctx, "timeline/shared", value); err != nil {
				t.Errorf("put: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "timeline/shared")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	found := false
	for _, value := range values {
		if string(got) == string(value) {
			found = true
		}
	}
	if !found {
		t.Fatalf("stored value %q is not one of the written values", got)
	}

	entries, err := os.ReadDir(filepath.Join(root, "timeline"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != ".lock" && entry.Name() != "shared" {
			t.Fatalf("leftover temp file %s", entry.Name())
		}
	}
}

func TestOpenNoneAndUnknown(t *testing.T) {
	ctx := context.Background()
	store, err := cache.Open(ctx, cache.Options{Backend: "none"})
	if err != nil {
		t.Fatalf("open none: %v", err)
	}
	if err := store.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("none put: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("none get = %v, want ErrNotFound", err)
	}
	if _, err := cache.Open(ctx, cache.Options{Backend: "redis"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := cache.Open(ctx, cache.Options{Backend: "sqlite"}); err == nil {
		t.Fatal("expected error for sqlite without directory")
	}
}
