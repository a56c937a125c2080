package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestFetchCachesWithETag(t *testing.T) {
	var hits atomic.Int32
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(`{"COMP1130_S1":{"title":"X_S1"}}`))
	}))
	defer origin.Close()

	f := NewFetcher(t.TempDir())
	ctx := context.Background()

	body, fromCache, err := f.Fetch(ctx, origin.URL+"/timetable_2025_S1.json")
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if fromCache {
		t.Fatalf("first fetch should be fresh")
	}
	if len(body) == 0 {
		t.Fatalf("empty body")
	}

	body2, fromCache, err := f.Fetch(ctx, origin.URL+"/timetable_2025_S1.json")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if !fromCache {
		t.Fatalf("second fetch should revalidate to cache")
	}
	if string(body2) != string(body) {
		t.Fatalf("cached body differs")
	}
	if hits.Load() != 2 {
		t.Fatalf("origin hits = %d, want 2", hits.Load())
	}
}

func TestFetchFallsBackToCacheOnServerError(t *testing.T) {
	fail := false
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"COMP1130_S1":{"title":"X_S1"}}`))
	}))
	defer origin.Close()

	f := NewFetcher(t.TempDir())
	// Server errors are retried a few times before giving up; drop the
	// retries to keep the test fast.
	f.client.RetryMax = 0
	ctx := context.Background()

	if _, _, err := f.Fetch(ctx, origin.URL+"/timetable_2025_S1.json"); err != nil {
		t.Fatalf("warm-up fetch: %v", err)
	}

	fail = true
	body, fromCache, err := f.Fetch(ctx, origin.URL+"/timetable_2025_S1.json")
	if err != nil {
		t.Fatalf("fallback fetch: %v", err)
	}
	if !fromCache || len(body) == 0 {
		t.Fatalf("expected cached fallback, fromCache=%v len=%d", fromCache, len(body))
	}
}

func TestFetchRejectsEmptyURL(t *testing.T) {
	f := NewFetcher(t.TempDir())
	if _, _, err := f.Fetch(context.Background(), ""); err == nil {
		t.Fatalf("empty URL must fail")
	}
}
