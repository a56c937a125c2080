// Package dataset loads raw timetable datasets: HTTP fetch with
// conditional-request disk caching, and parsing of the composite-keyed
// JSON into raw entries for normalization.
package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	appLog "ttview/internal/log"
)

// URL returns the dataset endpoint for a year/session pair, e.g.
// "<base>/timetable_2025_S1.json".
func URL(baseURL, year, session string) string {
	return fmt.Sprintf("%s/timetable_%s_%s.json", baseURL, year, session)
}

// cacheEntry holds HTTP cache metadata for a single dataset URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher fetches dataset JSON with ETag / Last-Modified revalidation and
// a disk-backed body cache, falling back to the cached body when the
// origin is unreachable.
type Fetcher struct {
	client   *retryablehttp.Client
	cacheDir string
}

// NewFetcher creates a Fetcher storing cache state under cacheDir.
func NewFetcher(cacheDir string) *Fetcher {
	if cacheDir == "" {
		// Relative fallback so development runs without root permissions.
		cacheDir = "./var/dataset-cache"
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.HTTPClient.Timeout = 15 * time.Second
	client.Logger = nil

	return &Fetcher{
		client:   client,
		cacheDir: cacheDir,
	}
}

// Fetch retrieves the dataset at url. fromCache reports whether the body
// came from the disk cache (304, network error, or non-OK status with a
// usable cached copy).
func (f *Fetcher) Fetch(ctx context.Context, url string) (body []byte, fromCache bool, err error) {
	if url == "" {
		return nil, false, errors.New("dataset URL is empty")
	}

	cachePath := f.cachePathForURL(url)
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return nil, false, err
	}

	meta, _ := f.loadCacheMeta(cachePath)
	cachedBody, _ := os.ReadFile(filepath.Join(cachePath, "body.json"))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	appLog.Info("dataset fetch start", "url", url)
	appLog.Debug("dataset revalidation state",
		"url", url, "etag", meta.ETag, "last_modified", meta.LastModified,
		"cached_bytes", len(cachedBody))

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cachedBody) > 0 {
			appLog.Error("dataset fetch network error, using cached body", err, "url", url)
			return cachedBody, true, nil
		}
		return nil, false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		fresh, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, false, readErr
		}

		newMeta := cacheEntry{
			URL:          url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			UpdatedAt:    time.Now().UTC(),
		}
		if err := f.saveCache(cachePath, newMeta, fresh); err != nil {
			appLog.Error("dataset cache save failed", err, "url", url)
		}

		appLog.Info("dataset fetch success", "url", url, "bytes", len(fresh))
		return fresh, false, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return nil, false, errors.New("received 304 Not Modified but no cached body available")
		}
		appLog.Info("dataset not modified; using cache", "url", url)
		return cachedBody, true, nil

	default:
		if len(cachedBody) > 0 {
			appLog.Error("dataset fetch non-OK, using cached body", errors.New(resp.Status), "url", url, "status", resp.StatusCode)
			return cachedBody, true, nil
		}
		return nil, false, errors.New(resp.Status)
	}
}

func (f *Fetcher) cachePathForURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func (f *Fetcher) loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (f *Fetcher) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Body first, so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.json"), body, 0o600); err != nil {
		return err
	}
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}
