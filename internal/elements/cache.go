package elements

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// cacheDoc is the JSON document persisted between runs.
type cacheDoc struct {
	FetchedAt  time.Time `json:"fetched_at"`
	Satellites Set       `json:"satellites"`
}

// Cache persists the last successfully fetched element sets to disk.
type Cache struct {
	path string
}

func NewCache(path string) *Cache {
	return &Cache{path: path}
}

func (c *Cache) Path() string {
	return c.path
}

// Load reads the cached element sets and the time they were fetched.
func (c *Cache) Load() (Set, time.Time, error) {
	b, err := os.ReadFile(c.path)
	if err != nil {
		return nil, time.Time{}, err
	}

	var doc cacheDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode %s: %w", c.path, err)
	}
	if len(doc.Satellites) == 0 {
		return nil, time.Time{}, fmt.Errorf("cache %s holds no satellites", c.path)
	}
	return doc.Satellites, doc.FetchedAt, nil
}

// Write atomically replaces the cache via a temp file and rename so
// readers never see a half-written document.
func (c *Cache) Write(set Set, fetchedAt time.Time) error {
	b, err := json.MarshalIndent(cacheDoc{FetchedAt: fetchedAt.UTC(), Satellites: set}, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "tle-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), c.path)
}
