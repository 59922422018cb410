// Package assetcache keeps downloaded sample assets on disk so the app
// works offline after the first run. Exactly one cache generation exists;
// older generations are purged when the cache opens.
package assetcache

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	generationPrefix = "soundfonts-"
	generation       = generationPrefix + "v1"
)

type Cache struct {
	dir     string
	baseURL string
	client  *http.Client
	log     *log.Logger
}

// New opens the cache under root, creating the current generation directory
// and removing any stale ones. baseURL is the remote host assets are
// fetched from on a miss.
func New(root, baseURL string) (*Cache, error) {
	dir := filepath.Join(root, generation)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("assetcache: mkdir %s: %w", dir, err)
	}

	c := &Cache{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 2 * time.Minute},
		log:     log.Default(),
	}
	c.purgeStale(root)
	return c, nil
}

// purgeStale removes every generation directory except the current one.
func (c *Cache) purgeStale(root string) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), generationPrefix) || e.Name() == generation {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, e.Name())); err != nil {
			c.log.Printf("assetcache: purge %s: %v", e.Name(), err)
		}
	}
}

// Open returns the named asset, serving the cached copy when present and
// otherwise fetching, storing and serving it.
func (c *Cache) Open(name string) (*os.File, error) {
	path := filepath.Join(c.dir, filepath.Base(name))
	if f, err := os.Open(path); err == nil {
		return f, nil
	}
	if err := c.fetch(name, path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("assetcache: %w", err)
	}
	return f, nil
}

func (c *Cache) fetch(name, path string) error {
	url := c.baseURL + "/" + name
	res, err := c.client.Get(url)
	if err != nil {
		return fmt.Errorf("assetcache: get %s: %w", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("assetcache: get %s: status %d", url, res.StatusCode)
	}

	tmp, err := os.CreateTemp(c.dir, filepath.Base(name)+"-*.part")
	if err != nil {
		return fmt.Errorf("assetcache: %w", err)
	}
	if _, err := io.Copy(tmp, res.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("assetcache: download %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("assetcache: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("assetcache: %w", err)
	}
	return nil
}
