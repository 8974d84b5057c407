// Package assets materializes packaged sample files (shaders, texture
// levels, alpha images) into a local resource directory before they are
// loaded.
package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/etcalpha/internal/config"
	"github.com/Faultbox/etcalpha/internal/logger"
)

// ErrNotFound is returned when no source holds the requested asset. It
// is always accompanied by fs.ErrNotExist.
var ErrNotFound = errors.New("asset not found")

// Source is a read-only collection of packaged files.
type Source interface {
	// Open opens the named asset. Missing assets return an error
	// satisfying errors.Is(err, fs.ErrNotExist).
	Open(name string) (io.ReadCloser, error)
}

// Manager fetches assets from its sources into resource directories.
type Manager struct {
	sources []Source
	cache   *Cache
	mu      sync.Mutex
	log     *zap.Logger
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
		log:   logger.Named("assets"),
	}
}

// AddSource adds a source to the manager.
// Sources are searched in reverse order (last added = highest priority).
func (m *Manager) AddSource(src Source) {
	m.mu.Lock()
	m.sources = append(m.sources, src)
	m.mu.Unlock()
}

// AddDir adds a directory source.
func (m *Manager) AddDir(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("opening asset dir %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("asset dir %s is not a directory", root)
	}
	m.AddSource(DirSource(root))
	return nil
}

// AddArchive adds a zip or APK archive source.
func (m *Manager) AddArchive(path string) error {
	src, err := OpenZip(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}
	m.AddSource(src)
	return nil
}

// Fetch makes sure dir/name exists and returns its path. A file already
// present in dir is used as is; otherwise the asset is copied there from
// the highest priority source holding it.
func (m *Manager) Fetch(dir, name string) (string, error) {
	dst := filepath.Join(dir, name)
	if _, ok := m.cache.Get(dst); ok {
		return dst, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(dst); err == nil {
		m.cache.Set(dst, "local")
		return dst, nil
	}

	for i := len(m.sources) - 1; i >= 0; i-- {
		rc, err := m.sources[i].Open(name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("opening asset %s: %w", name, err)
		}

		n, err := writeFile(dst, rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("extracting asset %s: %w", name, err)
		}

		m.cache.Set(dst, sourceName(m.sources[i]))
		m.log.Debug("asset extracted",
			zap.String("name", name),
			zap.String("path", dst),
			zap.Int64("bytes", n),
		)
		return dst, nil
	}

	return "", fmt.Errorf("%w: %s: %w", ErrNotFound, name, fs.ErrNotExist)
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Close closes all sources that hold resources.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, src := range m.sources {
		if c, ok := src.(io.Closer); ok {
			c.Close()
		}
	}
	m.sources = nil
	m.cache.Clear()
}

// writeFile copies r to path through a temporary file in the same
// directory, so a failed copy never leaves a partial asset behind.
func writeFile(path string, r io.Reader) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(dir, ".fetch-*")
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return 0, err
	}
	return n, nil
}

func sourceName(src Source) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", src)
}

// Cache remembers which assets are materialized and where they came from.
type Cache struct {
	data map[string]string
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]string),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	origin, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return origin, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key, origin string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = origin
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]string)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// NewManagerFromConfig builds the manager the sample hosts use: the
// builtin shaders, then the asset directory when it exists, then the
// archive when one is configured.
func NewManagerFromConfig(c config.SampleConfig) (*Manager, error) {
	m := NewManager()
	m.AddSource(Builtin())

	if c.AssetDir != "" {
		if err := m.AddDir(c.AssetDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
			m.log.Debug("asset dir not present", zap.String("dir", c.AssetDir))
		}
	}
	if c.AssetArchive != "" {
		if err := m.AddArchive(c.AssetArchive); err != nil {
			m.Close()
			return nil, err
		}
	}
	return m, nil
}
