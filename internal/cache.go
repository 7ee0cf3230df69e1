package internal

import (
	"crypto/md5"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	tt "github.com/dexopt/apiremap/internal/types"
)

const defaultCacheMaxAge = 24 * time.Hour

type fileMetadata struct {
	Hash         string
	LastModified time.Time
}

// CacheEntry is one cached validation outcome, keyed by the program
// dump it was computed from. DependencyHash fingerprints the content
// of every dependency file at the time the entry was stored.
type CacheEntry struct {
	Metadata       fileMetadata
	Report         tt.Report
	DependencyHash string
	CreatedAt      time.Time
	LastAccessed   time.Time
}

// Cache persists validation reports between runs. An entry is reused
// only while the program dump it was computed from and every
// dependency file (the API catalog, the config) are unchanged.
type Cache struct {
	CacheDir        string
	entries         map[string]CacheEntry
	mutex           sync.RWMutex
	maxAge          time.Duration
	dependencyFiles []string
}

// NewCache opens (or creates) the cache under cacheDir. The reports it
// hands out become stale whenever one of the dependency files changes
// content, regardless of the dump they are keyed by.
func NewCache(cacheDir string, dependencies ...string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir:        cacheDir,
		entries:         make(map[string]CacheEntry),
		maxAge:          defaultCacheMaxAge,
		dependencyFiles: dependencies,
	}

	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}

	return cache, nil
}

func (c *Cache) load() error {
	cacheFile := filepath.Join(c.CacheDir, "remap_cache.gob")
	file, err := os.Open(cacheFile)
	if os.IsNotExist(err) {
		return nil // cache file doesn't exist yet. This is fine.
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&c.entries); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}

	return nil
}

func (c *Cache) save() error {
	cacheFile := filepath.Join(c.CacheDir, "remap_cache.gob")
	file, err := os.Create(cacheFile)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}

	return nil
}

// Set stores the report computed from the given program dump.
func (c *Cache) Set(dumpPath string, report tt.Report) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	metadata, err := getFileMetadata(dumpPath)
	if err != nil {
		return fmt.Errorf("failed to get file metadata: %w", err)
	}
	depsHash, err := c.dependencyHash()
	if err != nil {
		return fmt.Errorf("failed to hash dependency files: %w", err)
	}

	c.entries[dumpPath] = CacheEntry{
		Metadata:       metadata,
		Report:         report,
		DependencyHash: depsHash,
		CreatedAt:      time.Now(),
		LastAccessed:   time.Now(),
	}

	return c.save()
}

// Get returns the cached report for the given program dump, when one
// exists and is still valid.
func (c *Cache) Get(dumpPath string) (tt.Report, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[dumpPath]
	if !exists {
		return tt.Report{}, false
	}

	if c.isEntryInvalid(dumpPath, entry) {
		delete(c.entries, dumpPath)
		return tt.Report{}, false
	}

	entry.LastAccessed = time.Now()
	c.entries[dumpPath] = entry

	return entry.Report, true
}

func (c *Cache) isEntryInvalid(dumpPath string, entry CacheEntry) bool {
	// too old
	if time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}

	currentMetadata, err := getFileMetadata(dumpPath)
	if err != nil || currentMetadata != entry.Metadata {
		return true
	}

	depsHash, err := c.dependencyHash()
	if err != nil {
		return true
	}
	return depsHash != entry.DependencyHash
}

// dependencyHash fingerprints the current content of the dependency
// files. Entries remember the fingerprint they were stored under, so a
// catalog or config edited between runs marks them stale.
func (c *Cache) dependencyHash() (string, error) {
	hash := md5.New()
	for _, file := range c.dependencyFiles {
		fileHash, err := getFileHash(file)
		if err != nil {
			return "", fmt.Errorf("failed to get hash for %s: %w", file, err)
		}
		fmt.Fprintf(hash, "%s=%s\n", file, fileHash)
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// SetMaxAge bounds how long an entry stays valid.
func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = duration
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]CacheEntry)
	_ = c.save() // ignore error as this is a manual operation
}

func getFileMetadata(filename string) (fileMetadata, error) {
	file, err := os.Open(filename)
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return fileMetadata{}, fmt.Errorf("failed to calculate hash: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to get file info: %w", err)
	}

	return fileMetadata{
		Hash:         fmt.Sprintf("%x", hash.Sum(nil)),
		LastModified: info.ModTime(),
	}, nil
}

func getFileHash(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
