package cache

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	tt "github.com/gnolang/acmatch/internal/types"
)

const (
	cacheFileName = "scan_cache.gob"
	defaultMaxAge = 24 * time.Hour
)

type fileMetadata struct {
	Hash        uint64
	Fingerprint uint64
}

type CacheEntry struct {
	Metadata     fileMetadata
	Matches      []tt.Match
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Cache stores scan results per file. An entry is valid while both the file
// content and the pattern set fingerprint are unchanged.
type Cache struct {
	CacheDir string
	entries  map[string]CacheEntry
	mutex    sync.Mutex
	maxAge   time.Duration
}

func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir: cacheDir,
		entries:  make(map[string]CacheEntry),
		maxAge:   defaultMaxAge,
	}

	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}

	return cache, nil
}

func (c *Cache) load() error {
	cacheFile := filepath.Join(c.CacheDir, cacheFileName)
	file, err := os.Open(cacheFile)
	if os.IsNotExist(err) {
		return nil // nothing saved yet
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

// Save writes all entries to the cache directory.
func (c *Cache) Save() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	cacheFile := filepath.Join(c.CacheDir, cacheFileName)
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

// Set stores matches for the current content of filename.
func (c *Cache) Set(filename string, fingerprint uint64, matches []tt.Match) error {
	hash, err := getFileHash(filename)
	if err != nil {
		return fmt.Errorf("failed to get file metadata: %w", err)
	}
	c.SetHash(filename, hash, fingerprint, matches)
	return nil
}

// SetHash stores matches computed from content whose xxhash is hash.
func (c *Cache) SetHash(filename string, hash, fingerprint uint64, matches []tt.Match) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	c.entries[filename] = CacheEntry{
		Metadata:     fileMetadata{Hash: hash, Fingerprint: fingerprint},
		Matches:      matches,
		CreatedAt:    now,
		LastAccessed: now,
	}
}

func (c *Cache) Get(filename string, fingerprint uint64) ([]tt.Match, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[filename]
	if !exists {
		return nil, false
	}

	if c.isEntryInvalid(filename, fingerprint, entry) {
		delete(c.entries, filename)
		return nil, false
	}

	entry.LastAccessed = time.Now()
	c.entries[filename] = entry

	return entry.Matches, true
}

func (c *Cache) isEntryInvalid(filename string, fingerprint uint64, entry CacheEntry) bool {
	// too old
	if time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}

	if entry.Metadata.Fingerprint != fingerprint {
		return true
	}

	hash, err := getFileHash(filename)
	return err != nil || hash != entry.Metadata.Hash
}

func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = duration
}

func (c *Cache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return len(c.entries)
}

func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	c.entries = make(map[string]CacheEntry)
	c.mutex.Unlock()

	_ = c.Save() // ignore error as this is a manual operation
}

func getFileHash(filename string) (uint64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := xxhash.New()
	if _, err := io.Copy(hash, file); err != nil {
		return 0, fmt.Errorf("failed to calculate hash: %w", err)
	}

	return hash.Sum64(), nil
}
