package elfmodel

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aosp-tools/vndk-compat/internal/diagnostics"
)

// cacheIndexVersion bumps whenever the on-disk cache shape or the
// extraction algorithm changes in a way that invalidates prior entries.
const cacheIndexVersion = 1

type cacheEntry struct {
	ContentHash string `json:"content_hash"`
	SymbolsPath string `json:"symbols_path"`
}

type cacheIndex struct {
	Version int                             `json:"version"`
	Entries map[string]map[string]cacheEntry `json:"entries"` // filePath -> mode key -> entry
}

// Cache is a content-addressed cache of per-file extracted symbol sets,
// keyed by sha256(file bytes). It mirrors the teacher's fact cache: cache
// misses and corruption never fail a run, they just force re-extraction.
type Cache struct {
	dir string
	mu  sync.Mutex
	idx cacheIndex
}

// OpenCache loads (or initializes) a cache rooted at dir.
func OpenCache(dir string) *Cache {
	c := &Cache{
		dir: dir,
		idx: cacheIndex{Version: cacheIndexVersion, Entries: make(map[string]map[string]cacheEntry)},
	}
	c.load()
	return c
}

func (c *Cache) indexPath() string { return filepath.Join(c.dir, "index.json") }
func (c *Cache) symbolsDir() string { return filepath.Join(c.dir, "symbols") }

func (c *Cache) load() {
	log := diagnostics.For(diagnostics.StageExtract)
	data, err := os.ReadFile(c.indexPath())
	if err != nil {
		return
	}
	var idx cacheIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		log.Warnf("discarding corrupt extraction cache: %v", err)
		return
	}
	if idx.Version != cacheIndexVersion || idx.Entries == nil {
		return
	}
	c.idx = idx
}

// Save persists the cache index. Callers should call this once after a
// batch of Get/Put calls; a failure to save is non-fatal.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return writeJSONAtomic(c.indexPath(), c.idx)
}

func modeKey(mode Mode) string {
	if mode == ModeUndefined {
		return "undefined"
	}
	return "defined"
}

// Get returns the cached symbol set for path if its content hash and
// extraction mode match a prior Put.
func (c *Cache) Get(path string, mode Mode) ([]Symbol, bool, error) {
	hash, err := hashFile(path)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	byMode, ok := c.idx.Entries[path]
	var entry cacheEntry
	if ok {
		entry, ok = byMode[modeKey(mode)]
	}
	c.mu.Unlock()
	if !ok || entry.ContentHash != hash {
		return nil, false, nil
	}

	data, err := os.ReadFile(entry.SymbolsPath)
	if err != nil {
		return nil, false, nil
	}
	var syms []Symbol
	if err := json.Unmarshal(data, &syms); err != nil {
		return nil, false, nil
	}
	return syms, true, nil
}

// Put stores the extracted symbol set for path under its content hash.
func (c *Cache) Put(path string, mode Mode, syms []Symbol) error {
	hash, err := hashFile(path)
	if err != nil {
		return err
	}

	symPath := filepath.Join(c.symbolsDir(), hash+"."+modeKey(mode)+".json")
	if err := writeJSONAtomic(symPath, syms); err != nil {
		return err
	}

	c.mu.Lock()
	if c.idx.Entries[path] == nil {
		c.idx.Entries[path] = make(map[string]cacheEntry)
	}
	c.idx.Entries[path][modeKey(mode)] = cacheEntry{ContentHash: hash, SymbolsPath: symPath}
	c.mu.Unlock()
	return nil
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache json: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("temp cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}
