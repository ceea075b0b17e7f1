package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"glfuzz/internal/inject"
	"glfuzz/internal/transform"
)

// Current schema version - increment when VariantRecord format changes
const cacheSchemaVersion uint16 = 1

// Cache хранит сгенерированные варианты на диске по VariantKey.
// Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// MutationRecord is the cached form of a transform.Mutation.
type MutationRecord struct {
	Pass     string
	Function string
	Site     uint8
	Detail   string
}

// VariantRecord is what the cache stores for one variant.
type VariantRecord struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Seed    int64
	Text    string
	Applied []MutationRecord
}

// OpenCache initializes and returns a cache at the standard location.
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewCache(filepath.Join(base, app))
}

// NewCache returns a cache rooted at dir, creating it when needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(key Digest) string {
	// подкаталог "variants": чтобы DropAll не трогал чужое
	return filepath.Join(c.dir, "variants", fmt.Sprintf("%x.mp", key[:]))
}

// Put serializes and writes a record to the cache.
func (c *Cache) Put(key Digest, rec *VariantRecord) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		// после Rename файла уже нет
		if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "failed to remove temp file: %v\n", err)
		}
	}()

	rec.Schema = cacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(rec); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// Get reads a record. A record of another schema version is a miss.
func (c *Cache) Get(key Digest, out *VariantRecord) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == cacheSchemaVersion, nil
}

// DropAll invalidates the cache.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	dir := filepath.Join(c.dir, "variants")
	old := dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

func recordOf(v *Variant) *VariantRecord {
	rec := &VariantRecord{Seed: v.Seed, Text: v.Text}
	rec.Applied = make([]MutationRecord, len(v.Applied))
	for i, m := range v.Applied {
		rec.Applied[i] = MutationRecord{Pass: m.Pass, Function: m.Function, Site: uint8(m.Site), Detail: m.Detail}
	}
	return rec
}

func (rec *VariantRecord) variant(index int) Variant {
	v := Variant{Index: index, Seed: rec.Seed, Text: rec.Text, Cached: true}
	v.Applied = make([]transform.Mutation, len(rec.Applied))
	for i, m := range rec.Applied {
		v.Applied[i] = transform.Mutation{Pass: m.Pass, Function: m.Function, Site: inject.SiteKind(m.Site), Detail: m.Detail}
	}
	return v
}
