package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// diskCacheSchemaVersion invalidates every entry when the payload shape
// changes, without needing to touch anything already on disk.
const diskCacheSchemaVersion uint16 = 1

// Digest is a SHA-256 content hash, used both as the cache key and as the
// unit of change detection: two inputs with the same digest produce
// byte-identical output regardless of what else changed in the tree.
type Digest [sha256.Size]byte

func hashBytes(b []byte) Digest {
	return sha256.Sum256(b)
}

// diskPayload is what actually gets written to disk: the emitted Nix source
// plus enough of the schema to detect a stale format on the next run.
type diskPayload struct {
	Schema uint16
	Output []byte
}

// Cache is a content-addressed store of emitted module output, keyed by the
// SHA-256 digest of the source IR document's raw bytes together with the
// writer's line width, the other input that shapes the output. Losing the cache
// (a cleared directory, a corrupt entry) never affects correctness: every
// entry is reproducible from its key by re-running codegen, so Cache only
// ever saves work, never decides what the work is.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// OpenCache ensures dir exists and returns a Cache rooted there.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, hex.EncodeToString(key[:])+".mp")
}

// Get returns the cached output for key, if present.
func (c *Cache) Get(key Digest) ([]byte, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload diskPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		// A corrupt or partially written entry is treated as a miss, not a
		// failure: the caller falls back to recompiling.
		return nil, false, nil
	}
	if payload.Schema != diskCacheSchemaVersion {
		return nil, false, nil
	}
	return payload.Output, true, nil
}

// Put writes output under key, replacing any existing entry atomically via
// a temp file plus rename so a concurrent Get never observes a partial
// write.
func (c *Cache) Put(key Digest, output []byte) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	tmp, err := os.CreateTemp(c.dir, "tmp-*.mp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	payload := diskPayload{Schema: diskCacheSchemaVersion, Output: output}
	if err := msgpack.NewEncoder(tmp).Encode(&payload); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, c.pathFor(key))
}
