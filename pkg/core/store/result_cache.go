package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"telecom_subsidy/pkg/models"
)

// ResultCache keeps finished tuple results on disk so that reruns with
// unchanged inputs skip the computation.
type ResultCache struct {
	dir string
}

// CacheEntry is the on-disk form of a cached result.
type CacheEntry struct {
	Fingerprint string              `json:"fingerprint"`
	Key         models.RunKey       `json:"key"`
	Result      *models.TupleResult `json:"result"`
	CachedAt    time.Time           `json:"cached_at"`
}

// NewResultCache creates the cache directory. An empty dir defaults to
// .cache/results.
func NewResultCache(dir string) (*ResultCache, error) {
	if dir == "" {
		dir = filepath.Join(".cache", "results")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir %s: %w", dir, err)
	}
	return &ResultCache{dir: dir}, nil
}

// RunSettings are the run-level choices that change a tuple result without
// appearing in its key or its input files.
type RunSettings struct {
	Years    []int
	Policy   string
	BaseYear int
}

// Fingerprint hashes the parts of a run key that determine the result, the
// run settings and a digest of the inputs. The run id is excluded.
func Fingerprint(k models.RunKey, s RunSettings, inputs string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%d\x00",
		k.Country, k.Scenario, k.Strategy, k.InputCost, k.Confidence)
	fmt.Fprintf(h, "%v\x00%s\x00%d\x00%s", s.Years, s.Policy, s.BaseYear, inputs)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *ResultCache) path(fingerprint string) string {
	return filepath.Join(c.dir, fingerprint+".json")
}

// Get returns the cached result, or nil on a miss.
func (c *ResultCache) Get(fingerprint string) (*models.TupleResult, error) {
	data, err := os.ReadFile(c.path(fingerprint))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	if entry.Fingerprint != fingerprint || entry.Result == nil {
		return nil, nil
	}
	return entry.Result, nil
}

// Put stores a result under its fingerprint.
func (c *ResultCache) Put(fingerprint string, res *models.TupleResult) error {
	entry := CacheEntry{
		Fingerprint: fingerprint,
		Key:         res.Key,
		Result:      res,
		CachedAt:    time.Now(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	tmp := c.path(fingerprint) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to save cache entry: %w", err)
	}
	return os.Rename(tmp, c.path(fingerprint))
}

// Exists reports whether a fingerprint is cached.
func (c *ResultCache) Exists(fingerprint string) bool {
	_, err := os.Stat(c.path(fingerprint))
	return err == nil
}
