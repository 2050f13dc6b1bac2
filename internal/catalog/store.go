// Package catalog loads field documents from a directory and serves them by
// key.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/usestring/inputspec-mcp/internal/schema"
	"github.com/usestring/inputspec-mcp/internal/search"
	"github.com/usestring/inputspec-mcp/pkg/inputspec"
)

// ErrNotFound is returned when no field has the requested key.
var ErrNotFound = errors.New("field not found")

// Entry is one field of a loaded document.
type Entry struct {
	Key          string               `json:"key"`
	Source       string               `json:"source"`
	Field        *inputspec.FieldSpec `json:"field"`
	UpgradeNotes []string             `json:"upgradeNotes,omitempty"`
}

// Catalog holds the fields of every document under a directory. It is safe
// for concurrent use; Load replaces the contents atomically.
type Catalog struct {
	dir       string
	validator *schema.Validator

	mu      sync.RWMutex
	entries map[string]*Entry
	keys    []string
	index   *search.Index
	failed  map[string]string
}

// New creates an empty catalog rooted at dir. An empty dir is allowed and
// yields a catalog populated only through Add.
func New(dir string) (*Catalog, error) {
	v, err := schema.NewDocumentValidator()
	if err != nil {
		return nil, fmt.Errorf("compiling document schema: %w", err)
	}
	c := &Catalog{dir: dir, validator: v}
	c.replace(map[string]*Entry{}, map[string]string{})
	return c, nil
}

// Dir returns the directory the catalog loads from.
func (c *Catalog) Dir() string {
	return c.dir
}

// Load reads every *.json, *.yaml and *.yml document under the directory.
// Documents that fail are skipped and reported in the returned error and in
// Failures; the others are served.
func (c *Catalog) Load() error {
	entries := make(map[string]*Entry)
	failed := make(map[string]string)

	if c.dir == "" {
		c.replace(entries, failed)
		return nil
	}

	var errs []error
	walkErr := filepath.WalkDir(c.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isDocument(path) {
			return nil
		}
		rel, relErr := filepath.Rel(c.dir, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		data, err := os.ReadFile(path)
		if err != nil {
			failed[rel] = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", rel, err))
			return nil
		}
		loaded, err := parseDocument(c.validator, rel, data)
		if err != nil {
			failed[rel] = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", rel, err))
			return nil
		}
		for _, e := range loaded {
			if prev, dup := entries[e.Key]; dup {
				err := fmt.Errorf("%s: key %q already defined by %s", rel, e.Key, prev.Source)
				failed[rel] = err.Error()
				errs = append(errs, err)
				continue
			}
			entries[e.Key] = e
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("walking %s: %w", c.dir, walkErr)
	}

	c.replace(entries, failed)
	slog.Info("field catalog loaded",
		slog.String("dir", c.dir),
		slog.Int("fields", len(entries)),
		slog.Int("failed_documents", len(failed)),
	)
	return errors.Join(errs...)
}

// Add registers the fields of spec under source, replacing fields with the
// same keys. The document is checked first.
func (c *Catalog) Add(source string, spec *inputspec.InputSpec) ([]*Entry, error) {
	if err := spec.Check(); err != nil {
		return nil, err
	}
	added := entriesFor(source, spec, nil)

	c.mu.RLock()
	entries := make(map[string]*Entry, len(c.entries)+len(added))
	for k, v := range c.entries {
		entries[k] = v
	}
	failed := c.failed
	c.mu.RUnlock()

	for _, e := range added {
		entries[e.Key] = e
	}
	c.replace(entries, failed)
	return added, nil
}

func (c *Catalog) replace(entries map[string]*Entry, failed map[string]string) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	labels := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = k + " " + entries[k].Field.DisplayName
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = entries
	c.keys = keys
	c.index = search.NewIndex(labels)
	c.failed = failed
}

// Get returns the entry for key.
func (c *Catalog) Get(key string) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return e, nil
}

// List returns entries sorted by key whose key or display name contains
// query, ignoring case. An empty query lists everything.
func (c *Catalog) List(query string) []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	positions := c.index.Search(query)
	out := make([]*Entry, 0, len(positions))
	for _, pos := range positions {
		out = append(out, c.entries[c.keys[pos]])
	}
	return out
}

// Len returns the number of fields.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Failures maps documents that could not be loaded to their error.
func (c *Catalog) Failures() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.failed))
	for k, v := range c.failed {
		out[k] = v
	}
	return out
}

func isDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
