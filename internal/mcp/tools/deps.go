package tools

import (
	"github.com/usestring/inputspec-mcp/internal/catalog"
	"github.com/usestring/inputspec-mcp/internal/config"
	"github.com/usestring/inputspec-mcp/pkg/resolver"
	"github.com/usestring/inputspec-mcp/pkg/validation"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Config    *config.Config
	Catalog   *catalog.Catalog
	Validator *validation.Validator
	Values    resolver.ValuesResolver // resolution entry point, usually debounced
	Resolver  *resolver.Resolver      // underlying resolver, for cache invalidation
	Domains   *resolver.Domains
}

// LookupField returns the catalog entry for key as a coded error on failure.
func (d *Deps) LookupField(key string) (*catalog.Entry, error) {
	if key == "" {
		return nil, ErrInvalidInput("key is required")
	}
	entry, err := d.Catalog.Get(key)
	if err != nil {
		return nil, ErrNotFound("field", key)
	}
	return entry, nil
}
