package mcpsrv

import (
	"github.com/usestring/inputspec-mcp/internal/catalog"
	"github.com/usestring/inputspec-mcp/internal/config"
	"github.com/usestring/inputspec-mcp/pkg/cache"
	"github.com/usestring/inputspec-mcp/pkg/resolver"
	"github.com/usestring/inputspec-mcp/pkg/validation"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools.
type Deps struct {
	Config    *config.Config
	Catalog   *catalog.Catalog
	Cache     cache.Cache
	Validator *validation.Validator
	Values    resolver.ValuesResolver
	Resolver  *resolver.Resolver
	Domains   *resolver.Domains
}
