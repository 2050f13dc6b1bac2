package mcpsrv

import (
	"context"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/inputspec-mcp/internal/catalog"
	"github.com/usestring/inputspec-mcp/internal/config"
	"github.com/usestring/inputspec-mcp/internal/logging"
	"github.com/usestring/inputspec-mcp/internal/mcp"
	"github.com/usestring/inputspec-mcp/internal/mcp/tools"
	"github.com/usestring/inputspec-mcp/pkg/cache"
	"github.com/usestring/inputspec-mcp/pkg/cache/rediscache"
	"github.com/usestring/inputspec-mcp/pkg/resolver"
	"github.com/usestring/inputspec-mcp/pkg/transport"
	"github.com/usestring/inputspec-mcp/pkg/validation"
)

// Server is the inputspec MCP server.
// It wraps the internal implementation and provides extension points.
type Server struct {
	internal   *mcp.Server
	catalog    *catalog.Catalog
	watch      bool
	deps       *Deps
	closers    []func() error
	logCleanup func() error
}

// NewServer creates a new MCP server with builtin inputspec tools.
//
// Configuration is loaded from the environment (see internal/config); use
// functional options to override it, add custom tools, etc. Documents that
// fail to load are logged and skipped.
func NewServer(opts ...Option) (*Server, error) {
	cfg := &serverConfig{
		config: config.Load(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.catalogDir != "" {
		cfg.config.CatalogDir = cfg.catalogDir
	}

	// Setup logging
	logCfg := logging.Config{
		Level:      cfg.config.LogLevel,
		Format:     cfg.config.LogFormat,
		FilePath:   cfg.config.LogFile,
		MaxSizeMB:  cfg.config.LogMaxSizeMB,
		MaxBackups: cfg.config.LogMaxBackups,
		MaxAgeDays: cfg.config.LogMaxAgeDays,
		Compress:   cfg.config.LogCompress,
	}
	if cfg.logLevel != "" {
		logCfg.Level = cfg.logLevel
	}
	if cfg.logFile != "" {
		logCfg.FilePath = cfg.logFile
	}
	logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	s := &Server{
		watch:      cfg.config.CatalogWatch && !cfg.noWatch && cfg.config.CatalogDir != "",
		logCleanup: logCleanup,
	}

	// Create infrastructure
	valuesCache, err := s.newCache(cfg)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	doer := cfg.doer
	if doer == nil {
		httpOpts := []transport.Option{transport.WithTimeout(cfg.config.HTTPClientTimeout)}
		if cfg.httpClient != nil {
			httpOpts = append([]transport.Option{transport.WithHTTPClient(cfg.httpClient)}, httpOpts...)
		}
		doer = transport.New(httpOpts...)
	}

	domains := resolver.NewDomains()
	resolverOpts := []resolver.Option{
		resolver.WithDomains(domains),
		resolver.WithFetchTimeout(cfg.config.HTTPClientTimeout),
	}
	if cfg.config.ResolverDeduplicate {
		resolverOpts = append(resolverOpts, resolver.WithDeduplication())
	}
	if cfg.config.ResolverSanitizeLabel {
		resolverOpts = append(resolverOpts, resolver.WithLabelSanitizer())
	}
	valuesResolver := resolver.New(doer, valuesCache, resolverOpts...)

	validatorOpts := []validation.Option{
		validation.WithDomains(domains),
		validation.WithLanguage(cfg.config.ValidationLanguage),
	}
	if cfg.config.ValidationFailFast {
		validatorOpts = append(validatorOpts, validation.WithFailFast())
	}
	validator := validation.New(validatorOpts...)

	cat, err := catalog.New(cfg.config.CatalogDir)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to create catalog: %w", err)
	}
	if err := cat.Load(); err != nil {
		slog.Warn("some field documents failed to load",
			slog.String("dir", cat.Dir()),
			slog.String("error", err.Error()),
		)
	}
	slog.Info("field catalog loaded",
		slog.String("dir", cat.Dir()),
		slog.Int("fields", cat.Len()),
	)
	s.catalog = cat

	debounced := resolver.NewDebouncer(valuesResolver)

	toolDeps := &tools.Deps{
		Config:    cfg.config,
		Catalog:   cat,
		Validator: validator,
		Values:    debounced,
		Resolver:  valuesResolver,
		Domains:   domains,
	}

	// Public deps (same values, different type for public API)
	s.deps = &Deps{
		Config:    cfg.config,
		Catalog:   cat,
		Cache:     valuesCache,
		Validator: validator,
		Values:    debounced,
		Resolver:  valuesResolver,
		Domains:   domains,
	}

	// Build internal server options
	var internalOpts []mcp.ServerOption
	if !cfg.disableBuiltinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}
	if !cfg.disableBuiltinPrompts {
		internalOpts = append(internalOpts, mcp.WithBuiltinPrompts())
	}

	// Add custom extension registration callbacks
	for _, fn := range cfg.toolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.promptRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.resourceRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}

	// Add deferred tool registrations (tools that need Deps access)
	for _, fn := range cfg.deferredToolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			fn(srv, s.deps)
		}))
	}

	internal, err := mcp.NewServer(toolDeps, internalOpts...)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	s.internal = internal

	return s, nil
}

// newCache builds the value page cache selected by CACHE_BACKEND unless one
// was injected.
func (s *Server) newCache(cfg *serverConfig) (cache.Cache, error) {
	if cfg.cache != nil {
		return cfg.cache, nil
	}

	switch cfg.config.CacheBackend {
	case config.CacheBackendRedis:
		rc, err := rediscache.NewFromEnv(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to connect redis cache: %w", err)
		}
		s.closers = append(s.closers, rc.Close)
		return rc, nil
	case config.CacheBackendMemory, "":
		mem, err := cache.NewMemory(cfg.config.CacheMaxItems)
		if err != nil {
			return nil, fmt.Errorf("failed to create memory cache: %w", err)
		}
		return mem, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.config.CacheBackend)
	}
}

// Run starts the MCP server with stdio transport.
// It also watches the catalog directory for changes when enabled.
// The server runs until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if s.watch {
		if err := s.catalog.Watch(ctx); err != nil {
			slog.Warn("catalog watch disabled", slog.String("error", err.Error()))
		}
	}
	return s.internal.Run(ctx)
}

// Close cleans up server resources.
func (s *Server) Close() error {
	var firstErr error
	for _, c := range s.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	if s.logCleanup != nil {
		if err := s.logCleanup(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.logCleanup = nil
	}
	return firstErr
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.internal.MCPServer()
}
