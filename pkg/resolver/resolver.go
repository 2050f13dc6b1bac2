// Package resolver turns a values endpoint plus search and page state into a
// normalized, cached list of value aliases.
//
// INLINE endpoints are filtered and paged locally. Remote endpoints are
// fetched through a transport.Doer, mapped with the endpoint's
// responseMapping and stored in a cache.Cache according to its
// cacheStrategy.
//
//	r := resolver.New(transport.New(), mem, resolver.WithDeduplication())
//	res, err := r.ResolveValues(ctx, field.ValuesEndpoint, resolver.Params{Search: "ta"})
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/singleflight"

	"github.com/usestring/inputspec-mcp/internal/query"
	"github.com/usestring/inputspec-mcp/internal/search"
	"github.com/usestring/inputspec-mcp/pkg/cache"
	"github.com/usestring/inputspec-mcp/pkg/inputspec"
	"github.com/usestring/inputspec-mcp/pkg/transport"
)

const (
	// ShortTermTTL is the lifetime of SHORT_TERM cache entries.
	ShortTermTTL = 5 * time.Minute
	// LongTermTTL is the lifetime of LONG_TERM cache entries.
	LongTermTTL = time.Hour

	// DefaultFetchTimeout bounds a de-duplicated fetch, which outlives the
	// cancellation of any single caller.
	DefaultFetchTimeout = 30 * time.Second

	inlineIndexSize = 128
)

// TTL returns the cache lifetime for a strategy. ok is false for NONE.
// SESSION entries never expire.
func TTL(strategy inputspec.CacheStrategy) (ttl time.Duration, ok bool) {
	switch strategy {
	case inputspec.CacheSession:
		return cache.NoExpiration, true
	case inputspec.CacheShortTerm:
		return ShortTermTTL, true
	case inputspec.CacheLongTerm:
		return LongTermTTL, true
	default:
		return 0, false
	}
}

// Params is the caller's search and pagination state. Zero values mean unset.
type Params struct {
	Search string `json:"search,omitempty"`
	Page   int    `json:"page,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Result is a normalized page of values.
type Result struct {
	Values  []inputspec.ValueAlias `json:"values"`
	Total   *int                   `json:"total,omitempty"`
	HasNext bool                   `json:"hasNext"`
	Page    *int                   `json:"page,omitempty"`
}

func (r *Result) clone() *Result {
	c := *r
	c.Values = slices.Clone(r.Values)
	return &c
}

func emptyResult() *Result {
	return &Result{Values: []inputspec.ValueAlias{}}
}

// ValuesResolver is the capability consumed by Debouncer and the MCP tools.
type ValuesResolver interface {
	ResolveValues(ctx context.Context, ep *inputspec.ValuesEndpoint, p Params) (*Result, error)
}

// Resolver resolves value domains. It is safe for concurrent use.
type Resolver struct {
	doer    transport.Doer
	cache   cache.Cache
	mapper  *mapper
	indexes *lru.Cache[string, *search.Index]
	domains *Domains

	dedupe       bool
	fetchTimeout time.Duration
	group        singleflight.Group
}

// Option is a functional option for configuring the Resolver.
type Option func(*Resolver)

// WithDeduplication collapses concurrent fetches of the same cache key into
// one request.
func WithDeduplication() Option {
	return func(r *Resolver) {
		r.dedupe = true
	}
}

// WithFetchTimeout bounds de-duplicated fetches. Non-positive values keep
// DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.fetchTimeout = d
		}
	}
}

// WithLabelSanitizer strips markup from remote labels.
func WithLabelSanitizer() Option {
	return func(r *Resolver) {
		policy := bluemonday.StrictPolicy()
		r.mapper.sanitize = policy.Sanitize
	}
}

// WithDomains records complete remote domains in d, making them available
// to CLOSED membership checks.
func WithDomains(d *Domains) Option {
	return func(r *Resolver) {
		r.domains = d
	}
}

// New creates a Resolver. A nil cache disables caching.
func New(doer transport.Doer, c cache.Cache, opts ...Option) *Resolver {
	if c == nil {
		c = noCache{}
	}
	// Only fails for a non-positive size.
	indexes, _ := lru.New[string, *search.Index](inlineIndexSize)

	r := &Resolver{
		doer:         doer,
		cache:        c,
		mapper:       &mapper{engine: query.NewEngine()},
		indexes:      indexes,
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Domains returns the registry populated by this resolver, or nil.
func (r *Resolver) Domains() *Domains {
	return r.domains
}

// ResolveValues returns one page of values for ep.
//
// A non-empty search shorter than minSearchLength yields an empty result
// without touching cache or network. Transport failures, non-2xx statuses,
// undecodable bodies and cancellation are returned as *ResolverError. An
// invalid endpoint is reported with inputspec.ErrInvalidFieldSpec.
func (r *Resolver) ResolveValues(ctx context.Context, ep *inputspec.ValuesEndpoint, p Params) (*Result, error) {
	if ep == nil {
		return nil, fmt.Errorf("%w: nil values endpoint", inputspec.ErrInvalidFieldSpec)
	}
	if err := ep.Check(); err != nil {
		return nil, err
	}

	if p.Search != "" && utf8.RuneCountInString(p.Search) < ep.MinSearchLength {
		return emptyResult(), nil
	}

	if ep.Protocol == inputspec.ProtocolInline {
		return r.resolveInline(ep, p), nil
	}

	key := CacheKey(ep, p)
	if res, ok := r.cached(ctx, ep, key); ok {
		r.observe(ep, p, res)
		return res, nil
	}

	var (
		res *Result
		err error
	)
	if r.dedupe {
		res, err = r.fetchShared(ctx, key, ep, p)
	} else {
		res, err = r.fetch(ctx, key, ep, p)
	}
	if err != nil {
		return nil, err
	}
	r.observe(ep, p, res)
	return res, nil
}

// ClearEndpoint drops every cached page of ep and forgets its domain. It
// returns the number of cache entries removed, or -1 when the cache backend
// cannot delete by prefix and was cleared entirely.
func (r *Resolver) ClearEndpoint(ctx context.Context, ep *inputspec.ValuesEndpoint) int {
	if r.domains != nil {
		r.domains.Forget(ep)
	}
	if pd, ok := r.cache.(cache.PrefixDeleter); ok {
		return pd.DeletePrefix(ctx, endpointKey(ep)+"|")
	}
	r.cache.Clear(ctx)
	return -1
}

func (r *Resolver) cached(ctx context.Context, ep *inputspec.ValuesEndpoint, key string) (*Result, bool) {
	if _, ok := TTL(ep.EffectiveCacheStrategy()); !ok {
		return nil, false
	}
	data, ok := r.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var res Result
	if err := sonic.Unmarshal(data, &res); err != nil {
		slog.Debug("dropping undecodable cache entry",
			slog.String("uri", ep.URI),
			slog.String("error", err.Error()),
		)
		r.cache.Delete(ctx, key)
		return nil, false
	}
	if res.Values == nil {
		res.Values = []inputspec.ValueAlias{}
	}
	slog.Debug("values cache hit", slog.String("uri", ep.URI))
	return &res, true
}

func (r *Resolver) fetchShared(ctx context.Context, key string, ep *inputspec.ValuesEndpoint, p Params) (*Result, error) {
	ch := r.group.DoChan(key, func() (any, error) {
		// Detached from the first caller: each waiter handles its own
		// cancellation below.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.fetchTimeout)
		defer cancel()
		return r.fetch(fctx, key, ep, p)
	})
	select {
	case <-ctx.Done():
		return nil, &ResolverError{URI: ep.URI, Err: ctx.Err()}
	case out := <-ch:
		if out.Err != nil {
			return nil, out.Err
		}
		res := out.Val.(*Result)
		if out.Shared {
			res = res.clone()
		}
		return res, nil
	}
}

func (r *Resolver) fetch(ctx context.Context, key string, ep *inputspec.ValuesEndpoint, p Params) (*Result, error) {
	start := time.Now()

	req, err := buildRequest(ep, p)
	if err != nil {
		return nil, &ResolverError{URI: ep.URI, Err: err}
	}

	resp, err := r.do(ctx, req)
	if err != nil {
		return nil, &ResolverError{URI: ep.URI, Err: err}
	}
	if !resp.OK() {
		return nil, &ResolverError{
			URI:    ep.URI,
			Status: resp.Status,
			Err:    fmt.Errorf("%w: %s", ErrUnexpectedStatus, snippet(resp.Body)),
		}
	}

	doc, err := resp.JSON()
	if err != nil {
		return nil, &ResolverError{URI: ep.URI, Status: resp.Status, Err: err}
	}
	res := r.mapper.normalize(doc, ep.ResponseMapping)

	if ttl, ok := TTL(ep.EffectiveCacheStrategy()); ok {
		if data, err := sonic.Marshal(res); err == nil {
			r.cache.Set(ctx, key, data, ttl)
		}
	}

	slog.Debug("values fetched",
		slog.String("uri", ep.URI),
		slog.Int("count", len(res.Values)),
		slog.Bool("has_next", res.HasNext),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return res, nil
}

// do runs the request and returns as soon as ctx ends, even if the Doer
// ignores cancellation.
func (r *Resolver) do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	type outcome struct {
		resp *transport.Response
		err  error
	}
	ch := make(chan outcome, 1)
	go func() {
		resp, err := r.doer.Do(ctx, req)
		ch <- outcome{resp, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-ch:
		if out.err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(out.err, ctxErr) {
				return nil, fmt.Errorf("%w: %v", ctxErr, out.err)
			}
			return nil, out.err
		}
		return out.resp, nil
	}
}

// observe records res as the endpoint's full domain when it is known to be
// complete: no search filter, nothing further.
func (r *Resolver) observe(ep *inputspec.ValuesEndpoint, p Params, res *Result) {
	if r.domains == nil || p.Search != "" || res.HasNext {
		return
	}
	if res.Total != nil && *res.Total > len(res.Values) {
		return
	}
	if !listingComplete(ep, p, res) {
		return
	}
	r.domains.Record(ep, res.Values)
}

// listingComplete reports whether an unfiltered listing provably holds every
// value. A paged endpoint needs a mapped hasNext or total to prove it; an
// unpaged one that was sent a limit must have returned fewer items than it.
func listingComplete(ep *inputspec.ValuesEndpoint, p Params, res *Result) bool {
	rm := ep.ResponseMapping
	if rm == nil {
		rm = &inputspec.ResponseMapping{}
	}
	proven := rm.HasNextField != "" || (rm.TotalField != "" && res.Total != nil)

	if ep.EffectivePagination() == inputspec.PaginationPageNumber {
		return effectivePage(p) == 1 && proven
	}
	if ep.RequestParams != nil && ep.RequestParams.LimitParam != "" &&
		len(res.Values) >= effectiveLimit(ep, p) {
		return proven
	}
	return true
}

func snippet(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

// noCache is used when no cache backend is configured.
type noCache struct{}

func (noCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (noCache) Set(context.Context, string, []byte, time.Duration) {}
func (noCache) Delete(context.Context, string) {}
func (noCache) Clear(context.Context) {}
