package resolver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/usestring/inputspec-mcp/pkg/inputspec"
)

// Debouncer delays search-driven resolutions by the endpoint's debounceMs.
// A newer search for the same endpoint, page and limit supersedes a pending
// one, which then returns ErrSuperseded without issuing a request.
// Calls without a search, or against endpoints with no debounce, pass
// straight through.
type Debouncer struct {
	next ValuesResolver

	mu      sync.Mutex
	pending map[string]*pendingSearch
}

type pendingSearch struct {
	superseded chan struct{}
}

// NewDebouncer wraps next.
func NewDebouncer(next ValuesResolver) *Debouncer {
	return &Debouncer{
		next:    next,
		pending: make(map[string]*pendingSearch),
	}
}

// ResolveValues implements ValuesResolver.
func (d *Debouncer) ResolveValues(ctx context.Context, ep *inputspec.ValuesEndpoint, p Params) (*Result, error) {
	if ep == nil || ep.DebounceMs <= 0 || p.Search == "" {
		return d.next.ResolveValues(ctx, ep, p)
	}

	key := fmt.Sprintf("%s|%d|%d", endpointKey(ep), p.Page, p.Limit)
	w := d.register(key)

	timer := time.NewTimer(time.Duration(ep.DebounceMs) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-w.superseded:
		return nil, ErrSuperseded
	case <-ctx.Done():
		d.claim(key, w)
		return nil, &ResolverError{URI: ep.URI, Err: ctx.Err()}
	case <-timer.C:
	}

	if !d.claim(key, w) {
		return nil, ErrSuperseded
	}
	return d.next.ResolveValues(ctx, ep, p)
}

func (d *Debouncer) register(key string) *pendingSearch {
	d.mu.Lock()
	defer d.mu.Unlock()
	if prev, ok := d.pending[key]; ok {
		close(prev.superseded)
	}
	w := &pendingSearch{superseded: make(chan struct{})}
	d.pending[key] = w
	return w
}

// claim removes w from the pending set and reports whether it was still
// the latest search for key.
func (d *Debouncer) claim(key string, w *pendingSearch) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending[key] != w {
		return false
	}
	delete(d.pending, key)
	return true
}
