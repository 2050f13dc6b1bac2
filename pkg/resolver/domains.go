package resolver

import (
	"slices"
	"sync"

	"github.com/usestring/inputspec-mcp/pkg/inputspec"
	"github.com/usestring/inputspec-mcp/pkg/validation"
)

var _ validation.DomainLookup = (*Domains)(nil)

// Domains holds the complete value domains of remote endpoints observed by a
// Resolver. The validator consults it for CLOSED membership; endpoints whose
// full listing has not been seen are reported as unresolved.
type Domains struct {
	mu         sync.RWMutex
	byEndpoint map[string][]inputspec.ValueAlias
}

// NewDomains creates an empty registry.
func NewDomains() *Domains {
	return &Domains{byEndpoint: make(map[string][]inputspec.ValueAlias)}
}

// Record stores values as the full domain of ep.
func (d *Domains) Record(ep *inputspec.ValuesEndpoint, values []inputspec.ValueAlias) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byEndpoint[endpointKey(ep)] = slices.Clone(values)
}

// Forget drops the recorded domain of ep.
func (d *Domains) Forget(ep *inputspec.ValuesEndpoint) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.byEndpoint, endpointKey(ep))
}

// Domain implements validation.DomainLookup. INLINE endpoints are always
// resolved.
func (d *Domains) Domain(ep *inputspec.ValuesEndpoint) ([]inputspec.ValueAlias, bool) {
	if ep == nil {
		return nil, false
	}
	if ep.Protocol == inputspec.ProtocolInline {
		return ep.Values, true
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	values, ok := d.byEndpoint[endpointKey(ep)]
	return values, ok
}
