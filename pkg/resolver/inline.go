package resolver

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/usestring/inputspec-mcp/internal/search"
	"github.com/usestring/inputspec-mcp/pkg/inputspec"
)

// resolveInline filters the embedded values by label and slices the page
// locally. Without an explicit or default limit every match is returned.
func (r *Resolver) resolveInline(ep *inputspec.ValuesEndpoint, p Params) *Result {
	matches := r.inlineIndex(ep.Values).Search(p.Search)

	total := len(matches)
	res := &Result{Total: &total}

	limit := p.Limit
	if limit <= 0 && ep.RequestParams != nil {
		limit = ep.RequestParams.DefaultLimit
	}
	start, end := 0, total
	if limit > 0 {
		page := effectivePage(p)
		// Pages past the end are empty; the check keeps the product from
		// overflowing.
		start = total
		if page-1 <= total/limit {
			start = min((page-1)*limit, total)
		}
		end = min(start+limit, total)
		res.Page = &page
		res.HasNext = end < total
	}

	res.Values = make([]inputspec.ValueAlias, 0, end-start)
	for _, pos := range matches[start:end] {
		res.Values = append(res.Values, ep.Values[pos])
	}
	return res
}

// inlineIndex returns the label index for values, building it on first use.
func (r *Resolver) inlineIndex(values []inputspec.ValueAlias) *search.Index {
	labels := make([]string, len(values))
	h := sha256.New()
	for i, v := range values {
		labels[i] = v.Label
		if labels[i] == "" {
			labels[i] = printValue(v.Value)
		}
		h.Write([]byte(labels[i]))
		h.Write([]byte{0})
	}
	key := hex.EncodeToString(h.Sum(nil))

	if ix, ok := r.indexes.Get(key); ok {
		return ix
	}
	ix := search.NewIndex(labels)
	r.indexes.Add(key, ix)
	return ix
}
