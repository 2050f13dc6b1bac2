package resolver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/usestring/inputspec-mcp/pkg/inputspec"
	"github.com/usestring/inputspec-mcp/pkg/transport"
)

// DefaultLimit is the page size used when neither the caller nor the
// endpoint's requestParams name one.
const DefaultLimit = 50

// defaultSearchParam is sent when the endpoint names neither a searchParam
// nor a searchField.
const defaultSearchParam = "search"

func effectivePage(p Params) int {
	if p.Page > 0 {
		return p.Page
	}
	return 1
}

func effectiveLimit(ep *inputspec.ValuesEndpoint, p Params) int {
	if p.Limit > 0 {
		return p.Limit
	}
	if ep.RequestParams != nil && ep.RequestParams.DefaultLimit > 0 {
		return ep.RequestParams.DefaultLimit
	}
	return DefaultLimit
}

// queryParams returns the parameters sent to a remote endpoint. Static
// searchParams come first and are overridden by dynamic ones.
func queryParams(ep *inputspec.ValuesEndpoint, p Params) map[string]any {
	params := make(map[string]any)
	rp := ep.RequestParams
	if rp == nil {
		rp = &inputspec.RequestParams{}
	}

	for k, v := range rp.SearchParams {
		params[k] = v
	}

	if ep.EffectivePagination() == inputspec.PaginationPageNumber && rp.PageParam != "" {
		params[rp.PageParam] = effectivePage(p)
	}
	if rp.LimitParam != "" {
		params[rp.LimitParam] = effectiveLimit(ep, p)
	}
	if p.Search != "" {
		name := rp.SearchParam
		if name == "" {
			name = ep.SearchField
		}
		if name == "" {
			name = defaultSearchParam
		}
		params[name] = p.Search
	}
	return params
}

func encodeParams(params map[string]any) string {
	values := make(url.Values, len(params))
	for k, v := range params {
		values.Set(k, fmt.Sprint(v))
	}
	return values.Encode()
}

// buildRequest turns an endpoint and caller params into an HTTP request:
// query string for GET, JSON body for POST.
func buildRequest(ep *inputspec.ValuesEndpoint, p Params) (*transport.Request, error) {
	params := queryParams(ep, p)
	method := ep.EffectiveMethod()

	if method == inputspec.MethodPost {
		body, err := sonic.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		return &transport.Request{
			URL:     ep.URI,
			Method:  method,
			Headers: map[string]string{"Content-Type": "application/json"},
			Body:    body,
		}, nil
	}

	u, err := url.Parse(ep.URI)
	if err != nil {
		return nil, fmt.Errorf("parsing uri: %w", err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			q.Set(k, fmt.Sprint(v))
		}
		u.RawQuery = q.Encode()
	}
	return &transport.Request{URL: u.String(), Method: method}, nil
}

// endpointKey identifies an endpoint independently of search or page state.
func endpointKey(ep *inputspec.ValuesEndpoint) string {
	sum := sha256.Sum256([]byte(ep.EffectiveMethod() + " " + ep.URI))
	return hex.EncodeToString(sum[:8])
}

// CacheKey derives the cache key for a request deterministically from the
// endpoint uri, method and the normalized parameters actually sent. Keys
// share an endpoint prefix so one endpoint's pages can be dropped together.
func CacheKey(ep *inputspec.ValuesEndpoint, p Params) string {
	var b strings.Builder
	b.WriteString(ep.EffectiveMethod())
	b.WriteByte('\n')
	b.WriteString(ep.URI)
	b.WriteByte('\n')
	b.WriteString(encodeParams(queryParams(ep, p)))
	sum := sha256.Sum256([]byte(b.String()))
	return endpointKey(ep) + "|" + hex.EncodeToString(sum[:])
}
