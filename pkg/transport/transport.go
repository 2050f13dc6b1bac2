// Package transport is the minimal HTTP capability the values resolver
// depends on.
//
// Anything that satisfies Doer can be injected: the net/http based Client in
// this package, a framework client, or a test double.
//
//	c := transport.New(transport.WithTimeout(5 * time.Second))
//	resp, err := c.Do(ctx, &transport.Request{URL: "https://api.example.com/tags", Method: "GET"})
package transport

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
)

// Request is one outgoing HTTP call.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    []byte
}

// Response is the status and raw body of a completed call.
type Response struct {
	Status      int
	ContentType string // Content-Type header, empty when absent
	Body        []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// JSON decodes the body into a generic value (maps, slices, float64,
// string, bool, nil). HTML and XML bodies fail with ErrNotJSON.
func (r *Response) JSON() (any, error) {
	if err := checkDecodable(r.ContentType); err != nil {
		return nil, err
	}
	var v any
	if err := sonic.Unmarshal(r.Body, &v); err != nil {
		return nil, fmt.Errorf("decoding response body: %w", err)
	}
	return v, nil
}

// Doer issues a single HTTP request. Implementations return an error only
// for transport failures; non-2xx statuses are reported in the Response.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(ctx context.Context, req *Request) (*Response, error)

// Do calls f.
func (f DoerFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
