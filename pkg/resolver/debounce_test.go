package resolver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/inputspec-mcp/pkg/inputspec"
)

type recordingResolver struct {
	calls    atomic.Int32
	searches chan string
}

func (r *recordingResolver) ResolveValues(ctx context.Context, ep *inputspec.ValuesEndpoint, p Params) (*Result, error) {
	r.calls.Add(1)
	if r.searches != nil {
		r.searches <- p.Search
	}
	return &Result{Values: []inputspec.ValueAlias{{Value: p.Search, Label: p.Search}}}, nil
}

func debounced(ms int) *inputspec.ValuesEndpoint {
	ep := remote("https://api.example.com/search")
	ep.DebounceMs = ms
	return ep
}

func TestDebouncer_SupersedesPendingSearch(t *testing.T) {
	next := &recordingResolver{searches: make(chan string, 4)}
	d := NewDebouncer(next)
	ep := debounced(80)

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = d.ResolveValues(context.Background(), ep, Params{Search: "t"})
	}()

	time.Sleep(20 * time.Millisecond)
	res, err := d.ResolveValues(context.Background(), ep, Params{Search: "ta"})
	wg.Wait()

	require.NoError(t, err)
	assert.Equal(t, "ta", res.Values[0].Value)
	assert.ErrorIs(t, firstErr, ErrSuperseded)
	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, "ta", <-next.searches)
}

func TestDebouncer_PassThrough(t *testing.T) {
	next := &recordingResolver{}
	d := NewDebouncer(next)

	_, err := d.ResolveValues(context.Background(), debounced(0), Params{Search: "x"})
	require.NoError(t, err)
	_, err = d.ResolveValues(context.Background(), debounced(1000), Params{})
	require.NoError(t, err)

	assert.Equal(t, int32(2), next.calls.Load())
}

func TestDebouncer_Waits(t *testing.T) {
	next := &recordingResolver{}
	d := NewDebouncer(next)

	start := time.Now()
	_, err := d.ResolveValues(context.Background(), debounced(40), Params{Search: "abc"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestDebouncer_Cancellation(t *testing.T) {
	next := &recordingResolver{}
	d := NewDebouncer(next)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.ResolveValues(ctx, debounced(1000), Params{Search: "abc"})
	var rerr *ResolverError
	require.True(t, errors.As(err, &rerr))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), next.calls.Load())
}
