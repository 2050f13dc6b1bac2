package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/tags", r.URL.Path)
		assert.Equal(t, "ta", r.URL.Query().Get("q"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"value":"tag1","label":"Tag 1"}]}`))
	}))
	defer server.Close()

	c := New(WithHeader("X-Api-Key", "secret"))
	resp, err := c.Do(context.Background(), &Request{URL: server.URL + "/tags?q=ta"})
	require.NoError(t, err)
	assert.True(t, resp.OK())

	doc, err := resp.JSON()
	require.NoError(t, err)
	data := doc.(map[string]any)["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "tag1", data[0].(map[string]any)["value"])
}

func TestClient_PostBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"search":"x"}`, string(body))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	resp, err := New().Do(context.Background(), &Request{
		URL:    server.URL,
		Method: http.MethodPost,
		Body:   []byte(`{"search":"x"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestClient_NonSuccessStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	resp, err := New().Do(context.Background(), &Request{URL: server.URL})
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
}

func TestClient_Cancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New().Do(ctx, &Request{URL: server.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_MaxBodyBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer server.Close()

	_, err := New(WithMaxBodyBytes(4), WithTimeout(time.Second)).Do(context.Background(), &Request{URL: server.URL})
	require.ErrorIs(t, err, ErrBodyTooLarge)
	assert.Contains(t, err.Error(), "exceeds 4 bytes")

	resp, err := New(WithMaxBodyBytes(10), WithTimeout(time.Second)).Do(context.Background(), &Request{URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(resp.Body))
}

func TestResponse_JSONInvalid(t *testing.T) {
	_, err := (&Response{Status: 200, Body: []byte("not json")}).JSON()
	assert.Error(t, err)
}

func TestDoerFunc(t *testing.T) {
	var d Doer = DoerFunc(func(ctx context.Context, req *Request) (*Response, error) {
		return &Response{Status: 204}, nil
	})
	resp, err := d.Do(context.Background(), &Request{URL: "http://example.invalid"})
	require.NoError(t, err)
	assert.Equal(t, 204, resp.Status)
}
