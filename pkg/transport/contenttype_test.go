package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		contentType string
		want        Category
	}{
		{"application/json", JSON},
		{"application/json; charset=utf-8", JSON},
		{"application/vnd.api+json", JSON},
		{"text/html; charset=UTF-8", HTML},
		{"application/xhtml+xml", HTML},
		{"application/xml", XML},
		{"text/xml", XML},
		{"text/plain", Text},
		{"TEXT/PLAIN;;", Text},
		{"application/octet-stream", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.contentType))
		})
	}
}

func TestResponseJSON_RejectsMarkup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>Sign in</body></html>"))
	}))
	defer server.Close()

	resp, err := New().Do(context.Background(), &Request{URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, "text/html", resp.ContentType)

	_, err = resp.JSON()
	require.ErrorIs(t, err, ErrNotJSON)
}

func TestResponseJSON_PlainTextStillDecoded(t *testing.T) {
	resp := &Response{Status: http.StatusOK, ContentType: "text/plain", Body: []byte(`["a"]`)}
	doc, err := resp.JSON()
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, doc)
}
