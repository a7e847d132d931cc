
package crawler

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *HTTPClient {
	return NewHTTPClient(5*time.Second, 2*time.Second, 1024, "trendprobe-test/1.0", "en-US")
}

func TestGetHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "books", r.URL.Query().Get("content"))
		assert.Equal(t, "trendprobe-test/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(200)
		_, _ = w.Write([]byte("<html><title>x</title></html>"))
	}))
	defer ts.Close()

	resp, err := newTestClient().Get(context.Background(), ts.URL, url.Values{"content": {"books"}}, "text/html")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.FinalURL)
	assert.Equal(t, "text/html", resp.ContentType)
	assert.Contains(t, string(resp.Body), "<title>x</title>")
}

func TestGetGzip(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(`{"ok":true}`))
		_ = gz.Close()
	}))
	defer ts.Close()

	resp, err := newTestClient().Get(context.Background(), ts.URL, nil, "application/json")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
}

func TestGetRejectsUnexpectedContentType(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(200)
		w.Write([]byte("{}"))
	}))
	defer ts.Close()

	_, err := newTestClient().Get(context.Background(), ts.URL, nil, "text/html")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestGetClassifiesStatus(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrRejectedParameters},
		{http.StatusNotFound, ErrRejectedParameters},
		{http.StatusTooManyRequests, ErrUnavailable},
		{http.StatusInternalServerError, ErrUnavailable},
	}
	for _, tc := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		_, err := newTestClient().Get(context.Background(), ts.URL, nil)
		ts.Close()
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
	}
}

func TestGetUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := ts.URL
	ts.Close()

	_, err := newTestClient().Get(context.Background(), addr, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGetSizeCap(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 4096))
	}))
	defer ts.Close()

	resp, err := newTestClient().Get(context.Background(), ts.URL, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Body, 1024)
}

func TestGetInvalidURL(t *testing.T) {
	_, err := newTestClient().Get(context.Background(), "not a url", nil)
	assert.ErrorIs(t, err, ErrRejectedParameters)
}
