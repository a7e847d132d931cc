
package crawler

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Response is a fully read upstream body.
type Response struct {
	Body        []byte
	FinalURL    string
	ContentType string
	Elapsed     time.Duration
}

// HTTPClient is built once per process and never mutated afterwards.
type HTTPClient struct {
	client    *http.Client
	sizeCap   int64
	userAgent string
	language  string
}

func NewHTTPClient(timeout, dialTimeout time.Duration, sizeCap int64, userAgent, language string) *HTTPClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		sizeCap:   sizeCap,
		userAgent: userAgent,
		language:  language,
	}
}

// Get fetches rawURL with query params and returns the body when its media type is
// one of accept. An empty accept list allows anything.
func (h *HTTPClient) Get(ctx context.Context, rawURL string, params url.Values, accept ...string) (*Response, error) {
	start := time.Now()
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, ErrRejectedParameters)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", ErrUnavailable)
	}
	if len(accept) > 0 {
		req.Header.Set("Accept", strings.Join(accept, ",")+",*/*;q=0.8")
	}
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", h.userAgent)
	if h.language != "" {
		req.Header.Set("Accept-Language", h.language)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: http status %d", ErrRejectedParameters, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: http status %d", ErrUnavailable, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", ErrMalformedResponse, err)
		}
		defer gz.Close()
		body = gz
	}

	contentType := resp.Header.Get("Content-Type")
	if !acceptable(contentType, accept) {
		return nil, fmt.Errorf("%w: unexpected content type %q", ErrMalformedResponse, contentType)
	}

	// enforce a size cap
	data, err := io.ReadAll(io.LimitReader(body, h.sizeCap))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	return &Response{
		Body:        data,
		FinalURL:    resp.Request.URL.String(),
		ContentType: contentType,
		Elapsed:     time.Since(start),
	}, nil
}

// acceptable lets an empty Content-Type through since some upstreams omit it.
func acceptable(contentType string, accept []string) bool {
	if len(accept) == 0 || contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, a := range accept {
		if strings.EqualFold(mediaType, a) {
			return true
		}
	}
	return false
}
