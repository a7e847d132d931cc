package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendprobe/internal/app"
	"trendprobe/internal/config"
	"trendprobe/internal/metrics"
	"trendprobe/internal/models"
)

func newTestHandler(t *testing.T, rps float64, burst int) http.Handler {
	t.Helper()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ngrams/graph":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<script>var data = [{"ngram":"x","timeseries":[1]}];</script>`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	t.Cleanup(up.Close)

	cfg := config.Config{
		TrendsBaseURL:   up.URL,
		NgramBaseURL:    up.URL,
		UserAgent:       "trendprobe-test/1.0",
		TrendsTimeout:   2 * time.Second,
		NgramTimeout:    2 * time.Second,
		DialTimeout:     time.Second,
		ResponseSizeCap: 1 << 20,
		NgramCorpus:     26,
	}
	return NewHandler(app.New(cfg, zerolog.Nop()), NewRateLimiter(rps, burst), zerolog.Nop())
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(newTestHandler(t, 100, 100), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTrendingFallsBack(t *testing.T) {
	rec := get(newTestHandler(t, 100, 100), "/trending?region=US&limit=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var recs []models.ResultRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recs))
	require.Len(t, recs, 3)
	assert.Equal(t, "Google Trends - Trending (Fallback)", recs[0].Source)
}

func TestTrendingEnrich(t *testing.T) {
	rec := get(newTestHandler(t, 100, 100), "/trending?enrich=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var recs []models.ResultRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recs))
	require.Len(t, recs, 3)
	for _, r := range recs {
		require.NotNil(t, r.Historical, r.Title)
	}
	assert.Equal(t, models.PatternEmerging, recs[0].Historical.Pattern)
	assert.Equal(t, models.PatternExponential, recs[2].Historical.Pattern)
}

func TestMetricsLabelUnmatchedPaths(t *testing.T) {
	h := newTestHandler(t, 100, 100)
	unmatched := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	health := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/health", "200")
	before, beforeHealth := testutil.ToFloat64(unmatched), testutil.ToFloat64(health)

	assert.Equal(t, http.StatusNotFound, get(h, "/wp-admin/setup.php").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/random-1234").Code)
	get(h, "/health")

	assert.Equal(t, before+2, testutil.ToFloat64(unmatched))
	assert.Equal(t, beforeHealth+1, testutil.ToFloat64(health))
}

func TestRouteOf(t *testing.T) {
	mux, api := http.NewServeMux(), http.NewServeMux()
	mux.HandleFunc("GET /health", func(http.ResponseWriter, *http.Request) {})
	api.HandleFunc("GET /trending", func(http.ResponseWriter, *http.Request) {})
	mux.Handle("/", api)
	route := routeOf(mux, api)

	for target, want := range map[string]string{
		"/health":           "/health",
		"/trending?limit=3": "/trending",
		"/trending/extra":   "unmatched",
		"/wp-login.php?x=1": "unmatched",
	} {
		assert.Equal(t, want, route(httptest.NewRequest(http.MethodGet, target, nil)), target)
	}
}

func TestBadInput(t *testing.T) {
	h := newTestHandler(t, 100, 100)
	for _, target := range []string{
		"/trending?limit=abc",
		"/interest",
		"/related?keyword=%20",
		"/history",
		"/history?term=ai&start=year",
		"/trending?enrich=maybe",
	} {
		rec := get(h, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestHistory(t *testing.T) {
	rec := get(newTestHandler(t, 100, 100), "/history?term=Sustainability")
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.HistoricalResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "sustainability", res.Term)
	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, models.PatternMatureGrowth, res.HistoricalAnalysis.Pattern)
}

func TestContext(t *testing.T) {
	rec := get(newTestHandler(t, 100, 100), "/context")
	require.Equal(t, http.StatusOK, rec.Code)

	var tc models.TrendContext
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tc))
	assert.Equal(t, "Mixed trend maturity - strategic timing analysis recommended", tc.StrategicSummary)
}

func TestRateLimit(t *testing.T) {
	h := newTestHandler(t, 0.001, 1)
	assert.Equal(t, http.StatusOK, get(h, "/context").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(h, "/context").Code)
	// health and metrics are not throttled
	assert.Equal(t, http.StatusOK, get(h, "/health").Code)
	assert.Equal(t, http.StatusOK, get(h, "/metrics").Code)
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.get("10.0.0.1")
	rl.Cleanup(time.Hour)
	assert.Len(t, rl.visitors, 1)
	rl.Cleanup(0)
	assert.Empty(t, rl.visitors)
}
