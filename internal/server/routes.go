package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"trendprobe/internal/app"
	"trendprobe/internal/ngram"
)

// routeTimeout bounds one handler, pacing delays included.
const routeTimeout = 90 * time.Second

// NewHandler exposes the retrieval services over HTTP. Upstream failures are
// already folded into fallback payloads, so handlers only fail on bad input.
func NewHandler(a *app.App, rl *RateLimiter, l zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	api := http.NewServeMux()

	// GET /trending?region=US&limit=10&enrich=1
	api.HandleFunc("GET /trending", func(w http.ResponseWriter, r *http.Request) {
		limit, ok := intParam(w, r, "limit", 0)
		if !ok {
			return
		}
		enrich, ok := boolParam(w, r, "enrich")
		if !ok {
			return
		}
		ctx, cancel := withRouteTimeout(r)
		defer cancel()
		records := a.Trends.FetchTrending(ctx, r.URL.Query().Get("region"), limit)
		if enrich {
			records = a.Ngram.EnhanceTrending(ctx, records)
		}
		writeJSON(w, http.StatusOK, records)
	})

	// GET /interest?keywords=a,b&timeframe=today+3-m&region=US
	api.HandleFunc("GET /interest", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		keywords := splitList(q.Get("keywords"))
		if len(keywords) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "keywords required"})
			return
		}
		ctx, cancel := withRouteTimeout(r)
		defer cancel()
		writeJSON(w, http.StatusOK, a.Trends.FetchInterestOverTime(ctx, keywords, q.Get("timeframe"), q.Get("region")))
	})

	// GET /related?keyword=x&region=US
	api.HandleFunc("GET /related", func(w http.ResponseWriter, r *http.Request) {
		keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
		if keyword == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "keyword required"})
			return
		}
		ctx, cancel := withRouteTimeout(r)
		defer cancel()
		writeJSON(w, http.StatusOK, a.Trends.FetchRelatedQueries(ctx, keyword, r.URL.Query().Get("region")))
	})

	api.HandleFunc("GET /business", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := withRouteTimeout(r)
		defer cancel()
		writeJSON(w, http.StatusOK, a.Trends.FetchBusinessTrends(ctx))
	})

	// GET /history?term=x&start=1900&end=2019&smoothing=3
	api.HandleFunc("GET /history", func(w http.ResponseWriter, r *http.Request) {
		term := strings.TrimSpace(r.URL.Query().Get("term"))
		if term == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "term required"})
			return
		}
		start, ok := intParam(w, r, "start", ngram.DefaultStartYear)
		if !ok {
			return
		}
		end, ok := intParam(w, r, "end", ngram.DefaultEndYear)
		if !ok {
			return
		}
		smoothing, ok := intParam(w, r, "smoothing", ngram.DefaultSmoothing)
		if !ok {
			return
		}
		ctx, cancel := withRouteTimeout(r)
		defer cancel()
		writeJSON(w, http.StatusOK, a.Ngram.FetchHistoricalPattern(ctx, term, start, end, smoothing))
	})

	// GET /context?terms=a,b,c
	api.HandleFunc("GET /context", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := withRouteTimeout(r)
		defer cancel()
		writeJSON(w, http.StatusOK, a.Ngram.SummarizeTrendContext(ctx, splitList(r.URL.Query().Get("terms"))))
	})

	mux.Handle("/", rl.Middleware(api))

	return logRequest(l, routeOf(mux, api), mux)
}

// routeOf labels a request with the path of the pattern that serves it. Requests
// no handler matches share the "unmatched" label.
func routeOf(mux, api *http.ServeMux) func(*http.Request) string {
	return func(r *http.Request) string {
		if _, p := mux.Handler(r); p != "" && p != "/" {
			return patternPath(p)
		}
		if _, p := api.Handler(r); p != "" {
			return patternPath(p)
		}
		return "unmatched"
	}
}

func patternPath(pattern string) string {
	if _, path, ok := strings.Cut(pattern, " "); ok {
		return path
	}
	return pattern
}

func withRouteTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), routeTimeout)
}

func intParam(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return 0, false
	}
	return n, true
}

func boolParam(w http.ResponseWriter, r *http.Request, name string) (bool, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return false, false
	}
	return b, true
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
