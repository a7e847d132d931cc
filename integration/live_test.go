
//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"trendprobe/internal/app"
	"trendprobe/internal/config"
	"trendprobe/internal/models"
)

// These hit the real upstreams (subject to change / rate limiting) and only check
// that the services always answer with something usable.

func TestLiveTrending(t *testing.T) {
	a := app.New(config.FromEnv(), zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	out := a.Trends.FetchTrending(ctx, "US", 5)
	if len(out) == 0 || len(out) > 5 {
		t.Fatalf("expected 1..5 records, got %d", len(out))
	}
	for _, r := range out {
		if r.Score < 0 || r.Score > 100 {
			t.Errorf("score out of range: %+v", r)
		}
	}
}

func TestLiveHistoricalPattern(t *testing.T) {
	a := app.New(config.FromEnv(), zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res := a.Ngram.FetchHistoricalPattern(ctx, "artificial intelligence", 1900, 2019, 3)
	if res.Status != models.StatusSuccess {
		t.Skipf("skipping: ngram page not parsed (status %s)", res.Status)
	}
	if res.HistoricalAnalysis.Pattern != models.PatternCyclical {
		t.Errorf("expected cyclical, got %s", res.HistoricalAnalysis.Pattern)
	}
}
