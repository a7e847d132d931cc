package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"trendprobe/internal/crawler"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "rejected", Outcome(fmt.Errorf("geo: %w", crawler.ErrRejectedParameters)))
	assert.Equal(t, "malformed", Outcome(fmt.Errorf("x: %w", crawler.ErrMalformedResponse)))
	assert.Equal(t, "unavailable", Outcome(fmt.Errorf("x: %w", crawler.ErrUnavailable)))
	assert.Equal(t, "unavailable", Outcome(context.DeadlineExceeded))
	assert.Equal(t, "unavailable", Outcome(errors.New("boom")))
}

func TestObserveUpstream(t *testing.T) {
	c := UpstreamRequestsTotal.WithLabelValues("test", "observe", "rejected")
	before := testutil.ToFloat64(c)
	ObserveUpstream("test", "observe", 0.1, crawler.ErrRejectedParameters)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
