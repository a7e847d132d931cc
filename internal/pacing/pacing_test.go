package pacing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, Fixed(2*time.Second).Duration())
	assert.Equal(t, time.Duration(0), Delay{}.Duration())
	assert.Equal(t, time.Duration(0), Fixed(-time.Second).Duration())

	d := Jittered(3*time.Second, 7*time.Second)
	for range 100 {
		got := d.Duration()
		assert.GreaterOrEqual(t, got, 3*time.Second)
		assert.LessOrEqual(t, got, 7*time.Second)
	}
}

func TestWaitZero(t *testing.T) {
	start := time.Now()
	assert.NoError(t, Delay{}.Wait(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestWaitShort(t *testing.T) {
	start := time.Now()
	assert.NoError(t, Fixed(20*time.Millisecond).Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Fixed(time.Hour).Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
