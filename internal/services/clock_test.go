package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonotonicClock_NeverGoesBackwards(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	readings := []time.Time{
		base,
		base.Add(-time.Minute),
		base.Add(time.Second),
		base.Add(500 * time.Millisecond),
	}
	i := 0
	clock := &MonotonicClock{now: func() time.Time {
		t := readings[i]
		i++
		return t
	}}

	assert.Equal(t, base, clock.Now())
	assert.Equal(t, base, clock.Now())
	assert.Equal(t, base.Add(time.Second), clock.Now())
	assert.Equal(t, base.Add(time.Second), clock.Now())
}

func TestMonotonicClock_TruncatesToMicroseconds(t *testing.T) {
	clock := &MonotonicClock{now: func() time.Time {
		return time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.FixedZone("X", 3600))
	}}

	got := clock.Now()
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 123456000, got.Nanosecond())
}
