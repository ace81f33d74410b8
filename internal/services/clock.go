package services

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// MonotonicClock не выдает время раньше уже выданного, даже если системные
// часы ушли назад. Время в UTC с точностью до микросекунд, как в Postgres.
type MonotonicClock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{now: time.Now}
}

func (c *MonotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}
