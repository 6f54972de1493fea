package services

import (
	"sync"
	"time"
)

// Countdown is a single cancellable question timer. Expiry and Stop are
// mutually exclusive: once Stop returns, the expire callback will never run.
type Countdown struct {
	timer *time.Timer
	mu    sync.Mutex
	done  bool
}

// StartCountdown schedules expire after d. The callback runs on its own
// goroutine.
func StartCountdown(d time.Duration, expire func()) *Countdown {
	c := &Countdown{}
	c.timer = time.AfterFunc(d, func() {
		c.mu.Lock()
		if c.done {
			c.mu.Unlock()
			return
		}
		c.done = true
		c.mu.Unlock()
		expire()
	})
	return c
}

// Stop cancels the countdown. It is safe to call more than once and after
// expiry.
func (c *Countdown) Stop() {
	c.mu.Lock()
	already := c.done
	c.done = true
	c.mu.Unlock()
	if !already {
		c.timer.Stop()
	}
}

// Stopped reports whether the countdown has fired or been cancelled.
func (c *Countdown) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}
