package services

import (
	"testing"
	"time"
)

func TestCountdownExpires(t *testing.T) {
	fired := make(chan struct{})
	c := StartCountdown(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("countdown never expired")
	}
	if !c.Stopped() {
		t.Error("Stopped() = false after expiry")
	}
}

func TestCountdownStopPreventsExpiry(t *testing.T) {
	fired := make(chan struct{})
	c := StartCountdown(20*time.Millisecond, func() { close(fired) })
	c.Stop()

	select {
	case <-fired:
		t.Fatal("expire callback ran after Stop")
	case <-time.After(100 * time.Millisecond):
	}
	if !c.Stopped() {
		t.Error("Stopped() = false after Stop")
	}

	// Stop is idempotent, also after the timer would have fired.
	c.Stop()
	c.Stop()
}

func TestCountdownStopAfterExpiry(t *testing.T) {
	fired := make(chan struct{})
	c := StartCountdown(5*time.Millisecond, func() { close(fired) })

	<-fired
	c.Stop()
	if !c.Stopped() {
		t.Error("Stopped() = false")
	}
}
