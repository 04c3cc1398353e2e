package service

import (
	"sync"
	"time"
)

// Scheduler abstracts one-shot and repeating timers so the accrual and
// session logic can be driven by virtual time in tests. Cancel functions
// are idempotent: cancelling an already-fired or already-cancelled task
// is a no-op.
type Scheduler interface {
	// After runs fn once after d.
	After(d time.Duration, fn func()) (cancel func())
	// Every runs fn repeatedly with period d until cancelled.
	Every(d time.Duration, fn func()) (cancel func())
}

// WallScheduler schedules against real wall-clock timers.
type WallScheduler struct{}

func NewWallScheduler() WallScheduler {
	return WallScheduler{}
}

func (WallScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	var once sync.Once
	return func() {
		once.Do(func() { t.Stop() })
	}
}

func (WallScheduler) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}
