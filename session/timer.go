package session

import (
	"sync"
	"time"
)

// ticker invokes tick at a fixed interval until tick returns false or halt
// is called. At most one ticker runs per session; starting a new round
// always halts the previous one first.
type ticker struct {
	stop chan struct{}
	once sync.Once
}

func startTicker(interval time.Duration, tick func() bool) *ticker {
	t := &ticker{stop: make(chan struct{})}

	go func() {
		clock := time.NewTicker(interval)
		defer clock.Stop()

		for {
			select {
			case <-t.stop:
				return
			case <-clock.C:
				if !tick() {
					return
				}
			}
		}
	}()

	return t
}

// halt stops the ticker. Safe to call repeatedly and after the ticker has
// already stopped itself.
func (t *ticker) halt() {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.stop) })
}
