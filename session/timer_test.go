package session

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerStopsWhenTickReturnsFalse(t *testing.T) {
	var ticks atomic.Int32

	startTicker(time.Millisecond, func() bool {
		return ticks.Add(1) < 3
	})

	deadline := time.After(time.Second)
	for ticks.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("ticker never reached three ticks")
		case <-time.After(time.Millisecond):
		}
	}

	time.Sleep(20 * time.Millisecond)
	if got := ticks.Load(); got != 3 {
		t.Fatalf("ticker kept running after tick returned false: %d ticks", got)
	}
}

func TestTickerHaltIsIdempotent(t *testing.T) {
	var ticks atomic.Int32

	tk := startTicker(time.Millisecond, func() bool {
		ticks.Add(1)
		return true
	})

	tk.halt()
	tk.halt()
	(*ticker)(nil).halt() // nil receiver is a no-op

	settled := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if got := ticks.Load(); got > settled+1 {
		t.Fatalf("ticker kept running after halt: %d -> %d ticks", settled, got)
	}
}
