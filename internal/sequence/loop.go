package sequence

import (
	"context"
	"sync"
	"time"
)

// Loop runs a tick function on a fixed interval in its own goroutine.
// Start replaces any running ticker, which is how an fps change takes
// effect. The zero value is ready to use.
type Loop struct {
	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	interval time.Duration
}

// Start stops the current ticker, if any, and starts a new one. tick runs
// once per interval until it returns false or Stop is called. Missed ticks
// are dropped.
func (l *Loop) Start(interval time.Duration, tick func() bool) {
	l.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	l.mu.Lock()
	l.cancel = cancel
	l.done = done
	l.interval = interval
	l.mu.Unlock()

	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if ctx.Err() != nil || !tick() {
					return
				}
			}
		}
	}()
}

// Stop cancels the ticker and waits for the goroutine to exit. tick must not
// call Stop.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.interval = 0
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether a ticker goroutine is alive.
func (l *Loop) Running() bool {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Interval returns the period of the running ticker, or 0.
func (l *Loop) Interval() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.interval
}
