package pausableticker

import (
	"sync/atomic"
	"time"

	"github.com/sasha-s/go-deadlock"
)

// Ticker delivers ticks on C like time.Ticker and can be paused. Ticks that
// arrive while paused, or while the reader is behind, are dropped.
type Ticker struct {
	C <-chan time.Time // The channel on which the ticks are delivered.

	deadlock.Mutex
	paused atomic.Bool
	stop   chan struct{}
	done   chan struct{}
	ticker *time.Ticker
}

func New(d time.Duration) *Ticker {
	c := make(chan time.Time, 1)

	t := &Ticker{
		C:      c,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		ticker: time.NewTicker(d),
	}

	go t.run(c)

	return t
}

func (t *Ticker) run(c chan<- time.Time) {
	defer close(t.done)
	defer t.ticker.Stop()

	for {
		select {
		case now := <-t.ticker.C:
			if t.paused.Load() {
				continue
			}
			select {
			case c <- now:
			default:
			}
		case <-t.stop:
			return
		}
	}
}

// Pause stops delivering ticks. It returns false if already paused.
func (t *Ticker) Pause() bool {
	t.Lock()
	defer t.Unlock()

	return t.paused.CompareAndSwap(false, true)
}

func (t *Ticker) Paused() bool {
	return t.paused.Load()
}

// Resume continues delivering ticks. It returns false if not paused.
func (t *Ticker) Resume() bool {
	t.Lock()
	defer t.Unlock()

	return t.paused.CompareAndSwap(true, false)
}

// Toggle flips between paused and running and returns whether the ticker is
// now paused.
func (t *Ticker) Toggle() bool {
	t.Lock()
	defer t.Unlock()

	paused := !t.paused.Load()
	t.paused.Store(paused)
	return paused
}

func (t *Ticker) Stop() {
	t.Lock()
	defer t.Unlock()

	if t.stop != nil {
		close(t.stop)
		<-t.done
		t.stop = nil
	}
}

func (t *Ticker) Stopped() bool {
	t.Lock()
	defer t.Unlock()

	return t.stop == nil
}
