package clock

import (
	"fmt"
)

// Tick counts frames of game time.
type Tick int64

// TicksPerSecond is the frame rate game time advances at.
const TicksPerSecond = 60

// Second is one second of game time.
const Second Tick = TicksPerSecond

func (t Tick) String() string {
	return fmt.Sprintf("%d", int64(t))
}

// Signal is the read-only view of the game clock the scheduler consumes.
type Signal interface {
	// Whether a match is currently in progress.
	Active() bool
	Time() Tick
	// Whether the current (or last) match has ended.
	Ended() bool
	// The tick the match ended at. Only meaningful when Ended is true.
	EndTime() Tick
}
