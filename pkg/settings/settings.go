package settings

import (
	opt "github.com/repeale/fp-go/option"

	"github.com/Metroynome/deadlocked-patch/pkg/clock"
)

// Game holds the settings of the current game session.
type Game struct {
	// The tick the last match started at. Zero means no match has started
	// this session.
	StartTime clock.Tick
}

func (g *Game) Started() bool {
	return g.StartTime > 0
}

// Available wraps settings that are present this frame.
func Available(g *Game) opt.Option[*Game] {
	if g == nil {
		return opt.None[*Game]()
	}
	return opt.Some(g)
}

func Unavailable() opt.Option[*Game] {
	return opt.None[*Game]()
}
