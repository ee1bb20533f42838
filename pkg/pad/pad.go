package pad

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Buttons is the raw button word of a pad. Bits are active low: a pressed
// button reads as 0.
type Buttons uint16

// Released is a pad with no buttons held.
const Released Buttons = 0xFFFF

type Button uint16

const (
	Select   Button = 0x0001
	L3       Button = 0x0002
	R3       Button = 0x0004
	Start    Button = 0x0008
	Up       Button = 0x0010
	Right    Button = 0x0020
	Down     Button = 0x0040
	Left     Button = 0x0080
	L2       Button = 0x0100
	R2       Button = 0x0200
	L1       Button = 0x0400
	R1       Button = 0x0800
	Triangle Button = 0x1000
	Circle   Button = 0x2000
	Cross    Button = 0x4000
	Square   Button = 0x8000
)

var names = map[string]Button{
	"select":   Select,
	"l3":       L3,
	"r3":       R3,
	"start":    Start,
	"up":       Up,
	"right":    Right,
	"down":     Down,
	"left":     Left,
	"l2":       L2,
	"r2":       R2,
	"l1":       L1,
	"r1":       R1,
	"triangle": Triangle,
	"circle":   Circle,
	"cross":    Cross,
	"square":   Square,
}

func ParseButton(name string) (Button, error) {
	button, ok := names[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown button %q", name)
	}
	return button, nil
}

func (b Button) String() string {
	for name, button := range names {
		if button == b {
			return strings.ToUpper(name)
		}
	}
	return fmt.Sprintf("0x%04x", uint16(b))
}

func (b Buttons) Held(button Button) bool {
	return uint16(b)&uint16(button) == 0
}

func (b Buttons) Press(button Button) Buttons {
	return b &^ Buttons(button)
}

func (b Buttons) Release(button Button) Buttons {
	return b | Buttons(button)
}

type Edge int

const (
	NoEdge Edge = iota
	Pressed
	Lifted
)

// Compare reports how button changed between the previous and the current
// button words.
func Compare(current, previous Buttons, button Button) Edge {
	mask := Buttons(button)
	if current&mask == previous&mask {
		return NoEdge
	}
	if current&mask == 0 {
		return Pressed
	}
	return Lifted
}

// Watcher logs edges of a set of buttons from one frame to the next.
type Watcher struct {
	buttons  []Button
	previous Buttons
}

func NewWatcher(buttons ...Button) *Watcher {
	return &Watcher{
		buttons:  buttons,
		previous: Released,
	}
}

// Update compares current against the word seen last frame and returns the
// buttons that changed.
func (w *Watcher) Update(tick int64, current Buttons) map[Button]Edge {
	var edges map[Button]Edge
	for _, button := range w.buttons {
		edge := Compare(current, w.previous, button)
		if edge == NoEdge {
			continue
		}

		if edges == nil {
			edges = make(map[Button]Edge)
		}
		edges[button] = edge

		direction := "UP"
		if edge == Pressed {
			direction = "DOWN"
		}
		log.Debug().Msgf(
			"%d: PAD %s %s (0:%04x, 1:%04x)",
			tick,
			button,
			direction,
			uint16(current),
			uint16(w.previous),
		)
	}
	w.previous = current
	return edges
}
