package module

import (
	"fmt"
)

// State is a module's activation state. Off is the zero value.
type State uint8

const (
	Off State = iota
	// Active for the current match only. The scheduler turns it off once the
	// match is over.
	TemporarilyOn
	// Active across matches until something outside the scheduler disables it.
	AlwaysOn
)

func (s State) Active() bool {
	return s > Off
}

func (s State) String() string {
	switch s {
	case Off:
		return "off"
	case TemporarilyOn:
		return "temporary"
	case AlwaysOn:
		return "always"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

func ParseState(value string) (State, error) {
	switch value {
	case "off", "":
		return Off, nil
	case "temporary":
		return TemporarilyOn, nil
	case "always":
		return AlwaysOn, nil
	}
	return Off, fmt.Errorf("invalid module state %q", value)
}

type GameEntrypoint interface {
	GameTick(*Module)
}

type LobbyEntrypoint interface {
	LobbyTick(*Module)
}

// GameFunc adapts an ordinary function to a GameEntrypoint.
type GameFunc func(*Module)

func (f GameFunc) GameTick(m *Module) { f(m) }

// LobbyFunc adapts an ordinary function to a LobbyEntrypoint.
type LobbyFunc func(*Module)

func (f LobbyFunc) LobbyTick(m *Module) { f(m) }

// Module is one optional gameplay feature. Entrypoints run synchronously on
// the frame that invokes them and must not block.
type Module struct {
	Name  string
	State State

	Game  GameEntrypoint
	Lobby LobbyEntrypoint
}

// New creates a module whose entrypoints are taken from whichever of
// GameEntrypoint and LobbyEntrypoint impl implements.
func New(name string, state State, impl any) *Module {
	m := &Module{
		Name:  name,
		State: state,
	}

	if game, ok := impl.(GameEntrypoint); ok {
		m.Game = game
	}

	if lobby, ok := impl.(LobbyEntrypoint); ok {
		m.Lobby = lobby
	}

	return m
}

func (m *Module) HasEntrypoints() bool {
	return m.Game != nil || m.Lobby != nil
}

// Activate turns the module on. Only callers outside the scheduler do this.
func (m *Module) Activate(state State) {
	m.State = state
}

func (m *Module) Disable() {
	m.State = Off
}

func (m *Module) String() string {
	return fmt.Sprintf("%s (%s)", m.Name, m.State)
}
