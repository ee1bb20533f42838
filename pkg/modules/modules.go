package modules

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Metroynome/deadlocked-patch/pkg/module"
)

var ErrUnknownKind = errors.New("unknown module kind")

// Counter counts how many times each entrypoint of a module ran.
type Counter struct {
	Game  uint64
	Lobby uint64
}

// Counted is implemented by every built-in module.
type Counted interface {
	Counts() Counter
}

type counter struct {
	counts Counter
}

func (c *counter) Counts() Counter {
	return c.counts
}

// Trace runs in both phases and logs every call.
type Trace struct {
	counter
}

func (t *Trace) GameTick(m *module.Module) {
	t.counts.Game++
	log.Debug().Str("module", m.Name).Uint64("calls", t.counts.Game).Msg("game tick")
}

func (t *Trace) LobbyTick(m *module.Module) {
	t.counts.Lobby++
	log.Debug().Str("module", m.Name).Uint64("calls", t.counts.Lobby).Msg("lobby tick")
}

// GameOnly has no lobby entrypoint.
type GameOnly struct {
	counter
}

func (g *GameOnly) GameTick(*module.Module) {
	g.counts.Game++
}

// LobbyOnly has no game entrypoint.
type LobbyOnly struct {
	counter
}

func (l *LobbyOnly) LobbyTick(*module.Module) {
	l.counts.Lobby++
}

type factory func() Counted

var kinds = map[string]factory{
	"trace": func() Counted { return &Trace{} },
	"game":  func() Counted { return &GameOnly{} },
	"lobby": func() Counted { return &LobbyOnly{} },
}

// Kinds lists the names accepted by Build.
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates a module of the given kind.
func Build(name string, kind string, state module.State) (*module.Module, error) {
	create, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf(
			"module %s: %w %q (expected one of %s)",
			name,
			ErrUnknownKind,
			kind,
			strings.Join(Kinds(), ", "),
		)
	}
	return module.New(name, state, create()), nil
}

// Counts returns the counters of a module created by Build.
func Counts(m *module.Module) (Counter, bool) {
	var impl any = m.Game
	if impl == nil {
		impl = m.Lobby
	}
	counted, ok := impl.(Counted)
	if !ok {
		return Counter{}, false
	}
	return counted.Counts(), true
}
