package scheduler

import (
	opt "github.com/repeale/fp-go/option"
	"github.com/rs/zerolog/log"

	"github.com/Metroynome/deadlocked-patch/pkg/clock"
	"github.com/Metroynome/deadlocked-patch/pkg/module"
	"github.com/Metroynome/deadlocked-patch/pkg/settings"
	"github.com/Metroynome/deadlocked-patch/pkg/utils"
)

type Reason uint8

const (
	// Game settings could not be read this frame.
	SettingsUnavailable Reason = iota
	// The match ended and the grace window after it has passed.
	GraceElapsed
	// Back in the lobby after a match that started this session.
	MatchConcluded
)

func (r Reason) String() string {
	switch r {
	case SettingsUnavailable:
		return "settings unavailable"
	case GraceElapsed:
		return "grace elapsed"
	case MatchConcluded:
		return "match concluded"
	}
	return "unknown"
}

// Demotion records a temporarily enabled module being turned off.
type Demotion struct {
	Module string
	Reason Reason
	Tick   clock.Tick
}

// Stats describes what the last call to Tick did.
type Stats struct {
	GameCalls  int
	LobbyCalls int
	Demotions  int
}

// Scheduler decides every frame which modules run and in which phase.
type Scheduler struct {
	modules   *module.List
	demotions *utils.Topic[Demotion]

	frame   uint64
	last    Stats
	ticking bool
}

type Option func(*Scheduler)

// WithDemotions publishes every demotion on topic.
func WithDemotions(topic *utils.Topic[Demotion]) Option {
	return func(s *Scheduler) {
		s.demotions = topic
	}
}

func New(modules *module.List, opts ...Option) *Scheduler {
	s := &Scheduler{
		modules: modules,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Tick runs one frame. It must be called once per frame from the game loop
// and never from inside an entrypoint.
func (s *Scheduler) Tick(game opt.Option[*settings.Game], signal clock.Signal) {
	if s.ticking {
		panic("scheduler: Tick called from inside a module entrypoint")
	}
	s.ticking = true
	defer func() {
		s.ticking = false
	}()

	s.last = Stats{}
	s.frame++

	if opt.IsNone(game) || game.Value == nil {
		s.modules.Each(func(m *module.Module) {
			s.degraded(m, signal)
		})
		return
	}

	gameSettings := game.Value
	s.modules.Each(func(m *module.Module) {
		s.process(m, gameSettings, signal)
	})
}

// Without settings temporary modules cannot be tracked across the match, so
// they are turned off. Lobby logic does not depend on settings and keeps
// running for modules that are always on.
func (s *Scheduler) degraded(m *module.Module, signal clock.Signal) {
	switch m.State {
	case module.TemporarilyOn:
		s.demote(m, SettingsUnavailable, signal.Time())
	case module.AlwaysOn:
		if !signal.Active() {
			s.lobby(m)
		}
	}
}

func (s *Scheduler) process(m *module.Module, game *settings.Game, signal clock.Signal) {
	if !m.State.Active() {
		return
	}

	if signal.Active() {
		// Modules get one more second after the match ends to run end of
		// game logic.
		if !signal.Ended() || signal.Time() < signal.EndTime()+clock.Second {
			s.game(m)
		} else if m.State == module.TemporarilyOn {
			s.demote(m, GraceElapsed, signal.Time())
		}
		return
	}

	// A match started this session and we are no longer in it, so it must
	// have ended.
	if game.Started() &&
		signal.Time() > game.StartTime &&
		signal.Ended() &&
		m.State == module.TemporarilyOn {
		s.demote(m, MatchConcluded, signal.Time())
	}

	if m.State.Active() {
		s.lobby(m)
	}
}

func (s *Scheduler) game(m *module.Module) {
	if m.Game == nil {
		return
	}
	s.last.GameCalls++
	m.Game.GameTick(m)
}

func (s *Scheduler) lobby(m *module.Module) {
	if m.Lobby == nil {
		return
	}
	s.last.LobbyCalls++
	m.Lobby.LobbyTick(m)
}

func (s *Scheduler) demote(m *module.Module, reason Reason, tick clock.Tick) {
	m.State = module.Off
	s.last.Demotions++

	log.Debug().
		Str("module", m.Name).
		Stringer("reason", reason).
		Int64("tick", int64(tick)).
		Msg("turned off temporary module")

	if s.demotions != nil {
		s.demotions.Publish(Demotion{
			Module: m.Name,
			Reason: reason,
			Tick:   tick,
		})
	}
}

// Frame returns the number of calls to Tick so far.
func (s *Scheduler) Frame() uint64 {
	return s.frame
}

func (s *Scheduler) Stats() Stats {
	return s.last
}
