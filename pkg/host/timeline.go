package host

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Metroynome/deadlocked-patch/pkg/config"
	"github.com/Metroynome/deadlocked-patch/pkg/module"
	"github.com/Metroynome/deadlocked-patch/pkg/pad"
	"github.com/Metroynome/deadlocked-patch/pkg/patch"
)

var (
	ErrUnknownEvent  = errors.New("unknown event type")
	ErrUnknownModule = errors.New("unknown module")
)

type action func(h *Host)

// compile turns a timeline event into the change it makes to the host.
func compile(event config.Event, modules *module.List) (action, error) {
	switch event.Type {
	case config.EventStart:
		return func(h *Host) {
			if !h.Clock.Start() {
				log.Warn().Msg("match already in progress")
				return
			}
			h.Game.StartTime = h.Clock.Time()
			// The settings table is loaded with the level
			h.Memory.WriteU16(patch.CameraSpeedAddress1, patch.CameraSpeedDefault)
			log.Info().Int64("tick", int64(h.Clock.Time())).Msg("match started")
		}, nil
	case config.EventEnd:
		return func(h *Host) {
			if !h.Clock.End() {
				log.Warn().Msg("no match to end")
				return
			}
			log.Info().
				Int64("tick", int64(h.Clock.Time())).
				Int64("length", int64(h.Clock.Elapsed())).
				Msg("match ended")
		}, nil
	case config.EventLeave:
		return func(h *Host) {
			if !h.Clock.Leave() {
				log.Warn().Msg("not in a match")
				return
			}
			h.Memory.WriteU16(patch.CameraSpeedAddress1, 0)
			h.Memory.WriteU16(patch.CameraSpeedAddress2, 0)
			log.Info().Int64("tick", int64(h.Clock.Time())).Msg("returned to lobby")
		}, nil
	case config.EventSettingsLost:
		return func(h *Host) {
			h.settingsAvailable = false
			log.Warn().Msg("game settings unavailable")
		}, nil
	case config.EventSettingsRestored:
		return func(h *Host) {
			h.settingsAvailable = true
			log.Info().Msg("game settings restored")
		}, nil
	case config.EventEnable, config.EventDisable:
		m := modules.Get(event.Module)
		if m == nil {
			return nil, fmt.Errorf("%w %q", ErrUnknownModule, event.Module)
		}

		if event.Type == config.EventDisable {
			return func(h *Host) {
				m.Disable()
				log.Info().Str("module", m.Name).Msg("disabled module")
			}, nil
		}

		state, err := module.ParseState(event.State)
		if err != nil {
			return nil, err
		}
		if !state.Active() {
			return nil, fmt.Errorf("cannot enable %s with state %s", m.Name, state)
		}
		return func(h *Host) {
			m.Activate(state)
			log.Info().Str("module", m.Name).Stringer("state", state).Msg("enabled module")
		}, nil
	case config.EventPress, config.EventRelease:
		button, err := pad.ParseButton(event.Button)
		if err != nil {
			return nil, err
		}
		if event.Type == config.EventPress {
			return func(h *Host) { h.Pad = h.Pad.Press(button) }, nil
		}
		return func(h *Host) { h.Pad = h.Pad.Release(button) }, nil
	}

	return nil, fmt.Errorf("%w %q", ErrUnknownEvent, event.Type)
}
