package host

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Metroynome/deadlocked-patch/pkg/clock"
	"github.com/Metroynome/deadlocked-patch/pkg/config"
	"github.com/Metroynome/deadlocked-patch/pkg/module"
	"github.com/Metroynome/deadlocked-patch/pkg/modules"
	"github.com/Metroynome/deadlocked-patch/pkg/pad"
	"github.com/Metroynome/deadlocked-patch/pkg/patch"
	"github.com/Metroynome/deadlocked-patch/pkg/scheduler"
)

func testConfig(timeline ...config.Event) *config.Config {
	return &config.Config{
		Host: config.HostSettings{
			Settings:    true,
			CameraPatch: true,
		},
		Modules: []config.ModuleConfig{
			{Name: "spectate", Kind: "trace", State: "always"},
			{Name: "gamerules", Kind: "game", State: "temporary"},
			{Name: "announcements", Kind: "lobby", State: "temporary"},
			{Name: "mapvote", Kind: "lobby", State: "off"},
		},
		Timeline: timeline,
	}
}

func counts(t *testing.T, h *Host, name string) modules.Counter {
	m := h.Modules.Get(name)
	require.NotNil(t, m)
	c, ok := modules.Counts(m)
	require.True(t, ok)
	return c
}

func state(h *Host, name string) module.State {
	return h.Modules.Get(name).State
}

func runFrames(h *Host, n int) {
	for i := 0; i < n; i++ {
		h.Frame()
	}
}

func TestMatchLifecycle(t *testing.T) {
	h, err := New(context.Background(), testConfig(
		config.Event{Frame: 5, Type: config.EventStart},
		config.Event{Frame: 20, Type: config.EventEnd},
		config.Event{Frame: 30, Type: config.EventLeave},
	))
	require.NoError(t, err)

	// Lobby before the first match
	runFrames(h, 5)
	assert.Equal(t, modules.Counter{Lobby: 5}, counts(t, h, "spectate"))
	assert.Equal(t, modules.Counter{Lobby: 5}, counts(t, h, "announcements"))
	assert.Equal(t, modules.Counter{}, counts(t, h, "gamerules"))

	// In game, then the grace window after the end
	runFrames(h, 25)
	assert.Equal(t, modules.Counter{Game: 25, Lobby: 5}, counts(t, h, "spectate"))
	assert.Equal(t, modules.Counter{Game: 25}, counts(t, h, "gamerules"))
	assert.Equal(t, modules.Counter{Lobby: 5}, counts(t, h, "announcements"))
	assert.Equal(t, patch.CameraSpeedMax1, h.Memory.ReadU16(patch.CameraSpeedAddress1))
	assert.Equal(t, patch.CameraSpeedMax2, h.Memory.ReadU16(patch.CameraSpeedAddress2))
	// Started on frame index 5, after the clock advanced to tick 6
	assert.Equal(t, clock.Tick(6), h.Game.StartTime)
	assert.Equal(t, clock.Tick(21), h.Clock.EndTime())

	// Back in the lobby the temporary modules are turned off
	runFrames(h, 10)
	assert.Equal(t, module.Off, state(h, "gamerules"))
	assert.Equal(t, module.Off, state(h, "announcements"))
	assert.Equal(t, module.AlwaysOn, state(h, "spectate"))
	assert.Equal(t, modules.Counter{Game: 25, Lobby: 15}, counts(t, h, "spectate"))
	assert.Equal(t, modules.Counter{Lobby: 5}, counts(t, h, "announcements"))
	assert.Equal(t, modules.Counter{}, counts(t, h, "mapvote"))
	assert.Equal(t, uint16(0), h.Memory.ReadU16(patch.CameraSpeedAddress1))
	assert.Equal(t, 40, h.Frames())
}

func TestGraceElapsed(t *testing.T) {
	h, err := New(context.Background(), testConfig(
		config.Event{Frame: 0, Type: config.EventStart},
		config.Event{Frame: 10, Type: config.EventEnd},
	))
	require.NoError(t, err)

	subscriber := h.Demotions.Subscribe(4)
	defer subscriber.Done()

	runFrames(h, 100)

	demotion := <-subscriber.Recv()
	assert.Equal(t, "gamerules", demotion.Module)
	assert.Equal(t, scheduler.GraceElapsed, demotion.Reason)
	// Ended at tick 11, the window closes a second later
	assert.Equal(t, h.Clock.EndTime()+60, demotion.Tick)

	// Temporary modules without a game entrypoint are turned off as well
	demotion = <-subscriber.Recv()
	assert.Equal(t, "announcements", demotion.Module)
	assert.Equal(t, scheduler.GraceElapsed, demotion.Reason)

	assert.Equal(t, module.Off, state(h, "announcements"))
	assert.Equal(t, module.AlwaysOn, state(h, "spectate"))
	assert.Equal(t, modules.Counter{Game: 70}, counts(t, h, "gamerules"))
	assert.Equal(t, modules.Counter{Game: 70}, counts(t, h, "spectate"))
}

func TestSettingsLost(t *testing.T) {
	h, err := New(context.Background(), testConfig(
		config.Event{Frame: 0, Type: config.EventStart},
		config.Event{Frame: 3, Type: config.EventSettingsLost},
		config.Event{Frame: 6, Type: config.EventSettingsRestored},
	))
	require.NoError(t, err)

	runFrames(h, 3)
	assert.Equal(t, modules.Counter{Game: 3}, counts(t, h, "gamerules"))

	runFrames(h, 1)
	assert.Equal(t, module.Off, state(h, "gamerules"))
	assert.Equal(t, module.Off, state(h, "announcements"))
	assert.Equal(t, modules.Counter{Game: 3}, counts(t, h, "spectate"))
	assert.Equal(t, scheduler.Stats{Demotions: 2}, h.Scheduler().Stats())

	// No game calls until the settings come back
	runFrames(h, 2)
	assert.Equal(t, modules.Counter{Game: 3}, counts(t, h, "spectate"))
	runFrames(h, 1)
	assert.Equal(t, modules.Counter{Game: 4}, counts(t, h, "spectate"))
	assert.Equal(t, module.Off, state(h, "gamerules"))
}

func TestEnableDisable(t *testing.T) {
	h, err := New(context.Background(), testConfig(
		config.Event{Frame: 2, Type: config.EventEnable, Module: "mapvote", State: "always"},
		config.Event{Frame: 4, Type: config.EventDisable, Module: "spectate"},
		config.Event{Frame: 1, Type: config.EventPress, Button: "left"},
		config.Event{Frame: 3, Type: config.EventRelease, Button: "left"},
	))
	require.NoError(t, err)

	runFrames(h, 2)
	assert.True(t, h.Pad.Held(pad.Left))
	runFrames(h, 4)
	assert.False(t, h.Pad.Held(pad.Left))

	assert.Equal(t, module.AlwaysOn, state(h, "mapvote"))
	assert.Equal(t, modules.Counter{Lobby: 4}, counts(t, h, "mapvote"))
	assert.Equal(t, module.Off, state(h, "spectate"))
	assert.Equal(t, modules.Counter{Lobby: 4}, counts(t, h, "spectate"))
}

func TestInvalidConfig(t *testing.T) {
	conf := testConfig(config.Event{Frame: 1, Type: config.EventEnable, Module: "missing"})
	_, err := New(context.Background(), conf)
	require.True(t, errors.Is(err, ErrUnknownModule))

	conf = testConfig(config.Event{Frame: 1, Type: "explode"})
	_, err = New(context.Background(), conf)
	require.True(t, errors.Is(err, ErrUnknownEvent))

	conf = testConfig(config.Event{Frame: 1, Type: config.EventEnable, Module: "mapvote", State: "off"})
	_, err = New(context.Background(), conf)
	require.Error(t, err)

	conf = testConfig(config.Event{Frame: 1, Type: config.EventPress, Button: "home"})
	_, err = New(context.Background(), conf)
	require.Error(t, err)

	conf = testConfig()
	conf.Modules = append(conf.Modules, config.ModuleConfig{Name: "mystery", Kind: "nope", State: "off"})
	_, err = New(context.Background(), conf)
	require.True(t, errors.Is(err, modules.ErrUnknownKind))

	conf = testConfig()
	conf.Modules = append(conf.Modules, config.ModuleConfig{Name: "spectate", Kind: "trace", State: "off"})
	_, err = New(context.Background(), conf)
	require.True(t, errors.Is(err, module.ErrDuplicateName))

	conf = testConfig()
	conf.Modules[0].State = "sometimes"
	_, err = New(context.Background(), conf)
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	t.Run("back to back", func(t *testing.T) {
		conf := testConfig(config.Event{Frame: 10, Type: config.EventStart})
		conf.Host.Frames = 50
		h, err := New(context.Background(), conf)
		require.NoError(t, err)

		require.NoError(t, h.Run())
		assert.Equal(t, 50, h.Frames())
		assert.Equal(t, modules.Counter{Game: 40, Lobby: 10}, counts(t, h, "spectate"))
		assert.False(t, h.TogglePause())
	})

	t.Run("ticker", func(t *testing.T) {
		conf := testConfig()
		conf.Host.FrameRate = 1000
		conf.Host.Frames = 5
		h, err := New(context.Background(), conf)
		require.NoError(t, err)

		require.NoError(t, h.Run())
		assert.Equal(t, 5, h.Frames())
	})

	t.Run("cancelled", func(t *testing.T) {
		conf := testConfig()
		conf.Host.FrameRate = 1
		h, err := New(context.Background(), conf)
		require.NoError(t, err)

		go func() {
			time.Sleep(10 * time.Millisecond)
			h.Cancel()
		}()

		done := make(chan error)
		go func() {
			done <- h.Run()
		}()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("host did not stop after cancel")
		}
	})
}

func captureLog(t *testing.T) *bytes.Buffer {
	var buffer bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buffer)
	t.Cleanup(func() {
		log.Logger = previous
	})
	return &buffer
}

func TestRunLogsDemotions(t *testing.T) {
	for i := 0; i < 20; i++ {
		buffer := captureLog(t)

		conf := testConfig()
		conf.Host.Settings = false
		conf.Host.Frames = 3
		h, err := New(context.Background(), conf)
		require.NoError(t, err)

		require.NoError(t, h.Run())

		var lines []string
		for _, line := range strings.Split(buffer.String(), "\n") {
			if strings.Contains(line, "module turned off") {
				lines = append(lines, line)
			}
		}
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], `"module":"gamerules"`)
		assert.Contains(t, lines[0], `"reason":"settings unavailable"`)
		assert.Contains(t, lines[1], `"module":"announcements"`)
		assert.Contains(t, buffer.String(), `"droppedDemotions":0`)
	}
}
