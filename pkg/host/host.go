package host

import (
	"context"
	"fmt"
	"time"

	opt "github.com/repeale/fp-go/option"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"

	"github.com/Metroynome/deadlocked-patch/pkg/clock"
	"github.com/Metroynome/deadlocked-patch/pkg/config"
	"github.com/Metroynome/deadlocked-patch/pkg/module"
	"github.com/Metroynome/deadlocked-patch/pkg/modules"
	"github.com/Metroynome/deadlocked-patch/pkg/pad"
	"github.com/Metroynome/deadlocked-patch/pkg/patch"
	"github.com/Metroynome/deadlocked-patch/pkg/pausableticker"
	"github.com/Metroynome/deadlocked-patch/pkg/scheduler"
	"github.com/Metroynome/deadlocked-patch/pkg/settings"
	"github.com/Metroynome/deadlocked-patch/pkg/utils"
)

// Host stands in for the game process: it owns the clock, the settings,
// memory and the pad, and runs the patch once per frame.
type Host struct {
	utils.Session

	*config.HostSettings

	Modules   *module.List
	Clock     *clock.Match
	Game      *settings.Game
	Memory    patch.Memory
	Pad       pad.Buttons
	Demotions *utils.Topic[scheduler.Demotion]

	settingsAvailable bool
	scheduler         *scheduler.Scheduler
	watcher           *pad.Watcher
	timeline          map[int][]action
	frame             int

	tickerMutex deadlock.Mutex
	ticker      *pausableticker.Ticker
}

func New(ctx context.Context, conf *config.Config) (*Host, error) {
	list := module.NewList()
	for _, moduleConfig := range conf.Modules {
		state, err := module.ParseState(moduleConfig.State)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", moduleConfig.Name, err)
		}

		m, err := modules.Build(moduleConfig.Name, moduleConfig.Kind, state)
		if err != nil {
			return nil, err
		}

		err = list.Add(m)
		if err != nil {
			return nil, err
		}
	}

	timeline := make(map[int][]action)
	for _, event := range conf.Timeline {
		do, err := compile(event, list)
		if err != nil {
			return nil, fmt.Errorf("timeline event at frame %d: %w", event.Frame, err)
		}
		timeline[event.Frame] = append(timeline[event.Frame], do)
	}

	hostSettings := conf.Host
	demotions := utils.NewTopic[scheduler.Demotion]()

	return &Host{
		Session:           utils.NewSession(ctx),
		HostSettings:      &hostSettings,
		Modules:           list,
		Clock:             clock.NewMatch(),
		Game:              &settings.Game{},
		Memory:            patch.RAM{},
		Pad:               pad.Released,
		Demotions:         demotions,
		settingsAvailable: hostSettings.Settings,
		scheduler:         scheduler.New(list, scheduler.WithDemotions(demotions)),
		watcher:           pad.NewWatcher(pad.Left),
		timeline:          timeline,
	}, nil
}

// Settings returns the game settings as the patch sees them this frame.
func (h *Host) Settings() opt.Option[*settings.Game] {
	if !h.settingsAvailable {
		return settings.Unavailable()
	}
	return settings.Available(h.Game)
}

// Frame runs one frame of the game loop.
func (h *Host) Frame() {
	tick := h.Clock.Advance()

	for _, do := range h.timeline[h.frame] {
		do(h)
	}

	if h.CameraPatch {
		patch.CameraSpeed(h.Memory)
	}

	h.scheduler.Tick(h.Settings(), h.Clock)

	h.watcher.Update(int64(tick), h.Pad)

	h.frame++
}

// Frames returns the number of frames run so far.
func (h *Host) Frames() int {
	return h.frame
}

func (h *Host) finished() bool {
	return h.HostSettings.Frames > 0 && h.frame >= h.HostSettings.Frames
}

func (h *Host) Scheduler() *scheduler.Scheduler {
	return h.scheduler
}

// TogglePause pauses or resumes the frame ticker and returns whether it is
// now paused. Hosts without a frame rate cannot be paused.
func (h *Host) TogglePause() bool {
	h.tickerMutex.Lock()
	defer h.tickerMutex.Unlock()

	if h.ticker == nil {
		return false
	}
	return h.ticker.Toggle()
}

func logDemotion(demotion scheduler.Demotion) {
	log.Info().
		Str("module", demotion.Module).
		Stringer("reason", demotion.Reason).
		Int64("tick", int64(demotion.Tick)).
		Msg("module turned off")
}

// logDemotions logs demotions until stop is closed, then logs whatever is
// still buffered and closes done.
func logDemotions(subscriber *utils.Subscriber[scheduler.Demotion], stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer subscriber.Done()

	for {
		select {
		case demotion := <-subscriber.Recv():
			logDemotion(demotion)
		case <-stop:
			for {
				select {
				case demotion := <-subscriber.Recv():
					logDemotion(demotion)
				default:
					return
				}
			}
		}
	}
}

// Run runs frames until the configured number of frames is reached or the
// session is cancelled.
func (h *Host) Run() error {
	// A frame turns off at most one module per list entry
	size := h.Modules.Len()
	if size < 16 {
		size = 16
	}
	subscriber := h.Demotions.Subscribe(size)
	stop := make(chan struct{})
	done := make(chan struct{})
	go logDemotions(subscriber, stop, done)

	log.Info().
		Int("modules", h.Modules.Len()).
		Int("frameRate", h.FrameRate).
		Int("frames", h.HostSettings.Frames).
		Msg("starting game loop")

	if h.FrameRate == 0 {
		for !h.finished() && !h.IsDone() {
			h.Frame()
		}
	} else {
		h.runTicker()
	}

	close(stop)
	<-done

	h.summarize()
	return nil
}

func (h *Host) runTicker() {
	ticker := pausableticker.New(time.Second / time.Duration(h.FrameRate))
	h.tickerMutex.Lock()
	h.ticker = ticker
	h.tickerMutex.Unlock()

	defer func() {
		h.tickerMutex.Lock()
		h.ticker = nil
		h.tickerMutex.Unlock()
		ticker.Stop()
	}()

	for !h.finished() {
		select {
		case <-h.Done():
			return
		case <-ticker.C:
			h.Frame()
		}
	}
}

func (h *Host) summarize() {
	h.Modules.Each(func(m *module.Module) {
		event := log.Info().
			Str("module", m.Name).
			Stringer("state", m.State)

		if counts, ok := modules.Counts(m); ok {
			event = event.
				Uint64("game", counts.Game).
				Uint64("lobby", counts.Lobby)
		}

		event.Msg("module summary")
	})

	log.Info().
		Int("frames", h.frame).
		Dur("uptime", h.Uptime()).
		Int("active", h.Modules.Active()).
		Uint64("droppedDemotions", h.Demotions.Dropped()).
		Msg("game loop finished")
}
