package config

type EventType string

const (
	EventStart            EventType = "start"
	EventEnd              EventType = "end"
	EventLeave            EventType = "leave"
	EventSettingsLost     EventType = "settings-lost"
	EventSettingsRestored EventType = "settings-restored"
	EventEnable           EventType = "enable"
	EventDisable          EventType = "disable"
	EventPress            EventType = "press"
	EventRelease          EventType = "release"
)

type HostSettings struct {
	FrameRate   int
	Frames      int
	Settings    bool
	CameraPatch bool
}

type ModuleConfig struct {
	Name  string
	Kind  string
	State string
}

// Event is something that happens to the game at a given frame, outside of
// the modules' control.
type Event struct {
	// Zero-based index of the frame the event applies to. Events apply after
	// the clock has advanced for that frame, so game time is Frame+1 when
	// they run.
	Frame  int
	Type   EventType
	Module string
	State  string
	Button string
}

type Config struct {
	Host     HostSettings
	Modules  []ModuleConfig
	Timeline []Event
}
