package clock

const (
	stateLobby = iota
	stateInGame
)

// Match is a frame-driven game clock. It advances only when Advance is
// called, once per frame, and tracks the start and end of matches.
type Match struct {
	state     int
	time      Tick
	startTime Tick
	endTime   Tick
	hasEnded  bool
}

var _ Signal = &Match{}

func NewMatch() *Match {
	return &Match{}
}

func (m *Match) Advance() Tick {
	m.time++
	return m.time
}

// Start begins a match at the current tick. It returns false if a match is
// already in progress.
func (m *Match) Start() bool {
	if m.state == stateInGame {
		return false
	}
	m.state = stateInGame
	m.startTime = m.time
	m.endTime = 0
	m.hasEnded = false
	return true
}

// End marks the current match as ended. The match stays active until Leave
// is called, like the post-game scoreboard does.
func (m *Match) End() bool {
	if m.state != stateInGame || m.hasEnded {
		return false
	}
	m.hasEnded = true
	m.endTime = m.time
	return true
}

// Leave returns to the lobby. The ended flag of the last match is kept.
func (m *Match) Leave() bool {
	if m.state != stateInGame {
		return false
	}
	m.state = stateLobby
	return true
}

func (m *Match) Reset() {
	*m = Match{}
}

func (m *Match) Active() bool {
	return m.state == stateInGame
}

func (m *Match) Time() Tick {
	return m.time
}

func (m *Match) Ended() bool {
	return m.hasEnded
}

func (m *Match) EndTime() Tick {
	return m.endTime
}

func (m *Match) StartTime() Tick {
	return m.startTime
}

// Elapsed returns the game time since the current match started, or zero
// when no match is in progress.
func (m *Match) Elapsed() Tick {
	if m.state != stateInGame {
		return 0
	}
	return m.time - m.startTime
}
