package playback

// State is the lifecycle position of a Session.
type State int

const (
	Idle State = iota
	Loaded
	Playing
	Stopped
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loaded:
		return "loaded"
	case Playing:
		return "playing"
	case Stopped:
		return "stopped"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends a session.
func (s State) Terminal() bool {
	return s == Stopped || s == Completed
}
