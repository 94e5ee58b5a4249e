package session

// State is the lifecycle position of one streaming request.
type State int

const (
	Idle State = iota
	Retrieving
	Generating
	Emitting
	Closed
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Retrieving:
		return "retrieving"
	case Generating:
		return "generating"
	case Emitting:
		return "emitting"
	case Closed:
		return "closed"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Terminal reports whether the session has finished.
func (s State) Terminal() bool {
	return s == Closed || s == Errored
}
