package merge

// State of a merge run: Idle → Validating → Scanning → Serializing → Done.
// Validation failures go from Validating to Failed, read and parse failures
// from Scanning to Failed.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateScanning
	StateSerializing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateValidating:
		return "Validating"
	case StateScanning:
		return "Scanning"
	case StateSerializing:
		return "Serializing"
	case StateDone:
		return "Done"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
