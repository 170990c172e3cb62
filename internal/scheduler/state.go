package scheduler

// State is the lifecycle position of the scheduler's current cycle.
type State int32

const (
	StateIdle State = iota
	StateCollecting
	StateScoring
	StateSealed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollecting:
		return "collecting"
	case StateScoring:
		return "scoring"
	case StateSealed:
		return "sealed"
	default:
		return "unknown"
	}
}
