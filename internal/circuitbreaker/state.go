package circuitbreaker

// State is the breaker position reported in snapshots and state changes.
type State int

const (
	StateClosed   State = iota // calls reach the guarded store
	StateOpen                  // calls fail fast with ErrCircuitOpen until the cooldown ends
	StateHalfOpen              // trial calls decide between closed and open
)

var stateNames = map[State]string{
	StateClosed:   "closed",
	StateOpen:     "open",
	StateHalfOpen: "half-open",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
