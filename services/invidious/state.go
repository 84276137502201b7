package invidious

// Phase is the stage of a fallback pass.
type Phase int

const (
	// PhaseTrying means instance State.Index is the next to attempt.
	PhaseTrying Phase = iota
	// PhaseSucceeded means instance State.Index answered.
	PhaseSucceeded
	// PhaseExhausted means every instance failed; State.Failures holds one
	// entry per instance.
	PhaseExhausted
)

func (p Phase) String() string {
	switch p {
	case PhaseTrying:
		return "trying"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// State is a snapshot of a fallback pass over count instances.
type State struct {
	Phase    Phase
	Index    int
	Failures []*InstanceError
}

// Start is the initial state: Trying(0).
func Start() State {
	return State{Phase: PhaseTrying}
}

// Done reports whether the pass reached a terminal phase.
func (s State) Done() bool {
	return s.Phase != PhaseTrying
}

// Next applies the outcome of attempting instance s.Index. A nil failure is
// a success. Terminal states are returned unchanged.
//
//	Trying(i) --ok-->                Succeeded
//	Trying(i) --fail, i+1 < count--> Trying(i+1)
//	Trying(i) --fail, i+1 == count-> Exhausted
func Next(s State, count int, failure *InstanceError) State {
	if s.Done() {
		return s
	}
	if failure == nil {
		return State{Phase: PhaseSucceeded, Index: s.Index, Failures: s.Failures}
	}

	failures := append(s.Failures[:len(s.Failures):len(s.Failures)], failure)
	if s.Index+1 < count {
		return State{Phase: PhaseTrying, Index: s.Index + 1, Failures: failures}
	}
	return State{Phase: PhaseExhausted, Index: s.Index, Failures: failures}
}
