package collections

import "viper/src/rt"

// StateMachine is a small discrete-state tracker with per-frame transition
// flags, grounded in rt_statemachine.h's add_state/set_initial/transition/
// just_entered/just_exited/frames_in_state/update contract (menu/gameplay/
// pause style application state).
type StateMachine struct {
	rt.Header
	known             map[int64]bool
	current, previous int64
	hasCurrent        bool
	justEntered       bool
	justExited        bool
	framesInState     int64
}

// NewStateMachine allocates a StateMachine with no registered states.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		Header:   rt.NewHeader(rt.KindObject, rt.ElemI64, 0, 0, nil),
		known:    map[int64]bool{},
		current:  -1,
		previous: -1,
	}
}

// AddState registers stateID, reporting whether it was newly added.
func (m *StateMachine) AddState(stateID int64) bool {
	if m.known[stateID] {
		return false
	}
	m.known[stateID] = true
	return true
}

// HasState reports whether stateID is registered.
func (m *StateMachine) HasState(stateID int64) bool { return m.known[stateID] }

// StateCount returns the number of registered states.
func (m *StateMachine) StateCount() int64 { return int64(len(m.known)) }

// SetInitial sets the starting state, reporting whether stateID is
// registered.
func (m *StateMachine) SetInitial(stateID int64) bool {
	if !m.known[stateID] {
		return false
	}
	m.current = stateID
	m.hasCurrent = true
	m.framesInState = 0
	return true
}

// Current returns the current state, or -1 if none is set.
func (m *StateMachine) Current() int64 {
	if !m.hasCurrent {
		return -1
	}
	return m.current
}

// Previous returns the prior state, or -1 if there was none.
func (m *StateMachine) Previous() int64 { return m.previous }

// IsState reports whether the machine is currently in stateID.
func (m *StateMachine) IsState(stateID int64) bool { return m.hasCurrent && m.current == stateID }

// Transition moves to stateID, reporting whether stateID is registered.
// Setting the same flag each call matches rt_statemachine_transition's
// "call clear_flags at end of frame" protocol rather than auto-clearing,
// so repeated Transition calls within one frame still observe the flags.
func (m *StateMachine) Transition(stateID int64) bool {
	if !m.known[stateID] {
		return false
	}
	m.previous = m.current
	m.current = stateID
	m.hasCurrent = true
	m.justEntered = true
	m.justExited = true
	m.framesInState = 0
	return true
}

// JustEntered reports whether a transition occurred since the last
// ClearFlags.
func (m *StateMachine) JustEntered() bool { return m.justEntered }

// JustExited reports whether a transition away from the previous state
// occurred since the last ClearFlags.
func (m *StateMachine) JustExited() bool { return m.justExited }

// ClearFlags resets the just-entered/just-exited flags, to be called once
// per frame after observing them.
func (m *StateMachine) ClearFlags() {
	m.justEntered = false
	m.justExited = false
}

// FramesInState returns the number of Update calls since entering the
// current state.
func (m *StateMachine) FramesInState() int64 { return m.framesInState }

// Update increments the current state's frame counter.
func (m *StateMachine) Update() { m.framesInState++ }
