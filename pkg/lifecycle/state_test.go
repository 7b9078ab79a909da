package lifecycle

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateDestroyed, "Destroyed"},
		{StateInitialized, "Initialized"},
		{StateCreated, "Created"},
		{StateStarted, "Started"},
		{StateResumed, "Resumed"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestState_Ordering(t *testing.T) {
	ordered := []State{StateDestroyed, StateInitialized, StateCreated, StateStarted, StateResumed}
	for i := 1; i < len(ordered); i++ {
		if !ordered[i].AtLeast(ordered[i-1]) {
			t.Errorf("%v should rank at least %v", ordered[i], ordered[i-1])
		}
		if ordered[i-1].AtLeast(ordered[i]) {
			t.Errorf("%v should not rank at least %v", ordered[i-1], ordered[i])
		}
	}
	if !StateStarted.AtLeast(StateStarted) {
		t.Error("AtLeast should be reflexive")
	}
}

func TestEvent_TargetState(t *testing.T) {
	tests := []struct {
		event Event
		want  State
	}{
		{EventCreate, StateCreated},
		{EventStart, StateStarted},
		{EventResume, StateResumed},
		{EventPause, StateStarted},
		{EventStop, StateCreated},
		{EventDestroy, StateDestroyed},
	}

	for _, tt := range tests {
		if got := tt.event.TargetState(); got != tt.want {
			t.Errorf("%v.TargetState() = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestEvent_TargetState_AnyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("TargetState on EventAny did not panic")
		}
	}()
	EventAny.TargetState()
}

func TestUpFrom(t *testing.T) {
	tests := []struct {
		state State
		want  Event
		ok    bool
	}{
		{StateInitialized, EventCreate, true},
		{StateCreated, EventStart, true},
		{StateStarted, EventResume, true},
		{StateResumed, EventAny, false},
		{StateDestroyed, EventAny, false},
	}

	for _, tt := range tests {
		got, ok := upFrom(tt.state)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("upFrom(%v) = (%v, %v), want (%v, %v)", tt.state, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDownFrom(t *testing.T) {
	tests := []struct {
		state State
		want  Event
		ok    bool
	}{
		{StateResumed, EventPause, true},
		{StateStarted, EventStop, true},
		{StateCreated, EventDestroy, true},
		{StateInitialized, EventDestroy, true},
		{StateDestroyed, EventAny, false},
	}

	for _, tt := range tests {
		got, ok := downFrom(tt.state)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("downFrom(%v) = (%v, %v), want (%v, %v)", tt.state, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEvent_String(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{EventCreate, "Create"},
		{EventStart, "Start"},
		{EventResume, "Resume"},
		{EventPause, "Pause"},
		{EventStop, "Stop"},
		{EventDestroy, "Destroy"},
		{EventAny, "Any"},
		{Event(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.event.String(); got != tt.want {
			t.Errorf("Event(%d).String() = %s, want %s", tt.event, got, tt.want)
		}
	}
}
