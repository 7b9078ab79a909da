package lifecycle

import (
	"testing"

	"github.com/bft-labs/lifewire/pkg/loop"
)

// recorder is an observer that logs every event it receives.
type recorder struct {
	events []Event
}

func (r *recorder) OnStateChanged(owner Owner, event Event) {
	r.events = append(r.events, event)
}

func equalEvents(got, want []Event) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestRegistry_InitialState(t *testing.T) {
	owner := NewStandaloneOwner()
	if got := owner.Lifecycle().CurrentState(); got != StateInitialized {
		t.Errorf("initial state = %v, want Initialized", got)
	}
}

func TestRegistry_FullUpAndDownSequence(t *testing.T) {
	owner := NewStandaloneOwner()
	obs := &recorder{}
	owner.Lifecycle().AddObserver(obs)

	owner.Handle(EventCreate)
	owner.Handle(EventStart)
	owner.Handle(EventResume)

	if !equalEvents(obs.events, []Event{EventCreate, EventStart, EventResume}) {
		t.Fatalf("events after up = %v, want [Create Start Resume]", obs.events)
	}

	owner.Handle(EventPause)
	owner.Handle(EventStop)

	want := []Event{EventCreate, EventStart, EventResume, EventPause, EventStop}
	if !equalEvents(obs.events, want) {
		t.Errorf("events after down = %v, want %v", obs.events, want)
	}
	if got := owner.Lifecycle().CurrentState(); got != StateCreated {
		t.Errorf("state = %v, want Created", got)
	}

	// A second observer catches up to Created via a single step.
	obs2 := &recorder{}
	owner.Lifecycle().AddObserver(obs2)
	if !equalEvents(obs2.events, []Event{EventCreate}) {
		t.Errorf("second observer events = %v, want [Create]", obs2.events)
	}
}

func TestRegistry_LateObserverReceivesFullSequence(t *testing.T) {
	owner := NewStandaloneOwner()
	owner.Handle(EventCreate)
	owner.Handle(EventStart)
	owner.Handle(EventResume)

	obs := &recorder{}
	owner.Lifecycle().AddObserver(obs)

	if !equalEvents(obs.events, []Event{EventCreate, EventStart, EventResume}) {
		t.Errorf("late observer events = %v, want [Create Start Resume]", obs.events)
	}
}

func TestRegistry_RedundantEventIsNoop(t *testing.T) {
	owner := NewStandaloneOwner()
	obs := &recorder{}
	owner.Lifecycle().AddObserver(obs)

	owner.Handle(EventCreate)
	owner.Handle(EventStop) // Stop targets Created; state unchanged

	if !equalEvents(obs.events, []Event{EventCreate}) {
		t.Errorf("events = %v, want [Create]", obs.events)
	}
}

func TestRegistry_AddObserverIdempotent(t *testing.T) {
	owner := NewStandaloneOwner()
	owner.Handle(EventCreate)

	obs := &recorder{}
	owner.Lifecycle().AddObserver(obs)
	owner.Lifecycle().AddObserver(obs)

	if owner.Lifecycle().ObserverCount() != 1 {
		t.Errorf("ObserverCount() = %d, want 1", owner.Lifecycle().ObserverCount())
	}
	if !equalEvents(obs.events, []Event{EventCreate}) {
		t.Errorf("events = %v, want [Create]", obs.events)
	}
}

func TestRegistry_RemoveObserverNoDownEvents(t *testing.T) {
	owner := NewStandaloneOwner()
	obs := &recorder{}
	owner.Lifecycle().AddObserver(obs)
	owner.Handle(EventCreate)
	owner.Handle(EventStart)

	owner.Lifecycle().RemoveObserver(obs)
	owner.Handle(EventStop)
	owner.Handle(EventDestroy)

	if !equalEvents(obs.events, []Event{EventCreate, EventStart}) {
		t.Errorf("removed observer events = %v, want [Create Start]", obs.events)
	}
	if owner.Lifecycle().ObserverCount() != 0 {
		t.Errorf("ObserverCount() = %d, want 0", owner.Lifecycle().ObserverCount())
	}
}

func TestRegistry_DestroyDeliversFullDownSequence(t *testing.T) {
	owner := NewStandaloneOwner()
	obs := &recorder{}
	owner.Lifecycle().AddObserver(obs)
	owner.Handle(EventCreate)
	owner.Handle(EventStart)
	owner.Handle(EventResume)

	owner.Handle(EventDestroy)

	want := []Event{EventCreate, EventStart, EventResume, EventPause, EventStop, EventDestroy}
	if !equalEvents(obs.events, want) {
		t.Errorf("events = %v, want %v", obs.events, want)
	}
	if owner.Lifecycle().CurrentState() != StateDestroyed {
		t.Errorf("state = %v, want Destroyed", owner.Lifecycle().CurrentState())
	}
	if owner.Lifecycle().ObserverCount() != 0 {
		t.Errorf("observers not cleared on destroy: count = %d", owner.Lifecycle().ObserverCount())
	}
}

func TestRegistry_EventsAfterDestroyIgnored(t *testing.T) {
	owner := NewStandaloneOwner()
	owner.Handle(EventCreate)
	owner.Handle(EventDestroy)

	owner.Handle(EventCreate)
	owner.Handle(EventStart)

	if owner.Lifecycle().CurrentState() != StateDestroyed {
		t.Errorf("state after post-destroy events = %v, want Destroyed", owner.Lifecycle().CurrentState())
	}
}

func TestRegistry_AddObserverAfterDestroy(t *testing.T) {
	owner := NewStandaloneOwner()
	owner.Handle(EventCreate)
	owner.Handle(EventDestroy)

	obs := &recorder{}
	owner.Lifecycle().AddObserver(obs)

	if len(obs.events) != 0 {
		t.Errorf("observer added after destroy received events: %v", obs.events)
	}
	if owner.Lifecycle().ObserverCount() != 0 {
		t.Errorf("ObserverCount() = %d after destroy, want 0", owner.Lifecycle().ObserverCount())
	}
}

func TestRegistry_NestedDestroyDuringSync(t *testing.T) {
	owner := NewStandaloneOwner()
	obs := &recorder{}
	owner.Lifecycle().AddObserver(FuncObserver(func(o Owner, e Event) {
		obs.events = append(obs.events, e)
		if e == EventStart {
			owner.Handle(EventDestroy)
		}
	}))

	owner.Handle(EventCreate)
	owner.Handle(EventStart)

	// The nested destroy aborts the in-flight pass; the restarted sync walks
	// the observer down from Started without ever reaching Resumed.
	want := []Event{EventCreate, EventStart, EventStop, EventDestroy}
	if !equalEvents(obs.events, want) {
		t.Errorf("events = %v, want %v", obs.events, want)
	}
	if owner.Lifecycle().CurrentState() != StateDestroyed {
		t.Errorf("state = %v, want Destroyed", owner.Lifecycle().CurrentState())
	}
	if owner.Lifecycle().ObserverCount() != 0 {
		t.Errorf("ObserverCount() = %d after nested destroy, want 0", owner.Lifecycle().ObserverCount())
	}

	// The registry is fully torn down: later events are ignored, not panics.
	owner.Handle(EventCreate)
	if owner.Lifecycle().CurrentState() != StateDestroyed {
		t.Errorf("state after post-destroy event = %v, want Destroyed", owner.Lifecycle().CurrentState())
	}
}

func TestRegistry_NestedDestroyDuringAddObserver(t *testing.T) {
	owner := NewStandaloneOwner()
	first := &recorder{}
	owner.Lifecycle().AddObserver(first)
	owner.Handle(EventCreate)
	owner.Handle(EventStart)

	catchUp := &recorder{}
	owner.Lifecycle().AddObserver(FuncObserver(func(o Owner, e Event) {
		catchUp.events = append(catchUp.events, e)
		if e == EventCreate {
			// Destroy dispatched from the catch-up loop, where AddObserver,
			// not Handle, is the outermost registry frame.
			owner.Handle(EventDestroy)
		}
	}))

	if !equalEvents(catchUp.events, []Event{EventCreate, EventDestroy}) {
		t.Errorf("catch-up events = %v, want [Create Destroy]", catchUp.events)
	}
	wantFirst := []Event{EventCreate, EventStart, EventStop, EventDestroy}
	if !equalEvents(first.events, wantFirst) {
		t.Errorf("first events = %v, want %v", first.events, wantFirst)
	}
	if owner.Lifecycle().CurrentState() != StateDestroyed {
		t.Errorf("state = %v, want Destroyed", owner.Lifecycle().CurrentState())
	}
	if owner.Lifecycle().ObserverCount() != 0 {
		t.Errorf("ObserverCount() = %d after destroy, want 0", owner.Lifecycle().ObserverCount())
	}

	owner.Handle(EventCreate)
	if owner.Lifecycle().CurrentState() != StateDestroyed {
		t.Errorf("state after post-destroy event = %v, want Destroyed", owner.Lifecycle().CurrentState())
	}
}

func TestRegistry_DispatchAnyPanics(t *testing.T) {
	owner := NewStandaloneOwner()
	defer func() {
		if recover() == nil {
			t.Error("Handle(EventAny) did not panic")
		}
	}()
	owner.Handle(EventAny)
}

func TestRegistry_NestedEventDuringCallback(t *testing.T) {
	owner := NewStandaloneOwner()
	obs := &recorder{}
	owner.Lifecycle().AddObserver(FuncObserver(func(o Owner, e Event) {
		obs.events = append(obs.events, e)
		if e == EventCreate {
			// Reentrant dispatch: the in-flight pass must abort and the
			// outer loop must pick up the new target state.
			owner.Handle(EventStart)
		}
	}))

	owner.Handle(EventCreate)

	if !equalEvents(obs.events, []Event{EventCreate, EventStart}) {
		t.Errorf("events = %v, want [Create Start]", obs.events)
	}
	if owner.Lifecycle().CurrentState() != StateStarted {
		t.Errorf("state = %v, want Started", owner.Lifecycle().CurrentState())
	}
}

func TestRegistry_NestedDownEventDuringForwardPass(t *testing.T) {
	owner := NewStandaloneOwner()
	first := &recorder{}
	second := &recorder{}

	owner.Lifecycle().AddObserver(FuncObserver(func(o Owner, e Event) {
		first.events = append(first.events, e)
		if e == EventResume {
			owner.Handle(EventPause)
		}
	}))
	owner.Lifecycle().AddObserver(second)

	owner.Handle(EventCreate)
	owner.Handle(EventStart)
	owner.Handle(EventResume)

	wantFirst := []Event{EventCreate, EventStart, EventResume, EventPause}
	if !equalEvents(first.events, wantFirst) {
		t.Errorf("first events = %v, want %v", first.events, wantFirst)
	}
	// The nested Pause landed before the second observer was driven to
	// Resumed, so it never sees Resume at all.
	wantSecond := []Event{EventCreate, EventStart}
	if !equalEvents(second.events, wantSecond) {
		t.Errorf("second events = %v, want %v", second.events, wantSecond)
	}
	if owner.Lifecycle().CurrentState() != StateStarted {
		t.Errorf("state = %v, want Started", owner.Lifecycle().CurrentState())
	}
}

func TestRegistry_AddObserverDuringCallback(t *testing.T) {
	owner := NewStandaloneOwner()
	nested := &recorder{}

	owner.Lifecycle().AddObserver(FuncObserver(func(o Owner, e Event) {
		if e == EventCreate {
			owner.Lifecycle().AddObserver(nested)
		}
	}))

	owner.Handle(EventCreate)
	owner.Handle(EventStart)

	// The nested observer is picked up by the same forward pass and then
	// driven in order; it never overtakes its registering observer.
	if !equalEvents(nested.events, []Event{EventCreate, EventStart}) {
		t.Errorf("nested observer events = %v, want [Create Start]", nested.events)
	}
}

func TestRegistry_RemoveSelfDuringCallback(t *testing.T) {
	owner := NewStandaloneOwner()
	var self Observer
	log := &recorder{}
	self = FuncObserver(func(o Owner, e Event) {
		log.events = append(log.events, e)
		if e == EventStart {
			owner.Lifecycle().RemoveObserver(self)
		}
	})
	owner.Lifecycle().AddObserver(self)

	owner.Handle(EventCreate)
	owner.Handle(EventStart)
	owner.Handle(EventResume)

	if !equalEvents(log.events, []Event{EventCreate, EventStart}) {
		t.Errorf("events = %v, want [Create Start]", log.events)
	}
}

func TestRegistry_RemoveOtherDuringBackwardPass(t *testing.T) {
	owner := NewStandaloneOwner()
	victim := &recorder{}
	owner.Lifecycle().AddObserver(victim)

	owner.Lifecycle().AddObserver(FuncObserver(func(o Owner, e Event) {
		if e == EventPause {
			owner.Lifecycle().RemoveObserver(victim)
		}
	}))

	owner.Handle(EventCreate)
	owner.Handle(EventStart)
	owner.Handle(EventResume)
	owner.Handle(EventPause)

	// The backward pass visits the second observer first; the victim is
	// removed before its Pause step and receives nothing further.
	want := []Event{EventCreate, EventStart, EventResume}
	if !equalEvents(victim.events, want) {
		t.Errorf("victim events = %v, want %v", victim.events, want)
	}
}

func TestRegistry_LateObserverNeverOvertakesEarlier(t *testing.T) {
	owner := NewStandaloneOwner()
	var order []string

	owner.Lifecycle().AddObserver(FuncObserver(func(o Owner, e Event) {
		order = append(order, "first:"+e.String())
	}))

	owner.Handle(EventCreate)
	owner.Handle(EventStart)

	owner.Lifecycle().AddObserver(FuncObserver(func(o Owner, e Event) {
		order = append(order, "second:"+e.String())
	}))

	owner.Handle(EventResume)

	want := []string{
		"first:Create", "first:Start",
		"second:Create", "second:Start",
		"first:Resume", "second:Resume",
	}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestRegistry_DestroyFromInitialized(t *testing.T) {
	owner := NewStandaloneOwner()
	obs := &recorder{}
	owner.Lifecycle().AddObserver(obs)

	owner.Handle(EventDestroy)

	if !equalEvents(obs.events, []Event{EventDestroy}) {
		t.Errorf("events = %v, want [Destroy]", obs.events)
	}
	if owner.Lifecycle().CurrentState() != StateDestroyed {
		t.Errorf("state = %v, want Destroyed", owner.Lifecycle().CurrentState())
	}
}

func TestOnEvent_Filter(t *testing.T) {
	owner := NewStandaloneOwner()
	var starts, all int

	owner.Lifecycle().AddObserver(OnEvent(EventStart, func(o Owner) { starts++ }))
	owner.Lifecycle().AddObserver(OnEvent(EventAny, func(o Owner) { all++ }))

	owner.Handle(EventCreate)
	owner.Handle(EventStart)
	owner.Handle(EventResume)

	if starts != 1 {
		t.Errorf("starts = %d, want 1", starts)
	}
	if all != 3 {
		t.Errorf("all = %d, want 3", all)
	}
}

func TestRegistry_WithLoopEnforced(t *testing.T) {
	l := loop.New()
	defer l.Stop()

	var owner *StandaloneOwner
	l.Do(func() {
		owner = NewStandaloneOwner(WithLoop(l))
		owner.Handle(EventCreate) // on loop: fine
	})

	defer func() {
		if recover() == nil {
			t.Error("Handle off the loop did not panic")
		}
	}()
	owner.Handle(EventStart)
}
