package lifecycle

// StandaloneOwner is a minimal Owner for components that have no natural
// owner type of their own, such as tests and small daemons. It owns its
// Registry and forwards events to it.
type StandaloneOwner struct {
	reg *Registry
}

// NewStandaloneOwner creates an owner with a fresh registry.
func NewStandaloneOwner(opts ...Option) *StandaloneOwner {
	o := &StandaloneOwner{}
	o.reg = NewRegistry(o, opts...)
	return o
}

// Lifecycle returns the owner's registry.
func (o *StandaloneOwner) Lifecycle() *Registry {
	return o.reg
}

// Handle dispatches an event on the owner's registry.
func (o *StandaloneOwner) Handle(event Event) {
	o.reg.Handle(event)
}
