package terminal

import "sync"

// Registry maps terminal ids to their machines, creating one lazily the
// first time a terminal is seen
type Registry struct {
	mu         sync.RWMutex
	machines   map[string]*Machine
	newMachine func(terminalID string) *Machine
}

// NewRegistry creates a registry using the given machine factory
func NewRegistry(newMachine func(terminalID string) *Machine) *Registry {
	return &Registry{
		machines:   make(map[string]*Machine),
		newMachine: newMachine,
	}
}

// Get returns the machine for the terminal, creating it if needed
func (r *Registry) Get(terminalID string) *Machine {
	r.mu.RLock()
	machine, ok := r.machines[terminalID]
	r.mu.RUnlock()
	if ok {
		return machine
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if machine, ok := r.machines[terminalID]; ok {
		return machine
	}
	machine = r.newMachine(terminalID)
	r.machines[terminalID] = machine
	return machine
}
