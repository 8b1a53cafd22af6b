package command

import "sync"

// Registry holds the registered command set, keyed by name. It is built at
// startup and injected into the dispatcher and the transport layer.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds commands. A duplicate name replaces the earlier command.
func (r *Registry) Register(cmds ...Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cmd := range cmds {
		if _, exists := r.commands[cmd.Name()]; !exists {
			r.order = append(r.order, cmd.Name())
		}
		r.commands[cmd.Name()] = cmd
	}
}

func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// All returns commands in registration order.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}
