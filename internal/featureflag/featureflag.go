// Package featureflag holds process-wide runtime toggles. State lives for
// the process lifetime only; a multi-instance deployment needs these moved
// to shared persistent configuration.
package featureflag

import (
	"sync"

	"go.uber.org/fx"
)

// FlagDualLogin gates concurrent sessions from multiple devices.
const FlagDualLogin = "dual_login"

type Registry struct {
	mu    sync.RWMutex
	flags map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{
		flags: map[string]bool{
			FlagDualLogin: false,
		},
	}
}

// Enabled reports the flag's current value. Unknown flags are off.
func (r *Registry) Enabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.flags[name]
}

// Known reports whether the flag was registered at startup.
func (r *Registry) Known(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.flags[name]
	return ok
}

// Set updates a registered flag and reports whether it existed.
func (r *Registry) Set(name string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.flags[name]; !ok {
		return false
	}
	r.flags[name] = enabled
	return true
}

// All returns a copy of the current flag state.
func (r *Registry) All() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool, len(r.flags))
	for name, enabled := range r.flags {
		out[name] = enabled
	}
	return out
}

var Module = fx.Module("featureflag",
	fx.Provide(NewRegistry),
)
