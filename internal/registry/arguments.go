package registry

import "github.com/vk/modelspec/internal/deferred"

// Arguments is an insertion-ordered mapping of argument names to deferred
// values. Translation depends on a stable order (defaults, then remapped
// user arguments, then engine arguments), so a plain map is not enough.
type Arguments struct {
	names []string
	vals  map[string]deferred.Value
}

// NewArguments returns an empty argument set.
func NewArguments() *Arguments {
	return &Arguments{vals: make(map[string]deferred.Value)}
}

// Set stores a value under name, preserving the position of an existing name.
func (a *Arguments) Set(name string, v deferred.Value) {
	if _, ok := a.vals[name]; !ok {
		a.names = append(a.names, name)
	}
	a.vals[name] = v
}

// Get returns the value stored under name.
func (a *Arguments) Get(name string) (deferred.Value, bool) {
	v, ok := a.vals[name]
	return v, ok
}

// Has reports whether name is present.
func (a *Arguments) Has(name string) bool {
	_, ok := a.vals[name]
	return ok
}

// Delete removes name. Translation hooks use this to drop arguments an
// engine cannot accept.
func (a *Arguments) Delete(name string) {
	if _, ok := a.vals[name]; !ok {
		return
	}
	delete(a.vals, name)
	for i, n := range a.names {
		if n == name {
			a.names = append(a.names[:i], a.names[i+1:]...)
			break
		}
	}
}

// Names returns the argument names in insertion order.
func (a *Arguments) Names() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

// Len returns the number of arguments.
func (a *Arguments) Len() int {
	return len(a.names)
}

// Clone returns an independent copy.
func (a *Arguments) Clone() *Arguments {
	out := NewArguments()
	for _, name := range a.names {
		out.Set(name, a.vals[name])
	}
	return out
}
