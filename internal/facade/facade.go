// Package facade exposes a process-wide toast API that can be called from
// anywhere, whether or not a registry is mounted.
//
// Calls made while nothing is bound are silently dropped. Binding is
// last-mounted-wins: each Bind replaces the previous target, and a release
// only unbinds if its target is still the current one.
package facade

import (
	"sync"

	"github.com/jmylchreest/toasty/internal/model"
)

// Target is what the facade forwards to, usually a *registry.Registry.
type Target interface {
	Push(opts model.Options) string
	Remove(id string)
	Clear()
}

// Facade forwards toast calls to the currently bound target.
type Facade struct {
	mu     sync.RWMutex
	target Target
	token  uint64
}

// Global is the process-wide binding used by the daemon and its adapters.
var Global = &Facade{}

// New creates an unbound facade.
func New() *Facade {
	return &Facade{}
}

// Bind forwards every call to target until release is called or another
// target is bound.
func (f *Facade) Bind(target Target) (release func()) {
	f.mu.Lock()
	f.token++
	token := f.token
	f.target = target
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.token == token {
				f.target = nil
			}
		})
	}
}

// Bound reports whether a target is bound.
func (f *Facade) Bound() bool {
	return f.current() != nil
}

// Push shows a toast and returns its id, or "" if nothing is bound.
func (f *Facade) Push(opts model.Options) string {
	t := f.current()
	if t == nil {
		return ""
	}
	return t.Push(opts)
}

// Success shows a success toast.
func (f *Facade) Success(title, description string) string {
	return f.Push(model.Options{Title: title, Description: description, Variant: model.VariantSuccess})
}

// Warning shows a warning toast.
func (f *Facade) Warning(title, description string) string {
	return f.Push(model.Options{Title: title, Description: description, Variant: model.VariantWarning})
}

// Danger shows a danger toast.
func (f *Facade) Danger(title, description string) string {
	return f.Push(model.Options{Title: title, Description: description, Variant: model.VariantDanger})
}

// Info shows a default-variant toast.
func (f *Facade) Info(title, description string) string {
	return f.Push(model.Options{Title: title, Description: description, Variant: model.VariantDefault})
}

// Remove closes a toast.
func (f *Facade) Remove(id string) {
	if t := f.current(); t != nil {
		t.Remove(id)
	}
}

// Clear closes every toast.
func (f *Facade) Clear() {
	if t := f.current(); t != nil {
		t.Clear()
	}
}

func (f *Facade) current() Target {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.target
}
