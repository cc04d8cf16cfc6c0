package fnmock

import (
	"fmt"
	"sort"

	"github.com/dop251/goja"
)

// Module is a capability a handler can require by name.
type Module interface {
	// Bind produces the value returned by require for this module.
	Bind(env *Env) (goja.Value, error)
}

// ModuleFunc adapts a function into a Module.
type ModuleFunc func(env *Env) (goja.Value, error)

// Bind calls f.
func (f ModuleFunc) Bind(env *Env) (goja.Value, error) { return f(env) }

// Modules maps module names to implementations.
type Modules map[string]Module

// Value returns a Module that binds v as-is. Maps, slices and Go functions are
// converted the way Env.ToValue converts them.
func Value(v any) Module {
	return ModuleFunc(func(env *Env) (goja.Value, error) {
		return env.ToValue(v), nil
	})
}

// Script returns a Module whose value is the result of evaluating the JavaScript
// expression src in the handler's runtime.
func Script(src string) Module {
	return ModuleFunc(func(env *Env) (goja.Value, error) {
		v, err := env.Runtime().RunString("(" + src + ")")
		if err != nil {
			return nil, fmt.Errorf("evaluating module script: %w", err)
		}
		return v, nil
	})
}

// validate checks every entry before any of them is applied.
func (m Modules) validate() error {
	for name, mod := range m {
		if name == "" {
			return fmt.Errorf("%w: module name cannot be empty", ErrInvalidArgument)
		}
		if mod == nil {
			return fmt.Errorf("%w: module %q is nil", ErrInvalidArgument, name)
		}
	}
	return nil
}

// Registry is the live name to module mapping consulted by require.
type Registry struct {
	env     *Env
	modules Modules
	bound   map[string]goja.Value
}

func newRegistry(env *Env, defaults Modules) *Registry {
	r := &Registry{
		env:     env,
		modules: make(Modules, len(defaults)),
		bound:   make(map[string]goja.Value),
	}
	for name, m := range defaults {
		r.modules[name] = m
	}
	return r
}

// Set binds name to m. The next require of name observes m.
func (r *Registry) Set(name string, m Module) {
	r.modules[name] = m
	delete(r.bound, name)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.modules[name]
	return ok
}

// Names returns the registered module names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the value for name, binding it on first use. Repeated requires of
// the same module return the same value until the module is replaced.
func (r *Registry) Resolve(name string) (goja.Value, error) {
	if v, ok := r.bound[name]; ok {
		return v, nil
	}

	m, ok := r.modules[name]
	if !ok {
		return nil, fmt.Errorf("%w: Cannot find module '%s'", ErrModuleNotFound, name)
	}

	v, err := m.Bind(r.env)
	if err != nil {
		return nil, fmt.Errorf("binding module %q: %w", name, err)
	}

	r.bound[name] = v
	return v, nil
}
