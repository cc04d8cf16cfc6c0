package fnmock

import (
	"errors"
	"sort"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/fnmock/fnmock/codec"
	"github.com/fnmock/fnmock/deferred"
	"github.com/fnmock/fnmock/internal/jsval"
	"github.com/fnmock/fnmock/kvstore"
	"github.com/fnmock/fnmock/pubnub"
	"github.com/fnmock/fnmock/vault"
	"github.com/fnmock/fnmock/xhr"
)

// Env is the per-instance environment modules bind against. It gives access to the
// JavaScript runtime and to the mock state owned by the Instance.
type Env struct {
	vm       *goja.Runtime
	log      *zap.Logger
	registry *Registry

	store  *kvstore.Store
	pubnub *pubnub.Mock
	vault  *vault.Vault
	fetch  xhr.Client
}

// Runtime returns the JavaScript runtime the handler runs in.
func (e *Env) Runtime() *goja.Runtime { return e.vm }

// Logger returns the instance logger.
func (e *Env) Logger() *zap.Logger { return e.log }

// KVStore returns the instance key/value store.
func (e *Env) KVStore() *kvstore.Store { return e.store }

// PubNub returns the instance messaging mock.
func (e *Env) PubNub() *pubnub.Mock { return e.pubnub }

// Vault returns the instance secret store.
func (e *Env) Vault() *vault.Vault { return e.vault }

// Fetcher returns the client behind the xhr module.
func (e *Env) Fetcher() xhr.Client { return e.fetch }

// Export converts a JavaScript value to Go. undefined and null become nil.
func (e *Env) Export(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return v.Export()
}

// Arg exports the i-th argument of call.
func (e *Env) Arg(call goja.FunctionCall, i int) any {
	return e.Export(call.Argument(i))
}

// ToValue converts a Go value to a plain JavaScript value. Maps become ordinary
// objects and slices become arrays, recursively, so handlers can mutate and spread
// them. Deferreds become promises.
func (e *Env) ToValue(v any) goja.Value {
	switch t := v.(type) {
	case nil:
		return goja.Null()
	case goja.Value:
		return t
	case *deferred.Deferred:
		return e.Promise(t)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := e.vm.NewObject()
		for _, k := range keys {
			_ = obj.Set(k, e.ToValue(t[k]))
		}
		return obj
	case codec.Object:
		obj := e.vm.NewObject()
		for _, f := range t {
			_ = obj.Set(f.Key, e.ToValue(f.Value))
		}
		return obj
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
		return e.ToValue(m)
	case map[string]float64:
		m := make(map[string]any, len(t))
		for k, n := range t {
			m[k] = n
		}
		return e.ToValue(m)
	case []any:
		items := make([]any, len(t))
		for i, item := range t {
			items[i] = e.ToValue(item)
		}
		return e.vm.NewArray(items...)
	case []string:
		items := make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
		return e.vm.NewArray(items...)
	default:
		return e.vm.ToValue(v)
	}
}

// NewError creates a JavaScript Error with msg.
func (e *Env) NewError(msg string) *goja.Object {
	obj, err := e.vm.New(e.vm.Get("Error"), e.vm.ToValue(msg))
	if err != nil {
		// Error is always constructible unless a handler replaced it.
		return e.vm.NewGoError(errors.New(msg))
	}
	return obj
}

// Throw raises err as a JavaScript exception. It must only be called from inside a
// function invoked by the runtime.
func (e *Env) Throw(err error) {
	panic(e.NewError(err.Error()))
}

// Promise returns a promise that settles with the outcome of d.
func (e *Env) Promise(d *deferred.Deferred) goja.Value {
	return e.PromiseFunc(d, e.ToValue)
}

// PromiseFunc is Promise with a custom conversion for the fulfilled value.
func (e *Env) PromiseFunc(d *deferred.Deferred, convert func(any) goja.Value) goja.Value {
	p, resolve, reject := e.vm.NewPromise()
	d.Then(func(v any, err error) {
		if err != nil {
			reject(e.rejection(err))
			return
		}
		resolve(convert(v))
	})
	return e.vm.ToValue(p)
}

// rejection is the reason a handler observes for err.
func (e *Env) rejection(err error) goja.Value {
	if raw, ok := deferred.RejectionValue(err); ok {
		return e.ToValue(raw)
	}
	return e.NewError(err.Error())
}

// Object builds a plain object exposing fns as methods.
func (e *Env) Object(fns map[string]func(goja.FunctionCall) goja.Value) *goja.Object {
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names)

	obj := e.vm.NewObject()
	for _, name := range names {
		_ = obj.Set(name, fns[name])
	}
	return obj
}

// undefinedIfNil converts v, mapping nil to undefined rather than null.
func (e *Env) undefinedIfNil(v any) goja.Value {
	if v == nil {
		return goja.Undefined()
	}
	return e.ToValue(v)
}

// stringArg renders the i-th argument as a string, treating falsy values as "".
func (e *Env) stringArg(call goja.FunctionCall, i int) string {
	v := call.Argument(i)
	if !v.ToBoolean() {
		return ""
	}
	return v.String()
}

// require resolves a module through the live registry.
func (e *Env) require(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	v, err := e.registry.Resolve(name)
	if err != nil {
		e.log.Debug("require failed", zap.String("module", name), zap.Error(err))
		if errors.Is(err, ErrModuleNotFound) {
			panic(e.NewError("Cannot find module '" + name + "'"))
		}
		e.Throw(err)
	}
	return v
}

// reason describes a thrown or rejected JavaScript value.
func (e *Env) reason(v goja.Value) *HandlerError {
	he := &HandlerError{Value: e.Export(v)}
	if obj, ok := v.(*goja.Object); ok {
		if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
			he.Message = msg.String()
			return he
		}
	}
	he.Message = jsval.String(he.Value)
	return he
}

// failure converts an error returned by the runtime into a HandlerError.
func (e *Env) failure(err error) *HandlerError {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return e.reason(ex.Value())
	}
	return &HandlerError{Message: err.Error()}
}
