package fnmock

import (
	"github.com/dop251/goja"
)

// KVStoreModule binds the instance key/value store. get resolves undefined for
// missing keys; set and removeItem resolve null.
func KVStoreModule() Module {
	return ModuleFunc(func(env *Env) (goja.Value, error) {
		s := env.KVStore()

		get := func(c goja.FunctionCall) goja.Value {
			return env.PromiseFunc(s.Get(env.Arg(c, 0)), env.undefinedIfNil)
		}
		set := func(c goja.FunctionCall) goja.Value {
			return env.Promise(s.Set(env.Arg(c, 0), env.Arg(c, 1), env.Arg(c, 2)))
		}

		return env.Object(map[string]func(goja.FunctionCall) goja.Value{
			"get":     get,
			"getItem": get,
			"set":     set,
			"setItem": set,
			"incrCounter": func(c goja.FunctionCall) goja.Value {
				return env.Promise(s.IncrCounter(env.Arg(c, 0), env.Arg(c, 1)))
			},
			"getCounter": func(c goja.FunctionCall) goja.Value {
				return env.Promise(s.GetCounter(env.Arg(c, 0)))
			},
			"removeItem": func(c goja.FunctionCall) goja.Value {
				return env.Promise(s.RemoveItem(env.Arg(c, 0)))
			},
		}), nil
	})
}
