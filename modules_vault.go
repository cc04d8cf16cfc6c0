package fnmock

import (
	"github.com/dop251/goja"
)

// VaultModule binds the instance secret store. Invalid keys reject with a plain
// string rather than an Error.
func VaultModule() Module {
	return ModuleFunc(func(env *Env) (goja.Value, error) {
		v := env.Vault()
		return env.Object(map[string]func(goja.FunctionCall) goja.Value{
			"get": func(c goja.FunctionCall) goja.Value {
				return env.Promise(v.Get(env.Arg(c, 0)))
			},
		}), nil
	})
}
