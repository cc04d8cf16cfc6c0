package fnmock

import (
	"strconv"

	"github.com/dop251/goja"

	"github.com/fnmock/fnmock/codec"
)

// Base64Module binds the codec/base64 functions. They return strings directly.
func Base64Module() Module {
	return ModuleFunc(func(env *Env) (goja.Value, error) {
		str := func(fn func(string) string) func(goja.FunctionCall) goja.Value {
			return func(c goja.FunctionCall) goja.Value {
				return env.Runtime().ToValue(fn(env.stringArg(c, 0)))
			}
		}

		return env.Object(map[string]func(goja.FunctionCall) goja.Value{
			"btoa":         str(codec.Btoa),
			"atob":         str(codec.Atob),
			"encodeString": str(codec.EncodeString),
			"decodeString": str(codec.DecodeString),
		}), nil
	})
}

// QueryStringModule binds codec/query_string.
func QueryStringModule() Module {
	return ModuleFunc(func(env *Env) (goja.Value, error) {
		return env.Object(map[string]func(goja.FunctionCall) goja.Value{
			"stringify": func(c goja.FunctionCall) goja.Value {
				return env.Runtime().ToValue(codec.Stringify(ordered(c.Argument(0))))
			},
			"parse": func(c goja.FunctionCall) goja.Value {
				return env.ToValue(codec.Parse(env.stringArg(c, 0)))
			},
		}), nil
	})
}

// AuthModule binds codec/auth.
func AuthModule() Module {
	return ModuleFunc(func(env *Env) (goja.Value, error) {
		return env.Object(map[string]func(goja.FunctionCall) goja.Value{
			"basic": func(c goja.FunctionCall) goja.Value {
				return env.Runtime().ToValue(codec.Basic(env.stringArg(c, 0), env.stringArg(c, 1)))
			},
		}), nil
	})
}

// ordered exports v keeping the property order of objects.
func ordered(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		return v.Export()
	}

	switch obj.ClassName() {
	case "Array":
		n := int(obj.Get("length").ToInteger())
		out := make([]any, n)
		for i := 0; i < n; i++ {
			out[i] = ordered(obj.Get(strconv.Itoa(i)))
		}
		return out
	case "Object":
		keys := obj.Keys()
		out := make(codec.Object, 0, len(keys))
		for _, k := range keys {
			out = append(out, codec.Field{Key: k, Value: ordered(obj.Get(k))})
		}
		return out
	default:
		return obj.Export()
	}
}
