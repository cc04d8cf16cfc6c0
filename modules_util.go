package fnmock

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/dop251/goja"
	"github.com/google/uuid"
)

// UUIDModule binds the uuid module. The module itself is callable and also exposes
// v4; both return a random version 4 UUID string.
func UUIDModule() Module {
	return ModuleFunc(func(env *Env) (goja.Value, error) {
		vm := env.Runtime()
		gen := vm.ToValue(func(goja.FunctionCall) goja.Value {
			return vm.ToValue(uuid.NewString())
		}).(*goja.Object)

		if err := gen.Set("v4", gen); err != nil {
			return nil, err
		}
		return gen, nil
	})
}

// UtilsModule binds the utils helpers.
func UtilsModule() Module {
	return ModuleFunc(func(env *Env) (goja.Value, error) {
		vm := env.Runtime()
		return env.Object(map[string]func(goja.FunctionCall) goja.Value{
			"isNumeric": func(c goja.FunctionCall) goja.Value {
				return vm.ToValue(isNumeric(c.Argument(0)))
			},
			"randomInt": func(c goja.FunctionCall) goja.Value {
				lo := c.Argument(0).ToInteger()
				hi := c.Argument(1).ToInteger()
				return vm.ToValue(randomInt(lo, hi))
			},
		}), nil
	})
}

// isNumeric reports whether v is a finite number or a string holding one.
func isNumeric(v goja.Value) bool {
	switch t := v.Export().(type) {
	case int64:
		return true
	case float64:
		return !math.IsNaN(t) && !math.IsInf(t, 0)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return false
		}
		n, err := strconv.ParseFloat(s, 64)
		return err == nil && !math.IsNaN(n) && !math.IsInf(n, 0)
	default:
		return false
	}
}

// randomInt returns an integer in [lo, hi]. The bounds may be given in either order
// and may span the whole int64 range.
func randomInt(lo, hi int64) int64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	span := uint64(hi) - uint64(lo)
	if span == math.MaxUint64 {
		return int64(rand.Uint64())
	}
	return lo + int64(rand.Uint64N(span+1))
}
