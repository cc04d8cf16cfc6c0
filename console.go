package fnmock

import (
	"strings"

	"github.com/dop251/goja"

	"github.com/fnmock/fnmock/logging"
)

// installConsole defines the console global backed by client.
func installConsole(env *Env, client logging.Client) error {
	line := func(fn func(string)) func(goja.FunctionCall) goja.Value {
		return func(c goja.FunctionCall) goja.Value {
			parts := make([]string, len(c.Arguments))
			for i, arg := range c.Arguments {
				parts[i] = consoleString(env.Runtime(), arg)
			}
			fn(strings.Join(parts, " "))
			return goja.Undefined()
		}
	}

	console := env.Object(map[string]func(goja.FunctionCall) goja.Value{
		"log":   line(client.Info),
		"info":  line(client.Info),
		"warn":  line(client.Warn),
		"error": line(client.Error),
		"debug": line(client.Debug),
		"trace": line(client.Trace),
	})
	return env.Runtime().Set("console", console)
}

// consoleString formats objects as JSON and everything else with String.
func consoleString(vm *goja.Runtime, v goja.Value) string {
	if isPlainObject(v) {
		if s, err := stringify(vm, v); err == nil {
			return s
		}
	}
	return v.String()
}
