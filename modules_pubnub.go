package fnmock

import (
	"github.com/dop251/goja"

	"github.com/fnmock/fnmock/deferred"
)

// PubNubModule binds the instance messaging, presence and access-control mock.
func PubNubModule() Module {
	return ModuleFunc(func(env *Env) (goja.Value, error) {
		m := env.PubNub()

		op := func(fn func(any) *deferred.Deferred) func(goja.FunctionCall) goja.Value {
			return func(c goja.FunctionCall) goja.Value {
				return env.Promise(fn(env.Arg(c, 0)))
			}
		}

		obj := env.Object(map[string]func(goja.FunctionCall) goja.Value{
			"time": func(goja.FunctionCall) goja.Value {
				return env.Promise(m.Time())
			},
			"publish":  op(m.Publish),
			"fire":     op(m.Fire),
			"history":  op(m.History),
			"whereNow": op(m.WhereNow),
			"hereNow":  op(m.HereNow),
			"getState": op(m.GetState),
			"setState": op(m.SetState),
			"grant":    op(m.Grant),
		})

		groups := env.Object(map[string]func(goja.FunctionCall) goja.Value{
			"addChannels":    op(m.AddChannels),
			"removeChannels": op(m.RemoveChannels),
		})
		if err := obj.Set("channelGroups", groups); err != nil {
			return nil, err
		}

		return obj, nil
	})
}
