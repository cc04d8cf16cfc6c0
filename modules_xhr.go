package fnmock

import (
	"errors"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/fnmock/fnmock/deferred"
	"github.com/fnmock/fnmock/xhr"
)

// XHRModule binds xhr.fetch to the instance fetch client.
func XHRModule() Module {
	return ModuleFunc(func(env *Env) (goja.Value, error) {
		return env.Object(map[string]func(goja.FunctionCall) goja.Value{
			"fetch": func(c goja.FunctionCall) goja.Value {
				url := env.stringArg(c, 0)
				opts, err := fetchOptions(env, c.Argument(1))
				if err != nil {
					return env.Promise(deferred.Reject(err))
				}

				env.Logger().Debug("fetch", zap.String("method", opts.Method), zap.String("url", url))

				resp, err := env.Fetcher().Fetch(url, opts)
				if err != nil {
					return env.Promise(deferred.Reject(err))
				}
				return env.Promise(deferred.Resolve(fetchResponse(env, resp)))
			},
		}), nil
	})
}

// fetchOptions reads the {method, headers, body} options object. Object bodies are
// sent as JSON.
func fetchOptions(env *Env, v goja.Value) (xhr.Options, error) {
	var opts xhr.Options

	obj, ok := v.(*goja.Object)
	if !ok {
		return opts, nil
	}

	if m := obj.Get("method"); m != nil && m.ToBoolean() {
		opts.Method = m.String()
	}

	if h, ok := obj.Get("headers").(*goja.Object); ok {
		opts.Headers = make(map[string]string)
		for _, k := range h.Keys() {
			opts.Headers[k] = h.Get(k).String()
		}
	}

	body := obj.Get("body")
	switch {
	case body == nil || goja.IsUndefined(body) || goja.IsNull(body):
	case isPlainObject(body):
		s, err := stringify(env.Runtime(), body)
		if err != nil {
			return opts, err
		}
		opts.Body = []byte(s)
	default:
		opts.Body = []byte(body.String())
	}

	return opts, nil
}

// fetchResponse builds the response object handed to the handler.
func fetchResponse(env *Env, resp *xhr.Response) *goja.Object {
	vm := env.Runtime()

	headers := vm.NewObject()
	for name, values := range resp.Headers {
		if len(values) > 0 {
			_ = headers.Set(name, values[0])
		}
	}

	body := string(resp.Body)
	obj := env.Object(map[string]func(goja.FunctionCall) goja.Value{
		"text": func(goja.FunctionCall) goja.Value {
			return env.Promise(deferred.Resolve(body))
		},
		"json": func(goja.FunctionCall) goja.Value {
			v, err := parseJSON(vm, body)
			if err != nil {
				return env.Promise(deferred.Reject(err))
			}
			return env.Promise(deferred.Resolve(v))
		},
	})
	_ = obj.Set("status", resp.Status)
	_ = obj.Set("statusText", resp.StatusText)
	_ = obj.Set("ok", resp.OK())
	_ = obj.Set("url", resp.URL)
	_ = obj.Set("headers", headers)
	_ = obj.Set("body", body)
	return obj
}

func isPlainObject(v goja.Value) bool {
	obj, ok := v.(*goja.Object)
	if !ok {
		return false
	}
	switch obj.ClassName() {
	case "Object", "Array":
		return true
	default:
		return false
	}
}

func stringify(vm *goja.Runtime, v goja.Value) (string, error) {
	fn, ok := goja.AssertFunction(vm.Get("JSON").ToObject(vm).Get("stringify"))
	if !ok {
		return "", errors.New("JSON.stringify is not a function")
	}
	out, err := fn(goja.Undefined(), v)
	if err != nil {
		return "", err
	}
	if goja.IsUndefined(out) {
		return "", nil
	}
	return out.String(), nil
}

func parseJSON(vm *goja.Runtime, s string) (goja.Value, error) {
	fn, ok := goja.AssertFunction(vm.Get("JSON").ToObject(vm).Get("parse"))
	if !ok {
		return nil, errors.New("JSON.parse is not a function")
	}
	return fn(goja.Undefined(), vm.ToValue(s))
}
