package fnmock

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/fnmock/fnmock/deferred"
	"github.com/fnmock/fnmock/fixture"
	"github.com/fnmock/fnmock/internal/jsval"
	"github.com/fnmock/fnmock/kvstore"
	"github.com/fnmock/fnmock/pubnub"
	"github.com/fnmock/fnmock/vault"
)

// Request is the request object passed to a handler. Keys become properties.
type Request map[string]any

// Response is the initial state of the response object passed to a handler. Status
// and Headers are updated with the handler's changes after each invocation.
type Response struct {
	Status  int
	Headers map[string]string
}

// Result is the decoded outcome of a handler invocation.
type Result struct {
	// Status is the status reported through response.send.
	Status int
	// Body is the value passed to response.send, the message settled by request.ok or
	// request.abort, or the raw handler result when neither was used.
	Body any
	// Message is set for results produced by request.ok or request.abort.
	Message string
}

// Instance is a loaded handler together with its own mock state and module registry.
// Invocations are serialized.
type Instance struct {
	mu       sync.Mutex
	path     string
	artifact string
	env      *Env
	registry *Registry
	handler  goja.Callable
	log      *zap.Logger
}

// Path returns the handler source path.
func (i *Instance) Path() string { return i.path }

// Artifact returns the path of the transformed copy written for this instance, or ""
// when artifacts are disabled.
func (i *Instance) Artifact() string { return i.artifact }

// Modules returns the names currently registered for require.
func (i *Instance) Modules() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.registry.Names()
}

// KVStore returns the instance key/value store.
func (i *Instance) KVStore() *kvstore.Store { return i.env.store }

// PubNub returns the instance messaging mock.
func (i *Instance) PubNub() *pubnub.Mock { return i.env.pubnub }

// Vault returns the instance secret store.
func (i *Instance) Vault() *vault.Vault { return i.env.vault }

// MockStorageData replaces the key/value namespace with data. The map stays live:
// handler writes are visible in it.
func (i *Instance) MockStorageData(data map[string]any) error {
	if data == nil {
		return fmt.Errorf("%w: storage data must be a map", ErrInvalidArgument)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.env.store.ReplaceData(data)
}

// MockCounterData replaces the counter namespace with counters.
func (i *Instance) MockCounterData(counters map[string]float64) error {
	if counters == nil {
		return fmt.Errorf("%w: counter data must be a map", ErrInvalidArgument)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.env.store.ReplaceCounters(counters)
}

// StorageData returns the live key/value namespace.
func (i *Instance) StorageData() map[string]any {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.env.store.Data()
}

// CounterData returns the live counter namespace.
func (i *Instance) CounterData() map[string]float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.env.store.Counters()
}

// Snapshot is a point-in-time copy of an instance's storage and counters.
type Snapshot struct {
	Storage  map[string]any     `json:"storage"`
	Counters map[string]float64 `json:"counters"`
}

// Snapshot copies both namespaces while holding the invocation lock. Unlike
// StorageData and CounterData, the result is safe to read while other goroutines
// invoke the handler.
func (i *Instance) Snapshot() Snapshot {
	i.mu.Lock()
	defer i.mu.Unlock()

	data := i.env.store.Data()
	storage := make(map[string]any, len(data))
	for k, v := range data {
		storage[k] = v
	}

	counters := make(map[string]float64, len(i.env.store.Counters()))
	for k, n := range i.env.store.Counters() {
		counters[k] = n
	}

	return Snapshot{Storage: storage, Counters: counters}
}

// ResetState empties storage, counters and the store's call history.
func (i *Instance) ResetState() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.env.store.Reset()
}

// MockSecrets replaces the secrets served by the vault module.
func (i *Instance) MockSecrets(secrets map[string]string) error {
	if secrets == nil {
		return fmt.Errorf("%w: secrets must be a map", ErrInvalidArgument)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.env.vault.SetSecrets(secrets)
	return nil
}

// OverrideModules replaces the named modules. Every require performed afterwards
// observes the new bindings. Nothing is applied if any entry is invalid.
func (i *Instance) OverrideModules(mods Modules) error {
	if mods == nil {
		return fmt.Errorf("%w: overrides must be a map", ErrInvalidArgument)
	}
	if err := mods.validate(); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	for name, m := range mods {
		i.registry.Set(name, m)
		i.log.Debug("module overridden", zap.String("module", name))
	}
	return nil
}

// ApplyFixture seeds storage, counters and secrets from f. Sections left empty in the
// fixture are not touched.
func (i *Instance) ApplyFixture(f *fixture.Fixture) error {
	if f == nil {
		return fmt.Errorf("%w: fixture cannot be nil", ErrInvalidArgument)
	}
	if f.Storage != nil {
		if err := i.MockStorageData(f.Storage); err != nil {
			return err
		}
	}
	if f.Counters != nil {
		if err := i.MockCounterData(f.Counters); err != nil {
			return err
		}
	}
	if f.Secrets != nil {
		if err := i.MockSecrets(f.Secrets); err != nil {
			return err
		}
	}
	return nil
}

// Invoke runs the handler with req and resp. The returned Deferred settles with the
// exported handler result; promises returned by the handler are unwrapped. A handler
// that throws yields a rejected Deferred carrying a *HandlerError, and one whose
// promise never settles yields a pending Deferred.
func (i *Instance) Invoke(req Request, resp *Response) *deferred.Deferred {
	i.mu.Lock()
	defer i.mu.Unlock()

	if resp == nil {
		resp = &Response{}
	}
	if resp.Status == 0 {
		resp.Status = 200
	}

	env := i.env
	reqObj := i.request(req)
	resObj := i.response(resp)

	ret, err := i.handler(goja.Undefined(), reqObj, resObj)
	copyResponse(env, resObj, resp)
	if err != nil {
		he := env.failure(err)
		i.log.Debug("handler threw", zap.String("message", he.Message))
		return deferred.Reject(he)
	}

	p, ok := env.Export(ret).(*goja.Promise)
	if !ok {
		return deferred.Resolve(env.Export(ret))
	}

	switch p.State() {
	case goja.PromiseStateFulfilled:
		return deferred.Resolve(env.Export(p.Result()))
	case goja.PromiseStateRejected:
		he := env.reason(p.Result())
		i.log.Debug("handler rejected", zap.String("message", he.Message))
		return deferred.Reject(he)
	default:
		d, _, _ := deferred.New()
		return d
	}
}

// Call invokes the handler and decodes its outcome.
func (i *Instance) Call(req Request, resp *Response) (*Result, error) {
	v, err := i.Invoke(req, resp).Await()
	if err != nil {
		return nil, err
	}
	return decodeResult(v), nil
}

func decodeResult(v any) *Result {
	m, ok := v.(map[string]any)
	if !ok {
		return &Result{Body: v}
	}

	r := &Result{Body: v}
	if body, ok := m["body"]; ok {
		r.Body = body
	} else if msg, ok := m["message"]; ok {
		r.Body = msg
	}
	if n, ok := jsval.Number(m["status"]); ok {
		r.Status = int(n)
	}
	if msg, ok := m["message"].(string); ok {
		r.Message = msg
	}
	return r
}

// request builds the request object, adding ok and abort unless the caller supplied
// its own.
func (i *Instance) request(req Request) *goja.Object {
	env := i.env
	obj, _ := env.ToValue(map[string]any(req)).(*goja.Object)
	if obj == nil {
		obj = env.Runtime().NewObject()
	}

	settle := func(fulfil bool) func(goja.FunctionCall) goja.Value {
		return func(c goja.FunctionCall) goja.Value {
			msg := c.Argument(0)
			if goja.IsUndefined(msg) {
				if m := obj.Get("message"); m != nil {
					msg = m
				}
			}
			out := env.Runtime().NewObject()
			_ = out.Set("message", msg)

			p, resolve, reject := env.Runtime().NewPromise()
			if fulfil {
				resolve(out)
			} else {
				reject(out)
			}
			return env.Runtime().ToValue(p)
		}
	}

	if obj.Get("ok") == nil {
		_ = obj.Set("ok", settle(true))
	}
	if obj.Get("abort") == nil {
		_ = obj.Set("abort", settle(false))
	}
	return obj
}

// response builds the response object whose send resolves {status, body}.
func (i *Instance) response(resp *Response) *goja.Object {
	env := i.env
	vm := env.Runtime()

	obj := vm.NewObject()
	_ = obj.Set("status", resp.Status)
	_ = obj.Set("headers", env.ToValue(stringMap(resp.Headers)))
	_ = obj.Set("send", func(c goja.FunctionCall) goja.Value {
		self, ok := c.This.(*goja.Object)
		if !ok {
			self = obj
		}

		body := c.Argument(0)
		if goja.IsUndefined(body) {
			body = vm.ToValue("")
		}

		out := vm.NewObject()
		_ = out.Set("body", body)
		_ = out.Set("status", self.Get("status"))
		return env.Promise(deferred.Resolve(out))
	})
	return obj
}

func stringMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// copyResponse reflects the handler's changes to status and headers into resp.
func copyResponse(env *Env, obj *goja.Object, resp *Response) {
	if n, ok := jsval.Number(env.Export(obj.Get("status"))); ok {
		resp.Status = int(n)
	}

	h, ok := obj.Get("headers").(*goja.Object)
	if !ok {
		return
	}
	headers := make(map[string]string)
	for _, k := range h.Keys() {
		headers[k] = h.Get(k).String()
	}
	resp.Headers = headers
}
