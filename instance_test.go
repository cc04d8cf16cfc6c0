package fnmock

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fnmock/fnmock/deferred"
	"github.com/fnmock/fnmock/fixture"
	"github.com/fnmock/fnmock/internal/jsval"
	xhrmock "github.com/fnmock/fnmock/xhr/mock"
)

func load(t *testing.T, path string, overrides Modules) *Instance {
	t.Helper()
	inst, err := Load(path, overrides)
	if err != nil {
		t.Fatalf("Load(%s) returned error: %v", path, err)
	}
	return inst
}

func call(t *testing.T, inst *Instance, req Request) *Result {
	t.Helper()
	res, err := inst.Call(req, &Response{Status: 200})
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	return res
}

func TestHelloWorld(t *testing.T) {
	inst := load(t, "testdata/endpoint.js", nil)

	res := call(t, inst, Request{"body": "{}", "params": map[string]any{}})
	if res.Status != 200 || res.Body != "Hello World!" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestStorageGet(t *testing.T) {
	inst := load(t, "testdata/endpoint.js", nil)
	if err := inst.MockStorageData(map[string]any{"foo": "bar"}); err != nil {
		t.Fatalf("MockStorageData returned error: %v", err)
	}

	res := call(t, inst, Request{"getValue": true, "key": "foo"})
	if res.Status != 200 || res.Body != "bar" {
		t.Fatalf("expected {200, bar}, got %+v", res)
	}

	// A missing key resolves undefined, which send turns into ""
	res = call(t, inst, Request{"getValue": true, "key": "nope"})
	if res.Body != "" {
		t.Fatalf("expected empty body for missing key, got %#v", res.Body)
	}
}

func TestStorageSet(t *testing.T) {
	tt := []struct {
		name       string
		req        Request
		wantStatus int
		wantBody   any
		wantStored bool
	}{
		{
			name:       "string key",
			req:        Request{"setValue": true, "key": "k", "value": "v", "ttl": 60},
			wantStatus: 200,
			wantStored: true,
		},
		{
			name:       "numeric key",
			req:        Request{"setValue": true, "key": 7, "value": "v"},
			wantStatus: 400,
			wantBody:   "not a valid key string. kvstore.set expects a string.",
		},
		{
			name:       "non-numeric ttl",
			req:        Request{"setValue": true, "key": "k", "value": "v", "ttl": "soon"},
			wantStatus: 400,
			wantBody:   "ttl must be a number.",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			inst := load(t, "testdata/endpoint.js", nil)

			res := call(t, inst, tc.req)
			if res.Status != tc.wantStatus || res.Body != tc.wantBody {
				t.Fatalf("expected {%d, %v}, got %+v", tc.wantStatus, tc.wantBody, res)
			}

			_, stored := inst.StorageData()["k"]
			if stored != tc.wantStored {
				t.Fatalf("expected stored=%v, got data %v", tc.wantStored, inst.StorageData())
			}
		})
	}
}

func TestCounters(t *testing.T) {
	inst := load(t, "testdata/endpoint.js", nil)

	res := call(t, inst, Request{"counter": true, "key": "c", "amount": 5})
	if res.Body != int64(5) {
		t.Fatalf("expected 5, got %#v", res.Body)
	}

	res = call(t, inst, Request{"counter": true, "key": "c", "amount": 3})
	if res.Body != int64(8) {
		t.Fatalf("expected 8, got %#v", res.Body)
	}

	if got := inst.CounterData()["c"]; got != 8 {
		t.Fatalf("expected live counter 8, got %v", got)
	}

	// Absent amount increments by one
	res = call(t, inst, Request{"counter": true, "key": "fresh"})
	if res.Body != int64(1) {
		t.Fatalf("expected 1, got %#v", res.Body)
	}
}

func TestGetCounterAbsent(t *testing.T) {
	inst := load(t, "testdata/endpoint.js", nil)

	v, err := inst.KVStore().GetCounter("missing").Await()
	if err != nil {
		t.Fatalf("GetCounter returned error: %v", err)
	}
	if v != float64(0) {
		t.Fatalf("expected 0, got %#v", v)
	}
}

func TestIndependentLoads(t *testing.T) {
	a := load(t, "testdata/endpoint.js", nil)
	b := load(t, "testdata/endpoint.js", nil)

	call(t, a, Request{"setValue": true, "key": "k", "value": "from-a"})
	call(t, a, Request{"counter": true, "key": "c"})

	if _, ok := b.StorageData()["k"]; ok {
		t.Fatalf("write under instance A is visible to instance B")
	}
	if len(b.CounterData()) != 0 {
		t.Fatalf("counters under instance A are visible to instance B: %v", b.CounterData())
	}

	res := call(t, b, Request{"getValue": true, "key": "k"})
	if res.Body != "" {
		t.Fatalf("expected B to read nothing, got %#v", res.Body)
	}
}

func TestOverrideModules(t *testing.T) {
	inst := load(t, "testdata/endpoint.js", nil)

	// The default pubnub is an object, so calling it throws
	if _, err := inst.Call(Request{"testOverride": true}, nil); err == nil {
		t.Fatalf("expected default pubnub not to be callable")
	}

	if err := inst.OverrideModules(Modules{"pubnub": Script(`() => Promise.resolve(true)`)}); err != nil {
		t.Fatalf("OverrideModules returned error: %v", err)
	}

	for i := 0; i < 2; i++ {
		res := call(t, inst, Request{"testOverride": true})
		if res.Status != 200 || res.Body != true {
			t.Fatalf("call %d: expected override to be observed, got %+v", i, res)
		}
	}
}

func TestOverrideAtLoad(t *testing.T) {
	published := []any{}
	fake := ModuleFunc(func(env *Env) (goja.Value, error) {
		return env.Object(map[string]func(goja.FunctionCall) goja.Value{
			"publish": func(c goja.FunctionCall) goja.Value {
				published = append(published, env.Arg(c, 0))
				return env.Promise(deferred.Resolve("faked"))
			},
		}), nil
	})

	inst := load(t, "testdata/eager.js", Modules{"pubnub": fake})

	res := call(t, inst, Request{"message": "hi"})
	if res.Body != "faked" {
		t.Fatalf("expected load-time override to be bound, got %+v", res)
	}
	if len(published) != 1 {
		t.Fatalf("expected one publish, got %v", published)
	}
}

func TestInvalidArguments(t *testing.T) {
	inst := load(t, "testdata/endpoint.js", nil)

	tt := []struct {
		name string
		call func() error
	}{
		{"MockStorageData(nil)", func() error { return inst.MockStorageData(nil) }},
		{"MockCounterData(nil)", func() error { return inst.MockCounterData(nil) }},
		{"MockSecrets(nil)", func() error { return inst.MockSecrets(nil) }},
		{"OverrideModules(nil)", func() error { return inst.OverrideModules(nil) }},
		{"OverrideModules with nil module", func() error {
			return inst.OverrideModules(Modules{"kvstore": Value(1), "pubnub": nil})
		}},
		{"ApplyFixture(nil)", func() error { return inst.ApplyFixture(nil) }},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	// A rejected batch must not apply any entry
	res := call(t, inst, Request{"setValue": true, "key": "k", "value": "v"})
	if res.Status != 200 {
		t.Fatalf("expected the default kvstore to survive a rejected override, got %+v", res)
	}
}

func TestGrant(t *testing.T) {
	inst := load(t, "testdata/endpoint.js", nil)

	res := call(t, inst, Request{"grant": map[string]any{"read": true}})
	if res.Status != 500 {
		t.Fatalf("expected status 500 for grant without channels, got %+v", res)
	}
	if !strings.Contains(res.Body.(string), "channelGroups") {
		t.Fatalf("unexpected rejection message %v", res.Body)
	}

	res = call(t, inst, Request{"grant": map[string]any{"channels": []any{"a"}}})
	if res.Status != 200 || res.Body != "Success" {
		t.Fatalf("expected Success, got %+v", res)
	}
}

func TestPublish(t *testing.T) {
	clock := time.Unix(1700000000, 0)
	l, err := New(Config{Clock: func() time.Time { return clock }})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	inst, err := l.Load("testdata/endpoint.js", nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	res := call(t, inst, Request{"publish": map[string]any{"channel": "c", "message": "hi"}})
	tuple, ok := res.Body.([]any)
	if !ok || len(tuple) != 3 || tuple[0] != int64(1) || tuple[1] != "Sent" || tuple[2] != "17000000000000000" {
		t.Fatalf("unexpected publish result %#v", res.Body)
	}

	_, err = inst.Call(Request{"publish": map[string]any{"channel": "c"}}, nil)
	var he *HandlerError
	if !errors.As(err, &he) || !strings.HasPrefix(he.Message, "0,Invalid JSON,") {
		t.Fatalf("expected Invalid JSON rejection, got %v", err)
	}
}

func TestCodec(t *testing.T) {
	inst := load(t, "testdata/endpoint.js", nil)

	res := call(t, inst, Request{"b64": true})
	body, ok := res.Body.(map[string]any)
	if !ok {
		t.Fatalf("expected object body, got %#v", res.Body)
	}
	want := map[string]string{"btoa": "aGVsbG8=", "atob": "hello", "encodeString": "Kw==", "decodeString": "+"}
	for k, v := range want {
		if body[k] != v {
			t.Fatalf("%s: expected %q, got %#v", k, v, body[k])
		}
	}

	res = call(t, inst, Request{"query": map[string]any{"b": "x y", "a": []any{1, 2}}})
	if res.Body != "a%5B0%5D=1&a%5B1%5D=2&b=x%20y" {
		t.Fatalf("unexpected query string %#v", res.Body)
	}
}

func TestVault(t *testing.T) {
	l, _ := New(Config{Secrets: map[string]string{"api_key": "s3cr3t"}})
	inst, err := l.Load("testdata/endpoint.js", nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if res := call(t, inst, Request{"secret": "api_key"}); res.Body != "s3cr3t" {
		t.Fatalf("expected configured secret, got %+v", res)
	}
	if res := call(t, inst, Request{"secret": "other"}); res.Body != "other" {
		t.Fatalf("expected key echo, got %+v", res)
	}

	// Rejections are bare strings, not Error objects
	res := call(t, inst, Request{"secret": 5})
	if res.Status != 400 || res.Body != "Invalid key [5], non-empty string required" {
		t.Fatalf("unexpected vault rejection %+v", res)
	}
}

func TestXHR(t *testing.T) {
	fetcher := xhrmock.New(xhrmock.Config{})
	fetcher.On(http.MethodPost, "https://api.example.com/echo").Return(&xhrmock.Response{
		Status: http.StatusOK,
		Body:   []byte(`{"echo":"world"}`),
	})

	l, _ := New(Config{Fetcher: fetcher})
	inst, err := l.Load("testdata/endpoint.js", nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	res := call(t, inst, Request{"xhr": true, "url": "https://api.example.com/echo"})
	body, ok := res.Body.(map[string]any)
	if !ok || body["echo"] != "world" {
		t.Fatalf("unexpected xhr result %#v", res.Body)
	}

	if len(fetcher.Calls) != 1 || string(fetcher.Calls[0].Body) != `{"hello":"world"}` {
		t.Fatalf("expected JSON body to be sent, got %+v", fetcher.Calls)
	}
}

func TestUtilities(t *testing.T) {
	inst := load(t, "testdata/utilities.js", nil)

	res := call(t, inst, Request{"value": "12.5"})
	body := res.Body.(map[string]any)

	for _, k := range []string{"id", "v4"} {
		id, _ := body[k].(string)
		if len(id) != 36 || id[14] != '4' {
			t.Fatalf("%s: expected a v4 uuid, got %q", k, id)
		}
	}
	if body["numeric"] != true || body["random"] != int64(1) {
		t.Fatalf("unexpected utils results %v", body)
	}
	if n, ok := jsval.Number(body["wide"]); !ok || n < -(1<<62) || n > 1<<62 {
		t.Fatalf("expected a wide random integer, got %v", body["wide"])
	}
	if body["auth"] != "Basic dXNlcjpwYXNz" {
		t.Fatalf("unexpected auth header %v", body["auth"])
	}
}

func TestResponseCopyBack(t *testing.T) {
	inst := load(t, "testdata/endpoint.js", nil)

	resp := &Response{Status: 201, Headers: map[string]string{"Content-Type": "text/plain"}}
	if _, err := inst.Call(Request{"headers": true}, resp); err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if resp.Status != 200 || resp.Headers["X-Handled"] != "yes" || resp.Headers["Content-Type"] != "text/plain" {
		t.Fatalf("expected handler changes to be copied back, got %+v", resp)
	}
}

func TestHandlerFailures(t *testing.T) {
	inst := load(t, "testdata/throws.js", nil)

	d := inst.Invoke(Request{}, nil)
	if d.State() != deferred.Rejected {
		t.Fatalf("expected rejected deferred, got %v", d.State())
	}
	var he *HandlerError
	if !errors.As(d.Err(), &he) || he.Message != "boom" {
		t.Fatalf("expected boom, got %v", d.Err())
	}

	_, err := inst.Call(Request{"missing": true}, nil)
	if !errors.As(err, &he) || he.Message != "Cannot find module 'no-such-module'" {
		t.Fatalf("expected missing module error, got %v", err)
	}
}

func TestPendingHandler(t *testing.T) {
	inst := load(t, "testdata/pending.js", nil)

	if _, err := inst.Call(nil, nil); !errors.Is(err, deferred.ErrPending) {
		t.Fatalf("expected ErrPending, got %v", err)
	}
}

func TestBeforePublish(t *testing.T) {
	inst := load(t, "testdata/before_publish.js", nil)

	res := call(t, inst, Request{"message": map[string]any{"text": "hi"}})
	msg, ok := res.Body.(map[string]any)
	if !ok {
		t.Fatalf("expected ok() to resolve with the message, got %#v", res.Body)
	}
	if msg["text"] != "hi" {
		t.Fatalf("unexpected message %v", msg)
	}

	_, err := inst.Call(Request{"message": map[string]any{"blocked": true}}, nil)
	var he *HandlerError
	if !errors.As(err, &he) {
		t.Fatalf("expected abort() to reject, got %v", err)
	}
}

func TestCommonJSHandler(t *testing.T) {
	inst := load(t, "testdata/commonjs.js", nil)

	res := call(t, inst, Request{"name": "ada"})
	if res.Body != "ada" {
		t.Fatalf("unexpected body %#v", res.Body)
	}
	if inst.StorageData()["seen"] != true {
		t.Fatalf("expected setItem to write through, got %v", inst.StorageData())
	}
}

func TestApplyFixture(t *testing.T) {
	f, err := fixture.Load("testdata/fixture.yaml")
	if err != nil {
		t.Fatalf("fixture.Load returned error: %v", err)
	}

	inst := load(t, "testdata/endpoint.js", nil)
	if err := inst.ApplyFixture(f); err != nil {
		t.Fatalf("ApplyFixture returned error: %v", err)
	}

	res := call(t, inst, Request(f.Request))
	if res.Status != *f.Expect.Status || res.Body != f.Expect.Body {
		t.Fatalf("expected %v %v, got %+v", *f.Expect.Status, f.Expect.Body, res)
	}
	if inst.CounterData()["visits"] != 3 {
		t.Fatalf("expected seeded counters, got %v", inst.CounterData())
	}
}

func TestConsole(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l, _ := New(Config{Logger: zap.New(core)})
	inst, err := l.Load("testdata/endpoint.js", nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	call(t, inst, Request{"log": true, "key": "k"})

	entries := logs.Filter(func(e observer.LoggedEntry) bool { return e.LoggerName == "console" }).All()
	if len(entries) != 1 {
		t.Fatalf("expected one console entry, got %d", len(entries))
	}
	if entries[0].Message != `handled {"key":"k"}` {
		t.Fatalf("unexpected console message %q", entries[0].Message)
	}
	if entries[0].Level != zapcore.InfoLevel {
		t.Fatalf("expected info level, got %v", entries[0].Level)
	}

	var handlerFields int
	for _, f := range entries[0].Context {
		if f.Key == "handler" {
			handlerFields++
		}
	}
	if handlerFields != 1 {
		t.Fatalf("expected one handler field, got %d", handlerFields)
	}
}

func TestSnapshot(t *testing.T) {
	inst := load(t, "testdata/endpoint.js", nil)
	if err := inst.MockStorageData(map[string]any{"foo": "bar"}); err != nil {
		t.Fatalf("MockStorageData returned error: %v", err)
	}
	if err := inst.MockCounterData(map[string]float64{"visits": 2}); err != nil {
		t.Fatalf("MockCounterData returned error: %v", err)
	}

	snap := inst.Snapshot()
	call(t, inst, Request{"setValue": true, "key": "new", "value": "v"})
	inst.CounterData()["visits"] = 9

	if len(snap.Storage) != 1 || snap.Storage["foo"] != "bar" {
		t.Fatalf("expected snapshot storage to be unaffected, got %v", snap.Storage)
	}
	if snap.Counters["visits"] != 2 {
		t.Fatalf("expected snapshot counters to be unaffected, got %v", snap.Counters)
	}
	if inst.Snapshot().Storage["new"] != "v" {
		t.Fatalf("expected a fresh snapshot to include new writes")
	}
}

func TestResetState(t *testing.T) {
	inst := load(t, "testdata/endpoint.js", nil)
	call(t, inst, Request{"counter": true, "key": "n"})
	call(t, inst, Request{"setValue": true, "key": "k", "value": "v"})

	inst.ResetState()

	snap := inst.Snapshot()
	if len(snap.Storage) != 0 || len(snap.Counters) != 0 || len(inst.KVStore().Calls) != 0 {
		t.Fatalf("expected empty state after reset, got %+v", snap)
	}
}
