/*
Package fnmock loads serverless event handlers written in JavaScript and runs them
against in-process mocks of the vendor runtime modules.

A handler is a file exporting a function of (request, response). Inside, it pulls
runtime modules in with require("kvstore"), require("pubnub") and so on. Load reads the
file, transforms it into CommonJS, and compiles it inside a fresh JavaScript runtime
whose require function resolves every module name through the Instance's Registry. The
handler never sees a real backend.

Quick start

	inst, err := fnmock.Load("handler.js", nil)
	if err != nil {
	  // ErrRead, ErrTransform, ErrInvalidHandler or ErrInvalidArgument
	}

	if err := inst.MockStorageData(map[string]any{"foo": "bar"}); err != nil {
	  // ...
	}

	res, err := inst.Call(fnmock.Request{"getValue": true, "key": "foo"}, &fnmock.Response{Status: 200})
	// res.Status == 200, res.Body == "bar"

State and isolation

Every Instance owns its own runtime, key/value store, counters, messaging mock, vault
and module registry. Two loads of the same file never observe each other's writes.

Overrides

Modules can be replaced at load time, by passing Modules to Load, or later with
OverrideModules. Overrides take effect for every require performed after the call, so
a handler that requires its modules inside the exported function always sees the
current binding. Modules required at the top level of the file are bound once, when the
file is loaded.

	inst.OverrideModules(fnmock.Modules{
	  "pubnub": fnmock.Script(`() => Promise.resolve(true)`),
	})

Errors

Construction errors (unreadable files, transform failures, bad overrides) are returned
synchronously. Capability errors, such as a non-string kvstore key, only ever reject the
promise the handler receives.
*/
package fnmock
